package services

import (
	"errors"
	"time"

	"vcall-signal-service/config"
	"vcall-signal-service/models"
	"vcall-signal-service/utils"

	"gorm.io/gorm"
)

// ContactInfo 联系人视图：联系人资料加上最近通话时间
type ContactInfo struct {
	ID         string            `json:"id"`
	Username   string            `json:"username"`
	Email      string            `json:"email"`
	Status     models.UserStatus `json:"status"`
	LastCallAt time.Time         `json:"last_call_at"`
}

// InterfaceUserService 定义用户服务接口
type InterfaceUserService interface {
	Register(username, email, password string) (*models.User, error)
	Authenticate(username, password string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	GetContacts(ownerID string) ([]ContactInfo, error)
}

// UserService 提供用户账号与联系人相关的服务
type UserService struct {
	DB     *gorm.DB
	Config *config.Config
	Redis  *RedisService
}

// NewUserService 创建一个新的用户服务
func NewUserService(db *gorm.DB, cfg *config.Config, redisService *RedisService) InterfaceUserService {
	return &UserService{
		DB:     db,
		Config: cfg,
		Redis:  redisService,
	}
}

// Register 注册新用户，初始状态为OFFLINE
func (s *UserService) Register(username, email, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("用户名和密码不能为空")
	}

	var count int64
	if err := s.DB.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("用户名或邮箱已存在")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Status:       models.UserStatusOffline,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 校验用户名和密码
func (s *UserService) Authenticate(username, password string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, err
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, errors.New("密码错误")
	}
	return &user, nil
}

// GetUserByID 根据ID获取用户
func (s *UserService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("用户不存在")
		}
		return nil, err
	}
	return &user, nil
}

// GetAllUsers 获取用户花名册及其持久化状态
func (s *UserService) GetAllUsers() ([]models.User, error) {
	var users []models.User
	if err := s.DB.Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}

	// 在线状态快照优先读缓存，缓存未命中保留持久化值
	if s.Redis != nil {
		for i := range users {
			if cached, err := s.Redis.GetCachedPresence(users[i].ID); err == nil && models.ValidUserStatus(cached) {
				users[i].Status = models.UserStatus(cached)
			}
		}
	}
	return users, nil
}

// GetContacts 获取联系人列表，按最近通话时间倒序
func (s *UserService) GetContacts(ownerID string) ([]ContactInfo, error) {
	var contacts []models.Contact
	if err := s.DB.Preload("Contact").
		Where("owner_id = ?", ownerID).
		Order("last_call_at DESC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}

	infos := make([]ContactInfo, 0, len(contacts))
	for _, c := range contacts {
		if c.Contact == nil {
			continue
		}
		infos = append(infos, ContactInfo{
			ID:         c.Contact.ID,
			Username:   c.Contact.Username,
			Email:      c.Contact.Email,
			Status:     c.Contact.Status,
			LastCallAt: c.LastCallAt,
		})
	}
	return infos, nil
}
