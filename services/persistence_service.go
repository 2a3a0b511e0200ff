package services

import (
	"errors"
	"time"

	"vcall-signal-service/config"
	"vcall-signal-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InterfacePersistenceService 信令核心消费的持久化适配器
// 四个操作对核心都是尽力而为：失败只记录日志，不回传到实时信令路径
type InterfacePersistenceService interface {
	UpdateUserStatus(userID string, status models.UserStatus) error
	CreateCallHistory(callerID, calleeID string, startedAt time.Time) (uint, error)
	CloseCallHistory(recordID uint, endedAt time.Time) error
	UpsertContactRecency(ownerID, contactID string, timestamp time.Time) error
}

// PersistenceService 基于GORM的持久化适配器实现
type PersistenceService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewPersistenceService 创建一个新的持久化适配器
func NewPersistenceService(db *gorm.DB, cfg *config.Config) InterfacePersistenceService {
	return &PersistenceService{
		DB:     db,
		Config: cfg,
	}
}

// UpdateUserStatus 更新用户的持久化状态
func (s *PersistenceService) UpdateUserStatus(userID string, status models.UserStatus) error {
	if userID == "" {
		return errors.New("用户ID为空")
	}
	return s.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("status", status).Error
}

// CreateCallHistory 创建通话历史记录，返回记录ID
func (s *PersistenceService) CreateCallHistory(callerID, calleeID string, startedAt time.Time) (uint, error) {
	record := models.CallRecord{
		CallID:     uuid.New().String(),
		CallerID:   callerID,
		CalleeID:   calleeID,
		CallStatus: models.CallStatusConnected,
		StartedAt:  startedAt,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

// CloseCallHistory 关闭通话历史记录，写入结束时间和时长
func (s *PersistenceService) CloseCallHistory(recordID uint, endedAt time.Time) error {
	var record models.CallRecord
	if err := s.DB.First(&record, recordID).Error; err != nil {
		return err
	}

	duration := int(endedAt.Sub(record.StartedAt).Seconds())
	if duration < 0 {
		duration = 0
	}
	return s.DB.Model(&record).Updates(map[string]interface{}{
		"call_status": models.CallStatusEnded,
		"ended_at":    endedAt,
		"duration":    duration,
	}).Error
}

// UpsertContactRecency 更新联系人的最近通话时间，不存在则创建
// 每次通话对每个方向各调用一次
func (s *PersistenceService) UpsertContactRecency(ownerID, contactID string, timestamp time.Time) error {
	var contact models.Contact
	err := s.DB.Where("owner_id = ? AND contact_id = ?", ownerID, contactID).First(&contact).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.DB.Create(&models.Contact{
				OwnerID:    ownerID,
				ContactID:  contactID,
				LastCallAt: timestamp,
			}).Error
		}
		return err
	}
	return s.DB.Model(&contact).Update("last_call_at", timestamp).Error
}
