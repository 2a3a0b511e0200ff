package services

import (
	"errors"

	"vcall-signal-service/config"
	"vcall-signal-service/models"

	"gorm.io/gorm"
)

// CallStatistics 通话统计信息
type CallStatistics struct {
	TotalCalls      int64 `json:"total_calls"`
	ActiveCalls     int64 `json:"active_calls"`
	CompletedCalls  int64 `json:"completed_calls"`
	AverageDuration int   `json:"average_duration"` // 秒
}

// InterfaceCallRecordService defines the call record service interface
type InterfaceCallRecordService interface {
	GetAllCallRecords(page, pageSize int) ([]models.CallRecord, int64, error)
	GetCallRecordByID(id uint) (*models.CallRecord, error)
	GetCallRecordsByUserID(userID string, page, pageSize int) ([]models.CallRecord, int64, error)
	GetCallStatistics() (*CallStatistics, error)
}

// CallRecordService 提供通话记录相关的服务
type CallRecordService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewCallRecordService 创建一个新的通话记录服务
func NewCallRecordService(db *gorm.DB, cfg *config.Config) InterfaceCallRecordService {
	return &CallRecordService{
		DB:     db,
		Config: cfg,
	}
}

// 1 GetAllCallRecords 获取所有通话记录，支持分页
func (s *CallRecordService) GetAllCallRecords(page, pageSize int) ([]models.CallRecord, int64, error) {
	var calls []models.CallRecord
	var total int64

	// 获取总数
	if err := s.DB.Model(&models.CallRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询，并预加载关联
	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Caller").Preload("Callee").
		Order("started_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&calls).Error; err != nil {
		return nil, 0, err
	}

	return calls, total, nil
}

// 2 GetCallRecordByID 根据ID获取通话记录
func (s *CallRecordService) GetCallRecordByID(id uint) (*models.CallRecord, error) {
	var call models.CallRecord
	if err := s.DB.Preload("Caller").Preload("Callee").First(&call, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("通话记录不存在")
		}
		return nil, err
	}
	return &call, nil
}

// 3 GetCallRecordsByUserID 获取指定用户参与的通话记录（主叫或被叫）
func (s *CallRecordService) GetCallRecordsByUserID(userID string, page, pageSize int) ([]models.CallRecord, int64, error) {
	var calls []models.CallRecord
	var total int64

	// 检查用户是否存在
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, errors.New("用户不存在")
		}
		return nil, 0, err
	}

	query := s.DB.Model(&models.CallRecord{}).
		Where("caller_id = ? OR callee_id = ?", userID, userID)

	// 获取总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页查询，并预加载关联
	offset := (page - 1) * pageSize
	if err := s.DB.Preload("Caller").Preload("Callee").
		Where("caller_id = ? OR callee_id = ?", userID, userID).
		Order("started_at DESC").
		Limit(pageSize).Offset(offset).
		Find(&calls).Error; err != nil {
		return nil, 0, err
	}

	return calls, total, nil
}

// 4 GetCallStatistics 获取通话统计信息
func (s *CallRecordService) GetCallStatistics() (*CallStatistics, error) {
	var statistics CallStatistics

	// 获取总通话数
	if err := s.DB.Model(&models.CallRecord{}).Count(&statistics.TotalCalls).Error; err != nil {
		return nil, err
	}

	// 获取进行中通话数
	if err := s.DB.Model(&models.CallRecord{}).Where("call_status = ?", models.CallStatusConnected).Count(&statistics.ActiveCalls).Error; err != nil {
		return nil, err
	}

	// 获取已完成通话数
	if err := s.DB.Model(&models.CallRecord{}).Where("call_status = ?", models.CallStatusEnded).Count(&statistics.CompletedCalls).Error; err != nil {
		return nil, err
	}

	// 计算平均通话时长
	if statistics.CompletedCalls > 0 {
		var result struct {
			TotalDuration int64
		}
		if err := s.DB.Model(&models.CallRecord{}).
			Where("call_status = ?", models.CallStatusEnded).
			Select("sum(duration) as total_duration").
			Scan(&result).Error; err != nil {
			return nil, err
		}
		statistics.AverageDuration = int(result.TotalDuration / statistics.CompletedCalls)
	}

	return &statistics, nil
}
