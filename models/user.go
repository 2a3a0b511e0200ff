package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus 用户在线状态
type UserStatus string

const (
	UserStatusOnline  UserStatus = "ONLINE"
	UserStatusBusy    UserStatus = "BUSY"
	UserStatusOffline UserStatus = "OFFLINE"
)

// ValidUserStatus 检查状态值是否合法
func ValidUserStatus(s string) bool {
	switch UserStatus(s) {
	case UserStatusOnline, UserStatusBusy, UserStatusOffline:
		return true
	}
	return false
}

// User represents a registered account
type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"type:varchar(100);not null" json:"-"` // 不在JSON中暴露密码哈希
	Status       UserStatus `gorm:"type:varchar(20);default:OFFLINE" json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Contacts []Contact `gorm:"foreignKey:OwnerID" json:"contacts,omitempty"`
}

// BeforeCreate 是一个GORM钩子，在创建新记录前分配用户ID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Status == "" {
		u.Status = UserStatusOffline
	}
	return nil
}
