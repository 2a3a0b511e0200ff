package models

import (
	"time"
)

// CallStatus represents the status of a call
type CallStatus string

const (
	CallStatusConnected CallStatus = "connected"
	CallStatusEnded     CallStatus = "ended"
)

// CallRecord represents call history between two users
type CallRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	CallID     string     `gorm:"type:varchar(100);index" json:"call_id"` // 通话唯一标识
	CallerID   string     `gorm:"type:varchar(36);index;not null" json:"caller_id"`
	CalleeID   string     `gorm:"type:varchar(36);index;not null" json:"callee_id"`
	CallStatus CallStatus `gorm:"type:varchar(20)" json:"call_status"`
	StartedAt  time.Time  `json:"started_at"` // 通话开始时间
	EndedAt    *time.Time `json:"ended_at"`   // 通话结束时间，未结束为空
	Duration   int        `json:"duration"`   // 通话时长（秒）

	// Relations
	Caller *User `gorm:"foreignKey:CallerID" json:"caller,omitempty"`
	Callee *User `gorm:"foreignKey:CalleeID" json:"callee,omitempty"`
}
