package models

import "time"

// Contact 联系人关系，按最近通话时间排序展示
// 每次通话为双方各维护一行（owner→contact 和 contact→owner）
type Contact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OwnerID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_owner_contact" json:"owner_id"`
	ContactID  string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_owner_contact" json:"contact_id"`
	LastCallAt time.Time `json:"last_call_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Owner   *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Contact *User `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}
