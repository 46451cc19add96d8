// models/models.go
package models

import (
	"time"
)

// Profile 本地玩家资料
type Profile struct {
	ID          string    `gorm:"primaryKey;size:26" json:"id"`
	Nickname    string    `gorm:"uniqueIndex;not null" json:"nickname"`
	LastRoom    string    `json:"last_room"`
	LastLoginAt time.Time `gorm:"index" json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JoinRecord 加入房间记录
type JoinRecord struct {
	ID       string    `gorm:"primaryKey;size:26" json:"id"`
	Nickname string    `gorm:"index;not null" json:"nickname"`
	RoomName string    `gorm:"not null" json:"room_name"`
	Created  bool      `gorm:"default:false" json:"created"` // the player created the room
	JoinedAt time.Time `gorm:"index" json:"joined_at"`
}
