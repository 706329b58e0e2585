package models

import (
	"time"
)

// Click is an append-only record of one redirect. It is never updated after insert.
type Click struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	LinkID     string     `gorm:"not null;size:16;index" json:"link_id"`
	Timestamp  time.Time  `gorm:"not null;index" json:"timestamp"`
	DeviceType DeviceType `gorm:"size:16;not null" json:"device_type"`
	RawData    string     `gorm:"type:text" json:"raw_data"` // JSON snapshot of request headers
	Browser    string     `gorm:"size:50" json:"browser"`
	OS         string     `gorm:"size:100" json:"os"`
	Country    string     `gorm:"size:100;default:'Unknown'" json:"country"`
	IPAddress  string     `gorm:"size:45" json:"ip_address,omitempty"`
	Referrer   string     `gorm:"size:255;default:'Direct'" json:"referrer"`
}

func (Click) TableName() string {
	return "clicks"
}
