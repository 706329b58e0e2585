package models

import (
	"time"
)

// DeviceType is the platform a visitor is classified as at click time.
type DeviceType string

const (
	DeviceDesktop DeviceType = "Desktop"
	DeviceAndroid DeviceType = "Android"
	DeviceIOS     DeviceType = "iOS"
)

// Destinations holds the per-platform target URLs of a link. Empty means unset.
type Destinations struct {
	Desktop string `gorm:"column:desktop_url;type:text" json:"desktop,omitempty"`
	Android string `gorm:"column:android_url;type:text" json:"android,omitempty"`
	IOS     string `gorm:"column:ios_url;type:text" json:"ios,omitempty"`
}

// For returns the destination configured for the given device, without fallback.
func (d Destinations) For(device DeviceType) string {
	switch device {
	case DeviceIOS:
		return d.IOS
	case DeviceAndroid:
		return d.Android
	default:
		return d.Desktop
	}
}

// Empty reports whether no destination is set at all.
func (d Destinations) Empty() bool {
	return d.Desktop == "" && d.Android == "" && d.IOS == ""
}

type DynamicLink struct {
	ID         string       `gorm:"primaryKey;size:16" json:"id"`
	Links      Destinations `gorm:"embedded" json:"links"`
	CreatedAt  time.Time    `gorm:"not null;index" json:"created_at"`
	ClickCount int64        `gorm:"column:click_count;not null;default:0" json:"click_count"` // cache of count(clicks)
}

func (DynamicLink) TableName() string {
	return "dynamic_links"
}
