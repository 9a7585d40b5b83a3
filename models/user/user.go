package user

import (
	"time"
)

// User represents a customer account. Authentication lives in an external
// service; this row mirrors the identity claims carried in the JWT.
type User struct {
	ID            uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid          string  `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Username      string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	LegalName     string  `gorm:"type:varchar(255);not null" json:"legal_name"`
	Phone         string  `gorm:"type:varchar(20);not null;unique" json:"phone"`
	PhoneVerified bool    `gorm:"type:bool;default:false" json:"phone_verified"`
	Email         *string `gorm:"type:varchar(255);unique" json:"email"`

	// Push token for the notification side-channel, if the customer's app
	// registered one.
	NotificationToken *string `gorm:"type:varchar(512)" json:"notification_token,omitempty"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// PublicView is the sender shape exposed on tracking lookups. Push tokens and
// account identifiers never leave the service.
type PublicView struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (u User) Public() PublicView {
	return PublicView{
		Name:  u.LegalName,
		Phone: u.Phone,
	}
}
