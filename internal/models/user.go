package models

import "time"

type User struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Name      string    `gorm:"not null;index" json:"name"`
	Phone     string    `gorm:"not null" json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}
