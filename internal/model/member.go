package model

import (
	"time"
)

type Member struct {
	ID        uint64  `gorm:"primaryKey"`
	Name      string  `gorm:"type:varchar(100);not null"`
	Phone     *string `gorm:"type:varchar(30);uniqueIndex:idx_member_phone"`
	IsDelete  bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Member) TableName() string {
	return "members"
}
