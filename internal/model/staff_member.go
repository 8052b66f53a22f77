package model

import (
	"time"
)

// StaffMember 员工，IsAdmin 为管理员
type StaffMember struct {
	ID        uint64 `gorm:"primaryKey"`
	FirstName string `gorm:"type:varchar(50);not null"`
	LastName  string `gorm:"type:varchar(50);not null"`
	Position  string `gorm:"type:varchar(50);default:''"`
	IsAdmin   bool   `gorm:"type:tinyint(1);default:0"`
	IsDelete  bool   `gorm:"type:tinyint(1);default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StaffMember) TableName() string {
	return "staff_members"
}
