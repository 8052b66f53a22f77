package repository

import (
	"context"
	"errors"

	"GymChat/internal/model"

	"gorm.io/gorm"
)

type StaffMemberRepo interface {
	ListStaffMembers(ctx context.Context) ([]*model.StaffMember, error)
	GetStaffMemberById(ctx context.Context, id uint64) (*model.StaffMember, error)
}

type StaffMemberRepoImpl struct {
	db *gorm.DB
}

func NewStaffMemberRepo(db *gorm.DB) StaffMemberRepo {
	return &StaffMemberRepoImpl{db: db}
}

func (s *StaffMemberRepoImpl) ListStaffMembers(ctx context.Context) ([]*model.StaffMember, error) {
	staff := make([]*model.StaffMember, 0)
	result := s.db.WithContext(ctx).
		Where("is_delete = ?", false).
		Order("id ASC").
		Find(&staff)
	if result.Error != nil {
		return nil, result.Error
	}
	return staff, nil
}

func (s *StaffMemberRepoImpl) GetStaffMemberById(ctx context.Context, id uint64) (*model.StaffMember, error) {
	staff := &model.StaffMember{}
	result := s.db.WithContext(ctx).
		Where("is_delete = ?", false).
		First(staff, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return staff, nil
}
