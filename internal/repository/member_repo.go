package repository

import (
	"context"
	"errors"

	"GymChat/internal/model"

	"gorm.io/gorm"
)

type MemberRepo interface {
	ListMembers(ctx context.Context) ([]*model.Member, error)
	GetMemberById(ctx context.Context, id uint64) (*model.Member, error)
}

type MemberRepoImpl struct {
	db *gorm.DB
}

func NewMemberRepo(db *gorm.DB) MemberRepo {
	return &MemberRepoImpl{db: db}
}

// ListMembers 全部未删除会员，按 id 升序
func (s *MemberRepoImpl) ListMembers(ctx context.Context) ([]*model.Member, error) {
	members := make([]*model.Member, 0)
	result := s.db.WithContext(ctx).
		Where("is_delete = ?", false).
		Order("id ASC").
		Find(&members)
	if result.Error != nil {
		return nil, result.Error
	}
	return members, nil
}

func (s *MemberRepoImpl) GetMemberById(ctx context.Context, id uint64) (*model.Member, error) {
	member := &model.Member{}
	result := s.db.WithContext(ctx).
		Where("is_delete = ?", false).
		First(member, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return member, nil
}
