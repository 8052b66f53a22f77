package service

import (
	"context"
	"fmt"

	"GymChat/internal/api/dto"
	"GymChat/internal/repository"

	"github.com/jinzhu/copier"
)

type DirectoryService interface {
	ListMembers(ctx context.Context) ([]dto.MemberDTO, error)
	ListStaffMembers(ctx context.Context) ([]dto.StaffDTO, error)
}

type directoryServiceImpl struct {
	memberRepo repository.MemberRepo
	staffRepo  repository.StaffMemberRepo
}

func NewDirectoryService(memberRepo repository.MemberRepo, staffRepo repository.StaffMemberRepo) DirectoryService {
	return &directoryServiceImpl{memberRepo: memberRepo, staffRepo: staffRepo}
}

func (s *directoryServiceImpl) ListMembers(ctx context.Context) ([]dto.MemberDTO, error) {
	members, err := s.memberRepo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.MemberDTO, 0, len(members))
	if len(members) == 0 {
		return res, nil
	}
	if err = copier.Copy(&res, &members); err != nil {
		return nil, fmt.Errorf("copy members: %w", err)
	}
	return res, nil
}

func (s *directoryServiceImpl) ListStaffMembers(ctx context.Context) ([]dto.StaffDTO, error) {
	staff, err := s.staffRepo.ListStaffMembers(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.StaffDTO, 0, len(staff))
	if len(staff) == 0 {
		return res, nil
	}
	if err = copier.Copy(&res, &staff); err != nil {
		return nil, fmt.Errorf("copy staff members: %w", err)
	}
	return res, nil
}
