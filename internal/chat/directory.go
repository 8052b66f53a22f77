package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"GymChat/internal/api/dto"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

const (
	memberListPath = "/member/list"
	staffListPath  = "/staffmember/list"
)

// Directory 合并会员与员工两个池
type Directory struct {
	rest *resty.Client
}

func NewDirectory(rest *resty.Client) *Directory {
	return &Directory{rest: rest}
}

// ListParticipants 并发拉取两个池，任一失败则整体返回空目录
func (d *Directory) ListParticipants(ctx context.Context) ([]Participant, error) {
	var members []dto.MemberDTO
	var staff []dto.StaffDTO

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return getEnvelope(d.rest.R().SetContext(gCtx), memberListPath, &members)
	})
	g.Go(func() error {
		return getEnvelope(d.rest.R().SetContext(gCtx), staffListPath, &staff)
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	return mergeDirectory(members, staff), nil
}

// mergeDirectory 会员在前、员工在后，保持上游顺序
func mergeDirectory(members []dto.MemberDTO, staff []dto.StaffDTO) []Participant {
	out := make([]Participant, 0, len(members)+len(staff))
	for _, m := range members {
		out = append(out, Participant{
			ID:          m.ID,
			DisplayName: fallbackName(strings.TrimSpace(m.Name), "Member", m.ID),
			Role:        RoleMember,
			Ref:         MemberRef(m.ID),
		})
	}
	for _, s := range staff {
		role := RoleStaff
		if s.IsAdmin {
			role = RoleAdmin
		}
		name := strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
		out = append(out, Participant{
			ID:          s.ID,
			DisplayName: fallbackName(name, "Staff", s.ID),
			Role:        role,
			Ref:         StaffRef(s.ID),
		})
	}
	return out
}

func fallbackName(name, class string, id uint64) string {
	if name != "" {
		return name
	}
	return class + " #" + strconv.FormatUint(id, 10)
}
