package chat

import (
	"fmt"
	"strconv"
	"strings"

	"GymChat/internal/pkg/consts"
)

// Role 参与者角色
type Role int

const (
	RoleUnknown Role = iota
	RoleMember
	RoleStaff
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleMember:
		return consts.RoleMember
	case RoleStaff:
		return consts.RoleStaff
	case RoleAdmin:
		return consts.RoleAdmin
	default:
		return "unknown"
	}
}

// ParseRole 解析线上角色字符串
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case consts.RoleMember:
		return RoleMember, nil
	case consts.RoleStaff:
		return RoleStaff, nil
	case consts.RoleAdmin:
		return RoleAdmin, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if r == RoleUnknown {
		return nil, fmt.Errorf("cannot marshal unknown role")
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// PoolClass 参与者来源池，会员与员工的编号互相独立
type PoolClass int

const (
	ClassMember PoolClass = iota + 1
	ClassStaff
)

func (c PoolClass) String() string {
	switch c {
	case ClassMember:
		return "member"
	case ClassStaff:
		return "staff"
	default:
		return "unknown"
	}
}

// ParticipantRef 区分 Member(5) 与 Staff(5) 的地址，可直接比较和作为 map 键
type ParticipantRef struct {
	Class PoolClass
	ID    uint64
}

func MemberRef(id uint64) ParticipantRef { return ParticipantRef{Class: ClassMember, ID: id} }

func StaffRef(id uint64) ParticipantRef { return ParticipantRef{Class: ClassStaff, ID: id} }

// Key 展示用的复合键，如 member_5
func (r ParticipantRef) Key() string {
	return r.Class.String() + "_" + strconv.FormatUint(r.ID, 10)
}

// ParseRef 仅用于解析用户输入的复合键
func ParseRef(key string) (ParticipantRef, error) {
	class, id, ok := strings.Cut(strings.TrimSpace(key), "_")
	if !ok {
		return ParticipantRef{}, fmt.Errorf("invalid participant key %q", key)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return ParticipantRef{}, fmt.Errorf("invalid participant id in %q", key)
	}
	switch class {
	case "member":
		return MemberRef(n), nil
	case "staff":
		return StaffRef(n), nil
	}
	return ParticipantRef{}, fmt.Errorf("invalid participant class in %q", key)
}

// Participant 可选的聊天对象
type Participant struct {
	ID          uint64
	DisplayName string
	Role        Role
	Ref         ParticipantRef
}

// UniqueKey 在会员与员工两个池的并集上唯一
func (p Participant) UniqueKey() string {
	return p.Ref.Key()
}

// FindParticipant 按地址查找参与者
func FindParticipant(list []Participant, ref ParticipantRef) (Participant, bool) {
	for _, p := range list {
		if p.Ref == ref {
			return p, true
		}
	}
	return Participant{}, false
}
