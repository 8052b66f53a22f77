package chat

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// SessionIdentity 当前视图的用户身份，解析后只读
type SessionIdentity struct {
	ID          uint64
	Role        Role
	DisplayName string
}

// sessionDoc 登录流程写入的会话文档，三种身份标记互斥
type sessionDoc struct {
	MemberID  *uint64 `json:"memberId"`
	StaffID   *uint64 `json:"staffId"`
	AdminID   *uint64 `json:"adminId"`
	Name      string  `json:"name"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
}

// ResolveIdentity 将会话数据解析为 (id, role)，不猜测角色
func ResolveIdentity(blob []byte) (SessionIdentity, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return SessionIdentity{}, ErrIdentityMissing
	}

	var doc sessionDoc
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return SessionIdentity{}, fmt.Errorf("%w: %v", ErrIdentityMissing, err)
	}

	var found []SessionIdentity
	mark := func(id *uint64, role Role) {
		if id != nil && *id > 0 {
			found = append(found, SessionIdentity{ID: *id, Role: role})
		}
	}
	mark(doc.MemberID, RoleMember)
	mark(doc.StaffID, RoleStaff)
	mark(doc.AdminID, RoleAdmin)

	if len(found) != 1 {
		return SessionIdentity{}, fmt.Errorf("%w: %d identity markers", ErrIdentityAmbiguous, len(found))
	}

	me := found[0]
	me.DisplayName = displayName(doc.Name, doc.FirstName, doc.LastName)
	if me.DisplayName == "" {
		me.DisplayName = me.Role.String() + " #" + strconv.FormatUint(me.ID, 10)
	}
	return me, nil
}

func displayName(name, first, last string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
