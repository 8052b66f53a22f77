package chat

import (
	"testing"

	"GymChat/internal/api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantRefDistinctAcrossPools(t *testing.T) {
	keys := make(map[string]ParticipantRef)
	refs := make(map[ParticipantRef]struct{})
	for id := uint64(1); id <= 50; id++ {
		m, s := MemberRef(id), StaffRef(id)
		assert.NotEqual(t, m, s)
		assert.NotEqual(t, m.Key(), s.Key())
		keys[m.Key()] = m
		keys[s.Key()] = s
		refs[m] = struct{}{}
		refs[s] = struct{}{}
	}
	assert.Len(t, keys, 100)
	assert.Len(t, refs, 100)
}

func TestParseRef(t *testing.T) {
	for _, ref := range []ParticipantRef{MemberRef(5), StaffRef(5), StaffRef(123456)} {
		got, err := ParseRef(ref.Key())
		require.NoError(t, err)
		assert.Equal(t, ref, got)
	}

	for _, bad := range []string{"", "5", "member-5", "member_", "member_0", "coach_5", "staff_x"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestMergeDirectoryKeepsPoolOrder(t *testing.T) {
	members := []dto.MemberDTO{{ID: 5, Name: "Ana"}, {ID: 2, Name: " "}}
	staff := []dto.StaffDTO{
		{ID: 5, FirstName: "Ivo", LastName: "Kos"},
		{ID: 1, FirstName: "Mia", IsAdmin: true},
	}

	got := mergeDirectory(members, staff)
	require.Len(t, got, 4)

	assert.Equal(t, Participant{ID: 5, DisplayName: "Ana", Role: RoleMember, Ref: MemberRef(5)}, got[0])
	assert.Equal(t, "Member #2", got[1].DisplayName)
	assert.Equal(t, Participant{ID: 5, DisplayName: "Ivo Kos", Role: RoleStaff, Ref: StaffRef(5)}, got[2])
	assert.Equal(t, RoleAdmin, got[3].Role)
	assert.Equal(t, "staff_1", got[3].UniqueKey())

	p, ok := FindParticipant(got, StaffRef(5))
	require.True(t, ok)
	assert.Equal(t, "Ivo Kos", p.DisplayName)
	_, ok = FindParticipant(got, MemberRef(1))
	assert.False(t, ok)
}

func TestRoleText(t *testing.T) {
	var r Role
	require.NoError(t, r.UnmarshalText([]byte("Staff")))
	assert.Equal(t, RoleStaff, r)

	b, err := RoleAdmin.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "admin", string(b))

	_, err = RoleUnknown.MarshalText()
	assert.Error(t, err)
	assert.Error(t, r.UnmarshalText([]byte("coach")))
}
