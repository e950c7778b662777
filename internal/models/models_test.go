package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "student", want: RoleStudent},
		{in: "Teacher", want: RoleTeacher},
		{in: " admin ", want: RoleAdmin},
		{in: "1", want: RoleTeacher},
		{in: "proctor", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.CanAdminister())
	assert.False(t, RoleTeacher.CanAdminister())
	assert.True(t, RoleTeacher.CanTeach())
	assert.False(t, RoleAdmin.CanTeach())
	assert.True(t, RoleStudent.CanEvaluate())
	assert.False(t, RoleTeacher.CanEvaluate())
	assert.False(t, RoleAdmin.SelfAssignable())
	assert.True(t, RoleStudent.SelfAssignable())
	assert.False(t, Role(7).Valid())
	assert.False(t, Role(7).CanAdminister())
}

func TestRoleJSON(t *testing.T) {
	data, err := json.Marshal(RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, `"teacher"`, string(data))

	var r Role
	require.NoError(t, json.Unmarshal([]byte(`"admin"`), &r))
	assert.Equal(t, RoleAdmin, r)
	require.NoError(t, json.Unmarshal([]byte(`0`), &r))
	assert.Equal(t, RoleStudent, r)
	assert.Error(t, json.Unmarshal([]byte(`true`), &r))

	_, err = json.Marshal(Role(9))
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	raw := strings.Repeat("ab", 32)

	h, err := ParsePasswordHash("0x" + raw)
	require.NoError(t, err)
	assert.Equal(t, raw, h.String())

	same, err := ParsePasswordHash(strings.ToUpper(raw))
	require.NoError(t, err)
	assert.True(t, h.Equal(same))

	other, err := ParsePasswordHash(strings.Repeat("cd", 32))
	require.NoError(t, err)
	assert.False(t, h.Equal(other))

	_, err = ParsePasswordHash("abc")
	assert.Error(t, err)
	_, err = ParsePasswordHash(strings.Repeat("zz", 32))
	assert.Error(t, err)
}

func TestPasswordHashScan(t *testing.T) {
	var h PasswordHash
	src := make([]byte, 32)
	src[0] = 0xff
	require.NoError(t, h.Scan(src))
	assert.Equal(t, byte(0xff), h[0])

	v, err := h.Value()
	require.NoError(t, err)
	assert.Len(t, v, 32)

	assert.Error(t, h.Scan([]byte{1, 2, 3}))
	assert.Error(t, h.Scan(42))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	u := User{Address: "0xabc", LoginID: "S001", Role: RoleStudent, IsRegistered: true}
	u.PasswordHash[0] = 1

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "password")
	assert.Contains(t, string(data), `"id":"S001"`)
	assert.Contains(t, string(data), `"role":"student"`)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, Address("0xabcdef"), NormalizeAddress("  0xABCdef "))
	assert.True(t, NormalizeAddress("   ").IsZero())
}

func TestLedgerEntryHash(t *testing.T) {
	e := LedgerEntry{
		Seq:       2,
		Op:        OpAddCourse,
		Caller:    "0xadmin",
		Payload:   datatypes.JSON(`{"id":0}`),
		PrevHash:  GenesisPrevHash,
		BlockTime: time.Date(2024, 1, 2, 3, 4, 5, 6789, time.FixedZone("x", 3600)),
	}
	e.Seal()

	assert.Equal(t, time.UTC, e.BlockTime.Location())
	assert.Equal(t, 6000, e.BlockTime.Nanosecond())
	assert.Len(t, e.Hash, 64)
	assert.Equal(t, e.Hash, e.ComputeHash())

	tampered := e
	tampered.Payload = datatypes.JSON(`{"id":1}`)
	assert.NotEqual(t, e.Hash, tampered.ComputeHash())

	moved := e
	moved.Seq = 3
	assert.NotEqual(t, e.Hash, moved.ComputeHash())
}
