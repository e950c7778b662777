package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Role is a closed set. Every permission check below switches over all three
// variants; adding a role means revisiting each of them.
type Role int

const (
	RoleStudent Role = iota
	RoleTeacher
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "student"
	case RoleTeacher:
		return "teacher"
	case RoleAdmin:
		return "admin"
	}
	return "role(" + strconv.Itoa(int(r)) + ")"
}

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ParseRole accepts the role name or its numeric tag.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "student", "0":
		return RoleStudent, nil
	case "teacher", "1":
		return RoleTeacher, nil
	case "admin", "2":
		return RoleAdmin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// SelfAssignable reports whether an address may claim this role through registration.
func (r Role) SelfAssignable() bool {
	switch r {
	case RoleStudent, RoleTeacher:
		return true
	case RoleAdmin:
		return false
	}
	return false
}

// CanAdminister covers course management, enrollment marking and registry audit.
func (r Role) CanAdminister() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStudent, RoleTeacher:
		return false
	}
	return false
}

// CanTeach reports whether courses may be assigned to this role.
func (r Role) CanTeach() bool {
	switch r {
	case RoleTeacher:
		return true
	case RoleStudent, RoleAdmin:
		return false
	}
	return false
}

// CanEvaluate reports whether this role submits evaluations.
func (r Role) CanEvaluate() bool {
	switch r {
	case RoleStudent:
		return true
	case RoleTeacher, RoleAdmin:
		return false
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid role %d", int(r))
	}
	return json.Marshal(r.String())
}

func (r *Role) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case float64:
		s = strconv.Itoa(int(v))
	default:
		return fmt.Errorf("invalid role value %s", string(data))
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
