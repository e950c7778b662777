package models

import (
	"crypto/subtle"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Address identifies an externally-owned account. It is the only credential
// the registry authorizes against.
type Address string

// NormalizeAddress trims and lower-cases a raw address.
func NormalizeAddress(raw string) Address {
	return Address(strings.ToLower(strings.TrimSpace(raw)))
}

func (a Address) IsZero() bool {
	return a == ""
}

func (a Address) String() string {
	return string(a)
}

// PasswordHash is the 32-byte digest the client derives from the user's password.
type PasswordHash [32]byte

// ParsePasswordHash decodes a 64 character hex string, with or without a 0x prefix.
func ParsePasswordHash(s string) (PasswordHash, error) {
	var h PasswordHash
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != hex.EncodedLen(len(h)) {
		return h, fmt.Errorf("password hash must be %d hex characters, got %d", hex.EncodedLen(len(h)), len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("invalid password hash: %w", err)
	}
	return h, nil
}

func (h PasswordHash) String() string {
	return hex.EncodeToString(h[:])
}

// Equal compares two digests in constant time.
func (h PasswordHash) Equal(other PasswordHash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

func (h PasswordHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *PasswordHash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePasswordHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

func (PasswordHash) GormDataType() string {
	return "bytes"
}

func (h PasswordHash) Value() (driver.Value, error) {
	return h[:], nil
}

func (h *PasswordHash) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PasswordHash", src)
	}
	if len(raw) != len(h) {
		return fmt.Errorf("password hash column has %d bytes, want %d", len(raw), len(h))
	}
	copy(h[:], raw)
	return nil
}

// User is keyed by address. LoginID is the externally chosen handle and is
// unique across all registered users.
type User struct {
	Address       Address      `json:"address" gorm:"primaryKey;size:128"`
	LoginID       string       `json:"id" gorm:"column:login_id;uniqueIndex;not null;size:64"`
	Email         string       `json:"email" gorm:"size:255"`
	PasswordHash  PasswordHash `json:"-" gorm:"not null"`
	Role          Role         `json:"role" gorm:"not null"`
	IsRegistered  bool         `json:"is_registered" gorm:"not null;default:false"`
	RegisteredSeq uint64       `json:"registered_seq" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
