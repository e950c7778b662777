package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// LedgerOp names the registry operation recorded by a ledger entry.
type LedgerOp string

const (
	OpGenesis           LedgerOp = "genesis"
	OpRegister          LedgerOp = "register"
	OpUpdateUserProfile LedgerOp = "updateUserProfile"
	OpChangePassword    LedgerOp = "changePassword"
	OpAddCourse         LedgerOp = "addCourse"
	OpUpdateCourse      LedgerOp = "updateCourse"
	OpSetCourseActive   LedgerOp = "setCourseActive"
	OpMarkStudentCourse LedgerOp = "markStudentCourse"
	OpImportEnrollments LedgerOp = "importEnrollments"
	OpSubmitEvaluation  LedgerOp = "submitEvaluation"
)

// GenesisPrevHash is the previous-hash value carried by the first entry.
const GenesisPrevHash = "0000000000000000000000000000000000000000000000000000000000000000"

// LedgerEntry is one committed mutation. Seq is dense and 1-based; it plays
// the role of a block number and BlockTime the role of a block timestamp.
//
// Payload is stored as json rather than jsonb so the bytes hashed at append
// time are the bytes read back.
type LedgerEntry struct {
	Seq       uint64         `json:"seq" gorm:"primaryKey;autoIncrement:false"`
	Op        LedgerOp       `json:"op" gorm:"not null;size:64;index"`
	Caller    Address        `json:"caller" gorm:"not null;size:128;index"`
	Payload   datatypes.JSON `json:"payload" gorm:"type:json"`
	PrevHash  string         `json:"prev_hash" gorm:"not null;size:64"`
	Hash      string         `json:"hash" gorm:"not null;size:64;uniqueIndex"`
	BlockTime time.Time      `json:"block_time" gorm:"not null"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// ComputeHash returns the hex sha256 over the entry's chained fields.
func (e *LedgerEntry) ComputeHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatUint(e.Seq, 10)))
	h.Write([]byte{'|'})
	h.Write([]byte(e.Op))
	h.Write([]byte{'|'})
	h.Write([]byte(e.Caller))
	h.Write([]byte{'|'})
	h.Write(e.Payload)
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.FormatInt(e.BlockTime.UTC().UnixMicro(), 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// Seal normalizes the block time and sets Hash.
func (e *LedgerEntry) Seal() {
	e.BlockTime = BlockTimeOf(e.BlockTime)
	e.Hash = e.ComputeHash()
}

// BlockTimeOf truncates t to the precision every supported database keeps.
func BlockTimeOf(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
