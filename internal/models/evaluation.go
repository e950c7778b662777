package models

import "time"

const (
	MinScore = 1
	MaxScore = 5
)

// Evaluation is keyed by the ledger sequence of the submitting entry, which
// also gives its position in both the course list and the student list.
//
// Student is stored even when IsAnonymous is set. Anonymity is a display
// convention for clients, not a storage guarantee: anyone who can read the
// ledger can link an anonymous evaluation to its author.
type Evaluation struct {
	LedgerSeq   uint64    `json:"ledger_seq" gorm:"primaryKey;autoIncrement:false"`
	CourseID    uint      `json:"course_id" gorm:"not null;index;uniqueIndex:idx_evaluation_course_student"`
	Student     Address   `json:"student" gorm:"not null;size:128;index;uniqueIndex:idx_evaluation_course_student"`
	Score       int       `json:"score" gorm:"not null"`
	Comment     string    `json:"comment" gorm:"type:text"`
	IsAnonymous bool      `json:"is_anonymous" gorm:"not null"`
	Timestamp   time.Time `json:"timestamp" gorm:"not null"`
}

func (Evaluation) TableName() string {
	return "evaluations"
}
