package models

import "time"

const (
	MinCredits = 1
	MaxCredits = 10
)

// Course ids are assigned sequentially from 0 and never reused.
type Course struct {
	ID         uint    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name       string  `json:"name" gorm:"not null;size:200"`
	Credits    int     `json:"credits" gorm:"not null"`
	Teacher    Address `json:"teacher" gorm:"not null;size:128;index"`
	IsActive   bool    `json:"is_active" gorm:"not null"`
	CreatedSeq uint64  `json:"created_seq" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}

// Enrollment records that Student has taken CourseID. Rows are only ever inserted.
// Rosters are ordered by (MarkedSeq, Ordinal); Ordinal is the row position
// when one ledger entry marks several students.
type Enrollment struct {
	CourseID  uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	Student   Address   `json:"student" gorm:"primaryKey;size:128;index"`
	MarkedSeq uint64    `json:"marked_seq" gorm:"not null;index"`
	Ordinal   int       `json:"ordinal" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
