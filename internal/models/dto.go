package models

import "time"

// ===== ACCESS DTOs =====

type LoginResponse struct {
	Success bool    `json:"success"`
	Address Address `json:"address,omitempty"`
	Role    *Role   `json:"role,omitempty"`
}

// ===== COURSE DTOs =====

type CourseCreatedResponse struct {
	ID  uint   `json:"id"`
	Seq uint64 `json:"seq"`
}

// ===== ENROLLMENT DTOs =====

type CourseStudentsResponse struct {
	CourseID uint      `json:"course_id"`
	Students []Address `json:"students"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	TotalRows    int       `json:"total_rows"`
	MarkedRows   int       `json:"marked_rows"`
	ExistingRows int       `json:"existing_rows"`
	Seq          uint64    `json:"seq"`
	CompletedAt  time.Time `json:"completed_at"`
}

// ===== LEDGER DTOs =====

type LedgerVerification struct {
	Valid    bool    `json:"valid"`
	Length   uint64  `json:"length"`
	HeadHash string  `json:"head_hash,omitempty"`
	BrokenAt *uint64 `json:"broken_at,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	Size             int         `json:"size"`
	NumberOfElements int         `json:"number_of_elements"`
	Last             bool        `json:"last"`
	Empty            bool        `json:"empty"`
}
