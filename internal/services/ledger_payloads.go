package services

import "github.com/SAP-F-2025/evaluation-registry/internal/models"

// Payloads recorded in ledger entries. Password digests are never written
// to the ledger.

type genesisPayload struct {
	Admin models.Address `json:"admin"`
	ID    string         `json:"id"`
	Email string         `json:"email,omitempty"`
}

type registerPayload struct {
	Address models.Address `json:"address"`
	ID      string         `json:"id"`
	Email   string         `json:"email,omitempty"`
	Role    models.Role    `json:"role"`
}

type updateProfilePayload struct {
	Address models.Address `json:"address"`
	Email   string         `json:"email"`
}

type changePasswordPayload struct {
	Address models.Address `json:"address"`
}

type coursePayload struct {
	ID       uint           `json:"id"`
	Name     string         `json:"name"`
	Credits  int            `json:"credits"`
	Teacher  models.Address `json:"teacher"`
	IsActive bool           `json:"is_active"`
}

func newCoursePayload(c *models.Course) coursePayload {
	return coursePayload{ID: c.ID, Name: c.Name, Credits: c.Credits, Teacher: c.Teacher, IsActive: c.IsActive}
}

type courseActivePayload struct {
	ID     uint `json:"id"`
	Active bool `json:"active"`
}

type markStudentPayload struct {
	CourseID uint           `json:"course_id"`
	Student  models.Address `json:"student"`
	Created  bool           `json:"created"`
}

type importRowPayload struct {
	CourseID uint           `json:"course_id"`
	Student  models.Address `json:"student"`
}

type importEnrollmentsPayload struct {
	Rows         []importRowPayload `json:"rows"`
	MarkedRows   int                `json:"marked_rows"`
	ExistingRows int                `json:"existing_rows"`
}

type evaluationPayload struct {
	CourseID    uint           `json:"course_id"`
	Student     models.Address `json:"student"`
	Score       int            `json:"score"`
	Comment     string         `json:"comment"`
	IsAnonymous bool           `json:"is_anonymous"`
}
