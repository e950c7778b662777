package validator

// Struct tags cover wire format only. Range rules whose failure has its own
// reason code (score, credits, role) are checked by the services in the
// order the registry defines.

// RegisterRequest represents the request structure for self-registration
type RegisterRequest struct {
	ID           string `json:"id" validate:"required,login_id"`
	Email        string `json:"email" validate:"max=255"`
	PasswordHash string `json:"password_hash" validate:"required,password_hash"`
	Role         string `json:"role" validate:"required,max=16"`
}

// LoginRequest represents a credential check. It carries no rules: an
// unknown id or a malformed hash is a failed login, not bad input.
type LoginRequest struct {
	ID           string `json:"id"`
	PasswordHash string `json:"password_hash"`
}

// UpdateEmailRequest replaces the caller's email
type UpdateEmailRequest struct {
	Email string `json:"email" validate:"max=255"`
}

// ChangePasswordRequest replaces the caller's password digest
type ChangePasswordRequest struct {
	OldPasswordHash string `json:"old_password_hash" validate:"required,password_hash"`
	NewPasswordHash string `json:"new_password_hash" validate:"required,password_hash"`
}

// CourseRequest is used by both addCourse and updateCourse
type CourseRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Credits int    `json:"credits"`
	Teacher string `json:"teacher" validate:"required,address"`
}

// SetCourseActiveRequest toggles a course's active flag
type SetCourseActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// MarkStudentRequest marks an address as having taken a course
type MarkStudentRequest struct {
	Student string `json:"student" validate:"required,address"`
}

// SubmitEvaluationRequest is a student's evaluation of a course
type SubmitEvaluationRequest struct {
	Score       int    `json:"score"`
	Comment     string `json:"comment"`
	IsAnonymous bool   `json:"is_anonymous"`
}
