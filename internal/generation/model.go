package generation

import "interview-backend/internal/questions"

const (
	FieldJobDescription = "job_description"
	FieldResume         = "resume"
)

// Caller identifies who asked for a generation.
type Caller struct {
	UserID string
	Email  string
}

// Request carries the two input documents.
type Request struct {
	JobDescription string `json:"job_description"`
	Resume         string `json:"resume"`
}

// Response is the generated question set returned to the caller.
type Response struct {
	questions.Result
	Tier   string `json:"tier"`
	Cached bool   `json:"cached"`
}
