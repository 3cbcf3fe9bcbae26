package lead

import (
	"time"

	"portfolio/internal/domain/qualification"
)

// SubmitLeadRequest is the public intake payload.
type SubmitLeadRequest struct {
	Email         string                `json:"email" validate:"required,email"`
	Name          string                `json:"name"`
	Consent       *bool                 `json:"consent" validate:"required"`
	Context       *ContextRequest       `json:"context" validate:"required"`
	Qualification *QualificationRequest `json:"qualification"`
	Locale        string                `json:"locale" validate:"omitempty,oneof=fr en"`

	// Website is a honeypot: hidden in the form, so humans leave it empty.
	Website string `json:"website"`
}

type ContextRequest struct {
	Answers     Answers   `json:"answers" validate:"required"`
	CompletedAt string    `json:"completedAt" validate:"required,isodatetime"`
	StepCount   int       `json:"stepCount" validate:"required,min=1"`
	Metadata    *Metadata `json:"metadata"`
}

// QualificationRequest is checked for shape only.
type QualificationRequest struct {
	Score            *float64 `json:"score" validate:"required"`
	Level            *string  `json:"level" validate:"required"`
	Reasons          []string `json:"reasons"`
	RecommendedOffer string   `json:"recommendedOffer"`
}

// answerErrors reports answers that are not a primitive or a list of primitives.
func (r *ContextRequest) answerErrors() map[string]string {
	errs := make(map[string]string)
	for key, v := range r.Answers {
		if !isAnswerValue(v, true) {
			errs["context.answers."+key] = "answer"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isAnswerValue(v any, allowList bool) bool {
	switch val := v.(type) {
	case string, bool, float64:
		return true
	case []any:
		if !allowList {
			return false
		}
		for _, item := range val {
			if !isAnswerValue(item, false) {
				return false
			}
		}
		return true
	}
	return false
}

func (q *QualificationRequest) toClientQualification() *ClientQualification {
	if q == nil {
		return nil
	}
	cq := &ClientQualification{
		Reasons:          q.Reasons,
		RecommendedOffer: q.RecommendedOffer,
	}
	if q.Score != nil {
		cq.Score = *q.Score
	}
	if q.Level != nil {
		cq.Level = *q.Level
	}
	return cq
}

// Submission is a validated intake request.
type Submission struct {
	Email         string
	Name          string
	Consent       bool
	Answers       Answers
	CompletedAt   time.Time
	StepCount     int
	Metadata      *Metadata
	Qualification *ClientQualification
	Locale        string
	Website       string
}

// SubmitLeadResponse carries the only credential for reading the lead back.
type SubmitLeadResponse struct {
	ID    int64  `json:"id"`
	Token string `json:"token"`
}

// LeadView is the retrieval payload.
type LeadView struct {
	ID            int64                `json:"id"`
	Summary       string               `json:"summary"`
	Context       LeadContext          `json:"context"`
	Qualification *ClientQualification `json:"qualification,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// LeadListResponse represents paginated list
type LeadListResponse struct {
	Leads []Lead `json:"leads"`
	Total int64  `json:"total"`
}

// QualifyRequest asks the server to score answers.
type QualifyRequest struct {
	Answers Answers `json:"answers" validate:"required"`
	Locale  string  `json:"locale" validate:"omitempty,oneof=fr en"`
}

type QualifyResponse struct {
	qualification.Result
	Message string `json:"message"`
}
