package lead

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Answers maps a question identifier to a primitive or a list of primitives.
type Answers map[string]any

// Metadata is browser context captured by the widget.
type Metadata struct {
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// LeadContext is what the widget collected for one visitor.
type LeadContext struct {
	Answers     Answers   `json:"answers"`
	CompletedAt time.Time `json:"completedAt"`
	StepCount   int       `json:"stepCount"`
	Metadata    *Metadata `json:"metadata,omitempty"`
}

// ClientQualification is the score computed by the widget. It is stored as an
// annotation and never re-derived on the server.
type ClientQualification struct {
	Score            float64  `json:"score"`
	Level            string   `json:"level"`
	Reasons          []string `json:"reasons,omitempty"`
	RecommendedOffer string   `json:"recommendedOffer,omitempty"`
}

// Lead is a stored submission.
type Lead struct {
	ID            int64                `json:"id"`
	Answers       Answers              `json:"answers"`
	CompletedAt   time.Time            `json:"completedAt"`
	StepCount     int                  `json:"stepCount"`
	Metadata      *Metadata            `json:"metadata,omitempty"`
	Qualification *ClientQualification `json:"qualification,omitempty"`
	AccessToken   string               `json:"-"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Context returns the stored answers and metadata as a LeadContext.
func (l *Lead) Context() LeadContext {
	return LeadContext{
		Answers:     l.Answers,
		CompletedAt: l.CompletedAt,
		StepCount:   l.StepCount,
		Metadata:    l.Metadata,
	}
}

// NewLead is handed to the notifier after a consented submission is stored.
type NewLead struct {
	LeadID        int64
	Token         string
	Email         string
	Name          string
	Context       LeadContext
	Qualification *ClientQualification
	Locale        string
}

// row is the persisted shape of a lead in the leads table.
type row struct {
	ID            int64          `gorm:"primaryKey;autoIncrement"`
	Answers       datatypes.JSON `gorm:"not null"`
	CompletedAt   time.Time      `gorm:"not null;index:idx_leads_completed_at,sort:desc"`
	StepCount     int            `gorm:"not null"`
	Metadata      datatypes.JSON
	Qualification datatypes.JSON
	AccessToken   *string   `gorm:"size:64;uniqueIndex:idx_leads_access_token"`
	CreatedAt     time.Time `gorm:"index:idx_leads_created_at,sort:desc"`
	UpdatedAt     time.Time
}

func (row) TableName() string {
	return "leads"
}

func newRow(lc LeadContext, token string, q *ClientQualification) (*row, error) {
	answers := lc.Answers
	if answers == nil {
		answers = Answers{}
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	r := &row{
		Answers:     datatypes.JSON(answersJSON),
		CompletedAt: lc.CompletedAt.UTC(),
		StepCount:   lc.StepCount,
	}
	if lc.Metadata != nil {
		b, err := json.Marshal(lc.Metadata)
		if err != nil {
			return nil, err
		}
		r.Metadata = datatypes.JSON(b)
	}
	if q != nil {
		b, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		r.Qualification = datatypes.JSON(b)
	}
	if token != "" {
		r.AccessToken = &token
	}
	return r, nil
}

func (r *row) toLead() (*Lead, error) {
	l := &Lead{
		ID:          r.ID,
		CompletedAt: r.CompletedAt,
		StepCount:   r.StepCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := json.Unmarshal(r.Answers, &l.Answers); err != nil {
		return nil, err
	}
	if len(r.Metadata) > 0 && string(r.Metadata) != "null" {
		l.Metadata = &Metadata{}
		if err := json.Unmarshal(r.Metadata, l.Metadata); err != nil {
			return nil, err
		}
	}
	if len(r.Qualification) > 0 && string(r.Qualification) != "null" {
		l.Qualification = &ClientQualification{}
		if err := json.Unmarshal(r.Qualification, l.Qualification); err != nil {
			return nil, err
		}
	}
	if r.AccessToken != nil {
		l.AccessToken = *r.AccessToken
	}
	return l, nil
}
