package lead

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"portfolio/internal/domain/qualification"
)

const tokenBytes = 32

// Store defines lead data access
type Store interface {
	Insert(ctx context.Context, lc LeadContext, token string, q *ClientQualification) (int64, error)
	GetByID(ctx context.Context, id int64) (*Lead, error)
	GetByIDAndToken(ctx context.Context, id int64, token string) (*Lead, error)
	ListAll(ctx context.Context, limit, offset int) ([]Lead, error)
	Count(ctx context.Context) (int64, error)
}

// Notifier is told about new consented leads. NotifyLead must not block.
type Notifier interface {
	NotifyLead(nl NewLead)
}

// Service handles lead business logic
type Service struct {
	repo     Store
	notifier Notifier
	newToken func() (string, error)
	now      func() time.Time
}

// NewService creates lead service. notifier may be nil.
func NewService(repo Store, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		newToken: generateAccessToken,
		now:      time.Now,
	}
}

// generateAccessToken returns 32 random bytes, hex encoded.
func generateAccessToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Submit stores a lead and, when the visitor consented, queues the admin notification.
func (s *Service) Submit(ctx context.Context, sub Submission) (*SubmitLeadResponse, error) {
	if strings.TrimSpace(sub.Website) != "" {
		return nil, ErrHoneypot
	}

	lc := buildContext(sub)

	token, err := s.newToken()
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Insert(ctx, lc, token, sub.Qualification)
	if errors.Is(err, ErrDuplicateToken) {
		// one retry with a fresh token
		if token, err = s.newToken(); err != nil {
			return nil, err
		}
		id, err = s.repo.Insert(ctx, lc, token, sub.Qualification)
	}
	if err != nil {
		return nil, err
	}

	if sub.Consent && s.notifier != nil {
		locale := sub.Locale
		if locale == "" {
			locale = string(qualification.LocaleEN)
		}
		s.notifier.NotifyLead(NewLead{
			LeadID:        id,
			Token:         token,
			Email:         sub.Email,
			Name:          sub.Name,
			Context:       lc,
			Qualification: sub.Qualification,
			Locale:        locale,
		})
	}

	return &SubmitLeadResponse{ID: id, Token: token}, nil
}

// buildContext keeps only contact fields unless the visitor consented.
func buildContext(sub Submission) LeadContext {
	answers := Answers{"email": sub.Email}
	if sub.Name != "" {
		answers["name"] = sub.Name
	}
	if sub.Consent {
		for k, v := range sub.Answers {
			answers[k] = v
		}
	}

	return LeadContext{
		Answers:     answers,
		CompletedAt: sub.CompletedAt,
		StepCount:   sub.StepCount,
		Metadata:    sub.Metadata,
	}
}

// Retrieve returns the lead view when id and token match. Unknown id and wrong
// token both yield ErrLeadNotFound.
func (s *Service) Retrieve(ctx context.Context, id int64, token string) (*LeadView, error) {
	l, err := s.repo.GetByIDAndToken(ctx, id, token)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	return s.view(l), nil
}

// GetByID returns lead by ID
func (s *Service) GetByID(ctx context.Context, id int64) (*LeadView, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, ErrLeadNotFound
	}
	return s.view(l), nil
}

// ListLeads returns a page of leads, newest first, with the total count.
func (s *Service) ListLeads(ctx context.Context, limit, offset int) (*LeadListResponse, error) {
	leads, err := s.repo.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &LeadListResponse{Leads: leads, Total: total}, nil
}

// Qualify scores answers on the server and phrases the result.
func (s *Service) Qualify(req QualifyRequest) QualifyResponse {
	res := qualification.Qualify(req.Answers)
	locale := qualification.ParseLocale(req.Locale)
	return QualifyResponse{
		Result:  res,
		Message: qualification.FormatMessage(locale, res),
	}
}

func (s *Service) view(l *Lead) *LeadView {
	lc := l.Context()
	return &LeadView{
		ID:            l.ID,
		Summary:       Summary(lc, s.now()),
		Context:       lc,
		Qualification: l.Qualification,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
