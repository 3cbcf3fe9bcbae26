package lead

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu    sync.Mutex
	leads []NewLead
}

func (n *recordingNotifier) NotifyLead(nl NewLead) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.leads = append(n.leads, nl)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.leads)
}

func setupTestRouter(t *testing.T) (*gin.Engine, *Repository, *recordingNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := setupTestRepository(t)
	notifier := &recordingNotifier{}
	h := NewHandler(NewService(repo, notifier))

	r := gin.New()
	api := r.Group("/api")
	RegisterPublicRoutes(api, h)
	RegisterAdminRoutes(api.Group("/admin"), h)
	return r, repo, notifier
}

func performRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func validBody() map[string]any {
	return map[string]any{
		"email":   "jane@example.com",
		"name":    "Jane",
		"consent": true,
		"context": map[string]any{
			"answers": map[string]any{
				"service":  "architecture-frontend",
				"teamSize": "4-10",
				"stack":    []any{"vue", "nuxt"},
			},
			"completedAt": "2024-01-02T19:05:00.000Z",
			"stepCount":   4,
			"metadata":    map[string]any{"referrer": "https://google.com"},
		},
		"qualification": map[string]any{"score": 5, "level": "medium", "reasons": []string{"team_4_10"}},
		"locale":        "fr",
	}
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func submit(t *testing.T, r http.Handler, body any) SubmitLeadResponse {
	t.Helper()
	rr := performRequest(r, http.MethodPost, "/api/leads", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res SubmitLeadResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func TestSubmitLead_ThenRetrieve(t *testing.T) {
	r, _, notifier := setupTestRouter(t)

	res := submit(t, r, validBody())
	assert.Positive(t, res.ID)
	assert.Len(t, res.Token, 64)
	assert.Equal(t, 1, notifier.count())

	rr := performRequest(r, http.MethodGet, fmt.Sprintf("/api/leads/%d?token=%s", res.ID, res.Token), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var view map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, float64(res.ID), view["id"])
	assert.Contains(t, view["summary"], "RÉSUMÉ DU LEAD")
	assert.Contains(t, view, "createdAt")
	assert.Contains(t, view, "updatedAt")

	ctx := view["context"].(map[string]any)
	answers := ctx["answers"].(map[string]any)
	assert.Equal(t, "jane@example.com", answers["email"])
	assert.Equal(t, "architecture-frontend", answers["service"])
	assert.Equal(t, float64(4), ctx["stepCount"])

	q := view["qualification"].(map[string]any)
	assert.Equal(t, float64(5), q["score"])
	assert.Equal(t, "medium", q["level"])
}

func TestSubmitLead_TokenPaddedWithSpacesStillWorks(t *testing.T) {
	r, _, _ := setupTestRouter(t)
	res := submit(t, r, validBody())

	rr := performRequest(r, http.MethodGet, fmt.Sprintf("/api/leads/%d?token=%%20%s%%20", res.ID, res.Token), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSubmitLead_NoConsentDropsAnswers(t *testing.T) {
	r, repo, notifier := setupTestRouter(t)

	body := validBody()
	body["consent"] = false
	res := submit(t, r, body)
	assert.Equal(t, 0, notifier.count())

	stored, err := repo.GetByIDAndToken(t.Context(), res.ID, res.Token)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, Answers{"email": "jane@example.com", "name": "Jane"}, stored.Answers)
	assert.Equal(t, 4, stored.StepCount)
	require.NotNil(t, stored.Metadata)
	assert.Equal(t, "https://google.com", stored.Metadata.Referrer)
}

func TestSubmitLead_ClientQualificationStoredVerbatim(t *testing.T) {
	r, repo, _ := setupTestRouter(t)

	body := validBody()
	// nothing in the answers would score this high
	body["qualification"] = map[string]any{"score": 42, "level": "legendary"}
	res := submit(t, r, body)

	stored, err := repo.GetByID(t.Context(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, &ClientQualification{Score: 42, Level: "legendary"}, stored.Qualification)
}

func TestSubmitLead_Honeypot(t *testing.T) {
	r, repo, _ := setupTestRouter(t)

	body := validBody()
	body["website"] = "http://bot.example"
	rr := performRequest(r, http.MethodPost, "/api/leads", body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	e := decodeError(t, rr)
	assert.Equal(t, "INVALID_REQUEST", e.Error.Code)
	assert.NotContains(t, strings.ToLower(rr.Body.String()), "honeypot")

	n, err := repo.Count(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSubmitLead_MalformedBody(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := performRequest(r, http.MethodPost, "/api/leads", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_REQUEST_BODY", decodeError(t, rr).Error.Code)
}

func TestSubmitLead_ValidationErrors(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	cases := []struct {
		name   string
		mutate func(b map[string]any)
		field  string
	}{
		{"missing email", func(b map[string]any) { delete(b, "email") }, "email"},
		{"bad email", func(b map[string]any) { b["email"] = "nope" }, "email"},
		{"missing consent", func(b map[string]any) { delete(b, "consent") }, "consent"},
		{"missing context", func(b map[string]any) { delete(b, "context") }, "context"},
		{"bad locale", func(b map[string]any) { b["locale"] = "de" }, "locale"},
		{"zero steps", func(b map[string]any) { b["context"].(map[string]any)["stepCount"] = 0 }, "context.stepCount"},
		{"bad date", func(b map[string]any) { b["context"].(map[string]any)["completedAt"] = "yesterday" }, "context.completedAt"},
		{"offset date", func(b map[string]any) { b["context"].(map[string]any)["completedAt"] = "2024-01-02T19:05:00+01:00" }, "context.completedAt"},
		{"nested answer", func(b map[string]any) {
			b["context"].(map[string]any)["answers"].(map[string]any)["deep"] = map[string]any{"x": 1}
		}, "context.answers.deep"},
		{"qualification without level", func(b map[string]any) { b["qualification"] = map[string]any{"score": 1} }, "qualification.level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := validBody()
			tc.mutate(body)

			rr := performRequest(r, http.MethodPost, "/api/leads", body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			e := decodeError(t, rr)
			assert.False(t, e.Success)
			assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
			assert.Contains(t, e.Error.Details, tc.field)
		})
	}
}

func TestSubmitLead_WrongJSONTypeIsValidationError(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	body := validBody()
	body["consent"] = "yes"
	rr := performRequest(r, http.MethodPost, "/api/leads", body)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	e := decodeError(t, rr)
	assert.Equal(t, "VALIDATION_ERROR", e.Error.Code)
	assert.Contains(t, e.Error.Details, "consent")
}

func TestGetLead_Gates(t *testing.T) {
	r, _, _ := setupTestRouter(t)
	res := submit(t, r, validBody())

	cases := []struct {
		name string
		path string
		code int
		err  string
	}{
		{"non numeric id", "/api/leads/abc?token=x", http.StatusBadRequest, "INVALID_ID"},
		{"zero id", "/api/leads/0?token=x", http.StatusBadRequest, "INVALID_ID"},
		{"negative id", "/api/leads/-3?token=x", http.StatusBadRequest, "INVALID_ID"},
		{"missing token", fmt.Sprintf("/api/leads/%d", res.ID), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"blank token", fmt.Sprintf("/api/leads/%d?token=%%20%%20", res.ID), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"wrong token", fmt.Sprintf("/api/leads/%d?token=nope", res.ID), http.StatusNotFound, "LEAD_NOT_FOUND"},
		{"unknown id", fmt.Sprintf("/api/leads/%d?token=%s", res.ID+100, res.Token), http.StatusNotFound, "LEAD_NOT_FOUND"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := performRequest(r, http.MethodGet, tc.path, nil)
			assert.Equal(t, tc.code, rr.Code)
			assert.Equal(t, tc.err, decodeError(t, rr).Error.Code)
		})
	}
}

func TestGetLead_WrongTokenAndUnknownIDLookIdentical(t *testing.T) {
	r, _, _ := setupTestRouter(t)
	res := submit(t, r, validBody())

	wrongToken := performRequest(r, http.MethodGet, fmt.Sprintf("/api/leads/%d?token=nope", res.ID), nil)
	unknownID := performRequest(r, http.MethodGet, fmt.Sprintf("/api/leads/%d?token=nope", res.ID+1), nil)

	assert.Equal(t, wrongToken.Code, unknownID.Code)
	assert.Equal(t, wrongToken.Body.String(), unknownID.Body.String())
}

func TestGetLeadSummaryHTML(t *testing.T) {
	r, _, _ := setupTestRouter(t)
	res := submit(t, r, validBody())

	rr := performRequest(r, http.MethodGet, fmt.Sprintf("/api/leads/%d/summary.html?token=%s", res.ID, res.Token), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), `<div class="lead-summary">`)
}

func TestQualifyAnswers(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	rr := performRequest(r, http.MethodPost, "/api/leads/qualify", map[string]any{
		"answers": map[string]any{"teamSize": "1-3", "urgency": "3-6-mois"},
		"locale":  "fr",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "coaching", body["recommendedOffer"])
	assert.NotEmpty(t, body["message"])

	rr = performRequest(r, http.MethodPost, "/api/leads/qualify", map[string]any{"locale": "fr"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdminListAndGet(t *testing.T) {
	r, _, _ := setupTestRouter(t)
	first := submit(t, r, validBody())
	second := submit(t, r, validBody())

	rr := performRequest(r, http.MethodGet, "/api/admin/leads?limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list struct {
		Success bool             `json:"success"`
		Data    LeadListResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.True(t, list.Success)
	assert.Equal(t, int64(2), list.Data.Total)
	require.Len(t, list.Data.Leads, 2)
	assert.Equal(t, second.ID, list.Data.Leads[0].ID)
	assert.NotContains(t, rr.Body.String(), first.Token)

	rr = performRequest(r, http.MethodGet, fmt.Sprintf("/api/admin/leads/%d", first.ID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = performRequest(r, http.MethodGet, "/api/admin/leads/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
