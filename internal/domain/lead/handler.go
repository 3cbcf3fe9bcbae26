package lead

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio/internal/pkg/response"
	"portfolio/internal/pkg/validator"
)

// Handler handles lead HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates lead handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitLead handles POST /api/leads (public)
// @Summary Submit a qualified lead
// @Description Stores the questionnaire answers and returns the access token for reading them back
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body SubmitLeadRequest true "Lead submission"
// @Success 200 {object} SubmitLeadResponse
// @Failure 400 {object} response.Response
// @Failure 429 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /leads [post]
func (h *Handler) SubmitLead(c *gin.Context) {
	var req SubmitLeadRequest
	if !bindJSON(c, &req) {
		return
	}

	errs := validator.Validate(&req)
	if req.Context != nil {
		for k, v := range req.Context.answerErrors() {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[k] = v
		}
	}
	if errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	// validated above, cannot fail
	completedAt, _ := validator.ParseISODatetime(req.Context.CompletedAt)

	res, err := h.service.Submit(c.Request.Context(), Submission{
		Email:         req.Email,
		Name:          req.Name,
		Consent:       *req.Consent,
		Answers:       req.Context.Answers,
		CompletedAt:   completedAt,
		StepCount:     req.Context.StepCount,
		Metadata:      req.Context.Metadata,
		Qualification: req.Qualification.toClientQualification(),
		Locale:        req.Locale,
		Website:       req.Website,
	})
	if err != nil {
		if errors.Is(err, ErrHoneypot) {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request")
			return
		}
		response.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetLead handles GET /api/leads/:id?token= (public)
// @Summary Read back a lead
// @Description Returns the stored answers and a readable summary. Requires the token issued at submission.
// @Tags Leads
// @Produce json
// @Param id path int true "Lead ID"
// @Param token query string true "Access token"
// @Success 200 {object} LeadView
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /leads/{id} [get]
func (h *Handler) GetLead(c *gin.Context) {
	view, ok := h.retrieve(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetLeadSummaryHTML handles GET /api/leads/:id/summary.html?token= (public)
// @Summary Lead summary as HTML
// @Tags Leads
// @Produce html
// @Param id path int true "Lead ID"
// @Param token query string true "Access token"
// @Success 200 {string} string
// @Failure 404 {object} response.Response
// @Router /leads/{id}/summary.html [get]
func (h *Handler) GetLeadSummaryHTML(c *gin.Context) {
	view, ok := h.retrieve(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(SummaryHTML(view.Context)))
}

// retrieve runs the id/token gates shared by the public read endpoints.
func (h *Handler) retrieve(c *gin.Context) (*LeadView, bool) {
	id, ok := parseID(c)
	if !ok {
		return nil, false
	}

	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Access token required")
		return nil, false
	}

	view, err := h.service.Retrieve(c.Request.Context(), id, token)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
			return nil, false
		}
		response.Internal(c, err)
		return nil, false
	}
	return view, true
}

// QualifyAnswers handles POST /api/leads/qualify (public)
// @Summary Score questionnaire answers
// @Tags Leads
// @Accept json
// @Produce json
// @Param request body QualifyRequest true "Answers"
// @Success 200 {object} QualifyResponse
// @Failure 400 {object} response.Response
// @Router /leads/qualify [post]
func (h *Handler) QualifyAnswers(c *gin.Context) {
	var req QualifyRequest
	if !bindJSON(c, &req) {
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return
	}

	c.JSON(http.StatusOK, h.service.Qualify(req))
}

// ListLeads handles GET /api/admin/leads
// @Summary List leads
// @Tags Admin Leads
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} response.Response{data=LeadListResponse}
// @Failure 500 {object} response.Response
// @Router /admin/leads [get]
func (h *Handler) ListLeads(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
			limit = v
		}
	}

	offset := 0
	if o := c.Query("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	list, err := h.service.ListLeads(c.Request.Context(), limit, offset)
	if err != nil {
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, list)
}

// GetLeadAdmin handles GET /api/admin/leads/:id
// @Summary Get lead by ID
// @Tags Admin Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} response.Response{data=LeadView}
// @Failure 404 {object} response.Response
// @Router /admin/leads/{id} [get]
func (h *Handler) GetLeadAdmin(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			response.Error(c, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
			return
		}
		response.Internal(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid lead ID")
		return 0, false
	}
	return id, true
}

// bindJSON decodes the body. A value of the wrong JSON type is reported as a
// field validation error; anything else unparseable is a bad body.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "_"
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body",
			map[string]string{field: "type"})
		return false
	}

	response.Error(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Invalid JSON body")
	return false
}
