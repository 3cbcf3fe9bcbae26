package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"portfolio/internal/database"
	"portfolio/internal/pkg/response"
)

// VersionFunc returns the database server version.
type VersionFunc func(ctx context.Context) (string, error)

type Handler struct {
	driver  string
	version VersionFunc
	now     func() time.Time
}

func NewHandler(driver string, version VersionFunc) *Handler {
	return &Handler{driver: driver, version: version, now: time.Now}
}

// NewDBHandler reports on db.
func NewDBHandler(db *gorm.DB) *Handler {
	return NewHandler(db.Dialector.Name(), func(ctx context.Context) (string, error) {
		return database.Version(ctx, db)
	})
}

type DBVersionResponse struct {
	Version   string    `json:"version"`
	Connected bool      `json:"connected"`
	Driver    string    `json:"driver"`
	Timestamp time.Time `json:"timestamp"`
}

// DBVersion handles GET /api/db-version
// @Summary Database connectivity check
// @Tags Health
// @Produce json
// @Success 200 {object} DBVersionResponse
// @Failure 500 {object} response.Response
// @Router /db-version [get]
func (h *Handler) DBVersion(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	v, err := h.version(ctx)
	if err != nil {
		response.Internal(c, err)
		return
	}

	c.JSON(http.StatusOK, DBVersionResponse{
		Version:   v,
		Connected: true,
		Driver:    h.driver,
		Timestamp: h.now().UTC(),
	})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/db-version", h.DBVersion)
}
