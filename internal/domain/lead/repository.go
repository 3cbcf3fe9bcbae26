package lead

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const defaultListLimit = 100

// Repository handles lead data access
type Repository struct {
	db *gorm.DB
}

// NewRepository creates lead repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the leads table and its indexes. Safe to call repeatedly.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&row{})
}

// Insert stores a new lead and returns its id. A token already held by another
// row yields ErrDuplicateToken.
func (r *Repository) Insert(ctx context.Context, lc LeadContext, token string, q *ClientQualification) (int64, error) {
	rec, err := newRow(lc, token, q)
	if err != nil {
		return 0, err
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isTokenConflict(err) {
			return 0, ErrDuplicateToken
		}
		return 0, err
	}
	return rec.ID, nil
}

// GetByID retrieves lead by ID; nil when absent.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Lead, error) {
	var rec row
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.toLead()
}

// GetByIDAndToken returns nil both for an unknown id and for a wrong token.
func (r *Repository) GetByIDAndToken(ctx context.Context, id int64, token string) (*Lead, error) {
	var rec row
	err := r.db.WithContext(ctx).
		Where("id = ? AND access_token = ?", id, token).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.toLead()
}

// ListAll returns leads newest first.
func (r *Repository) ListAll(ctx context.Context, limit, offset int) ([]Lead, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	var recs []row
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}

	leads := make([]Lead, 0, len(recs))
	for i := range recs {
		l, err := recs[i].toLead()
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&row{}).Count(&n).Error
	return n, err
}

// isTokenConflict detects a unique violation on access_token for postgres and sqlite.
func isTokenConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "access_token")
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		isUnique := code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code&0xff == sqlite3.SQLITE_CONSTRAINT
		return isUnique && strings.Contains(liteErr.Error(), "access_token")
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}
