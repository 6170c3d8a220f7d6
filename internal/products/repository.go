package products

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/bargen/bargen-backend/internal/compare"
	"github.com/bargen/bargen-backend/pkg/db"
	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles product persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// Update persists every editable column of product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes the row only. References elsewhere are left dangling.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products that still exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) ListByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ?", shopID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ListFilter narrows List. Zero values match everything.
type ListFilter struct {
	NameContains string
	Condition    enums.ProductCondition
}

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if q := compare.NormalizeName(filter.NameContains); q != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", "%"+escapeLike(q)+"%")
	}
	if filter.Condition != "" {
		query = query.Where("condition = ?", filter.Condition)
	}
	var rows []models.Product
	err := query.Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListByName prefilters candidates whose trimmed, lowercased name equals name.
// SQLite's LOWER only folds ASCII, so a non-ASCII name is not filtered there
// and the caller's exact match decides.
func (r *Repository) ListByName(ctx context.Context, name string) ([]models.Product, error) {
	normalized := compare.NormalizeName(name)
	q := r.db.WithContext(ctx)
	if isASCII(normalized) || db.IsPostgres(r.db) {
		q = q.Where("LOWER(TRIM(name)) = ?", normalized)
	}
	var rows []models.Product
	err := q.Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func escapeLike(value string) string {
	return strings.NewReplacer("%", `\%`, "_", `\_`).Replace(value)
}
