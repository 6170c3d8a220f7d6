package shops

import (
	"context"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles shop persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).First(&shop, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// FindByIDs returns the shops that still exist, keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Shop, error) {
	out := make(map[uuid.UUID]models.Shop, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Shop
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

func (r *Repository) ListByOwner(ctx context.Context, owner types.Principal) ([]models.Shop, error) {
	var rows []models.Shop
	err := r.db.WithContext(ctx).
		Where("owner = ?", owner).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}

func (r *Repository) List(ctx context.Context) ([]models.Shop, error) {
	var rows []models.Shop
	err := r.db.WithContext(ctx).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error
	return rows, err
}
