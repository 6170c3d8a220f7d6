package bargains

import (
	"context"
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists bargain requests.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) Create(ctx context.Context, bargain *models.BargainRequest) error {
	return r.db.WithContext(ctx).Create(bargain).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BargainRequest, error) {
	var bargain models.BargainRequest
	if err := r.db.WithContext(ctx).First(&bargain, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &bargain, nil
}

// MarkAccepted flips a pending bargain to accepted. It reports whether this
// call performed the transition; a bargain that is already accepted is left alone.
func (r *Repository) MarkAccepted(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BargainRequest{}).
		Where("id = ? AND mutually_accepted = ?", id, false).
		Updates(map[string]any{
			"status":            enums.BargainStatusAccepted,
			"mutually_accepted": true,
			"accepted_at":       at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.BargainRequest, error) {
	var rows []models.BargainRequest
	err := newestFirst(r.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		Find(&rows).Error
	return rows, err
}

// ListByProductForParticipant returns bargains on productID where principal is
// the customer or the shopkeeper.
func (r *Repository) ListByProductForParticipant(ctx context.Context, productID uuid.UUID, principal types.Principal) ([]models.BargainRequest, error) {
	var rows []models.BargainRequest
	err := newestFirst(r.db.WithContext(ctx)).
		Where("product_id = ?", productID).
		Where("customer = ? OR shopkeeper = ?", principal, principal).
		Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByCustomer(ctx context.Context, customer types.Principal) ([]models.BargainRequest, error) {
	var rows []models.BargainRequest
	err := newestFirst(r.db.WithContext(ctx)).
		Where("customer = ?", customer).
		Find(&rows).Error
	return rows, err
}

// FindAccepted returns the most recently accepted bargain between customer and shop.
func (r *Repository) FindAccepted(ctx context.Context, customer types.Principal, shopID uuid.UUID) (*models.BargainRequest, error) {
	var bargain models.BargainRequest
	err := r.db.WithContext(ctx).
		Where("customer = ? AND shop_id = ? AND mutually_accepted = ?", customer, shopID, true).
		Order("accepted_at DESC").Order("id DESC").
		First(&bargain).Error
	if err != nil {
		return nil, err
	}
	return &bargain, nil
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
