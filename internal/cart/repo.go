package cart

import (
	"context"
	"errors"
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrQuantityLimit means the line would grow past the allowed quantity.
var ErrQuantityLimit = errors.New("cart line quantity limit reached")

// Repository persists cart lines and insurance selections.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// AddQuantity inserts the line or increases an existing line by quantity in a
// single statement, then returns the stored row. The increase is skipped, and
// ErrQuantityLimit returned, when the line would exceed maxQuantity.
func (r *Repository) AddQuantity(ctx context.Context, customer types.Principal, productID uuid.UUID, quantity, maxQuantity int64) (*models.CartItem, error) {
	if quantity > maxQuantity {
		return nil, ErrQuantityLimit
	}
	now := time.Now().UTC()
	item := &models.CartItem{
		Customer:  customer,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "customer"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": now,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("cart_items.quantity + excluded.quantity <= ?", maxQuantity),
			}},
		}).
		Create(item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrQuantityLimit
	}
	return r.FindItem(ctx, customer, productID)
}

func (r *Repository) FindItem(ctx context.Context, customer types.Principal, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer = ? AND product_id = ?", customer, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) RemoveItem(ctx context.Context, customer types.Principal, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer = ? AND product_id = ?", customer, productID).
		Delete(&models.CartItem{}).Error
}

// ListItems returns the customer's lines oldest first, dangling ones included.
func (r *Repository) ListItems(ctx context.Context, customer types.Principal) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("customer = ?", customer).
		Order("created_at ASC").Order("product_id ASC").
		Find(&rows).Error
	return rows, err
}

// FindInsurance returns nil when the customer has no selection.
func (r *Repository) FindInsurance(ctx context.Context, customer types.Principal) (*models.InsuranceSelection, error) {
	var selection models.InsuranceSelection
	err := r.db.WithContext(ctx).First(&selection, "customer = ?", customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

func (r *Repository) SaveInsurance(ctx context.Context, selection *models.InsuranceSelection) error {
	selection.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "details", "premium", "coverage_amount", "updated_at"}),
		}).
		Create(selection).Error
}

func (r *Repository) ClearInsurance(ctx context.Context, customer types.Principal) error {
	return r.db.WithContext(ctx).
		Where("customer = ?", customer).
		Delete(&models.InsuranceSelection{}).Error
}
