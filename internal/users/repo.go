package users

import (
	"context"
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes user profile persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByPrincipal(ctx context.Context, principal types.Principal) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.WithContext(ctx).First(&profile, "principal = ?", principal).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// SaveProfile inserts or updates the editable fields, leaving an existing role untouched.
func (r *Repository) SaveProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.Role == "" {
		profile.Role = enums.UserRoleUser
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "phone", "updated_at"}),
		}).
		Create(profile).Error
}

// SetRole upserts the stored role for principal.
func (r *Repository) SetRole(ctx context.Context, principal types.Principal, role enums.UserRole) error {
	now := time.Now().UTC()
	row := &models.UserProfile{Principal: principal, Role: role, CreatedAt: now, UpdatedAt: now}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "principal"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(row).Error
}
