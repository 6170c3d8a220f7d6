package users

import (
	"time"

	"github.com/bargen/bargen-backend/pkg/db/models"
	"github.com/bargen/bargen-backend/pkg/enums"
	"github.com/bargen/bargen-backend/pkg/types"
)

type UserProfileDTO struct {
	Principal types.Principal `json:"principal"`
	Name      string          `json:"name"`
	Email     *string         `json:"email,omitempty"`
	Phone     *string         `json:"phone,omitempty"`
	Role      enums.UserRole  `json:"role"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// SaveProfileInput holds the caller-editable profile fields.
type SaveProfileInput struct {
	Name  string
	Email *string
	Phone *string
}

func fromModel(m *models.UserProfile) *UserProfileDTO {
	if m == nil {
		return nil
	}
	return &UserProfileDTO{
		Principal: m.Principal,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Role:      m.Role,
		UpdatedAt: m.UpdatedAt,
	}
}
