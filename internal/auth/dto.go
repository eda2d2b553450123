package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// UserDTO is the API-facing shape of a staff account.
type UserDTO struct {
	ID          uuid.UUID        `json:"id"`
	Email       string           `json:"email"`
	StoreID     uuid.UUID        `json:"store_id"`
	Role        enums.MemberRole `json:"role"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TokenPair bundles the credentials returned by login and refresh.
type TokenPair struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

func toUserDTO(user *models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		StoreID:     user.StoreID,
		Role:        user.Role,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
