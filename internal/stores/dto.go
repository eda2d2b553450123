package stores

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
)

// StoreDTO is the API-facing shape of a store profile.
type StoreDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toStoreDTO(store *models.Store) *StoreDTO {
	return &StoreDTO{
		ID:        store.ID,
		Name:      store.Name,
		Address:   store.Address,
		Phone:     store.Phone,
		Email:     store.Email,
		CreatedAt: store.CreatedAt,
		UpdatedAt: store.UpdatedAt,
	}
}
