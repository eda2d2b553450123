package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
)

// ProductDTO is the API-facing shape of a catalog entry.
type ProductDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	InStock   bool      `json:"in_stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductPage is one page of catalog results with the cursor for the next.
type ProductPage struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:        product.ID,
		StoreID:   product.StoreID,
		Name:      product.Name,
		Price:     product.Price,
		InStock:   product.InStock,
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}
