package customers

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/pkg/db/models"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
)

// CustomerDTO is the API-facing shape of a loyalty account.
type CustomerDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	PointsBalance int       `json:"points_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// PointHistoryDTO pairs the cached balance with its audit entries.
type PointHistoryDTO struct {
	Balance int              `json:"balance"`
	Entries []LedgerEntryDTO `json:"entries"`
}

// LedgerEntryDTO is one point movement in the history view.
type LedgerEntryDTO struct {
	ID          uuid.UUID             `json:"id"`
	Delta       int                   `json:"delta"`
	Kind        enums.LedgerEntryKind `json:"kind"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
}

func toCustomerDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:            customer.ID,
		Name:          customer.Name,
		Email:         customer.Email,
		Phone:         customer.Phone,
		PointsBalance: customer.PointsBalance,
		CreatedAt:     customer.CreatedAt,
	}
}

func toPointHistoryDTO(balance int, entries []models.PointLedgerEntry) *PointHistoryDTO {
	dto := &PointHistoryDTO{
		Balance: balance,
		Entries: make([]LedgerEntryDTO, 0, len(entries)),
	}
	for _, entry := range entries {
		dto.Entries = append(dto.Entries, LedgerEntryDTO{
			ID:          entry.ID,
			Delta:       entry.Delta,
			Kind:        entry.Kind,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return dto
}
