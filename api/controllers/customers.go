package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/api/responses"
	"github.com/hanamaru-app/hanamaru-backend/api/validators"
	"github.com/hanamaru-app/hanamaru-backend/internal/customers"
	"github.com/hanamaru-app/hanamaru-backend/internal/settlement"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
)

const maxHistoryLimit = 200

type customerRegisterRequest struct {
	Name  string  `json:"name" validate:"required,min=1"`
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone *string `json:"phone,omitempty"`
}

// CustomerRegister enrolls a new loyalty account.
func CustomerRegister(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload customerRegisterRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.Register(r.Context(), customers.RegisterCustomerInput{
			Name:  payload.Name,
			Email: payload.Email,
			Phone: payload.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

// CustomerGet fetches one loyalty account.
func CustomerGet(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customer, err := svc.GetByID(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, customer)
	}
}

// CustomerPointHistory returns the live balance plus the newest ledger entries.
func CustomerPointHistory(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.PointHistory(r.Context(), customerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, history)
	}
}

type settlementRecordResponse struct {
	ID            uuid.UUID `json:"id"`
	StoreID       uuid.UUID `json:"store_id"`
	AmountCharged int       `json:"amount_charged"`
	PointsUsed    int       `json:"points_used"`
	PointsEarned  int       `json:"points_earned"`
	Method        string    `json:"method"`
	Status        string    `json:"status"`
	SourceCode    string    `json:"source_code"`
	CreatedAt     time.Time `json:"created_at"`
}

// CustomerSettlements lists the customer's redemptions, newest first.
func CustomerSettlements(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := customerIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxHistoryLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.History(r.Context(), customerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]settlementRecordResponse, len(records))
		for i, record := range records {
			items[i] = settlementRecordResponse{
				ID:            record.ID,
				StoreID:       record.StoreID,
				AmountCharged: record.AmountCharged,
				PointsUsed:    record.PointsUsed,
				PointsEarned:  record.PointsEarned,
				Method:        string(record.Method),
				Status:        string(record.Status),
				SourceCode:    record.SourceCode,
				CreatedAt:     record.CreatedAt,
			}
		}
		responses.WriteSuccess(w, map[string]any{"settlements": items})
	}
}

func customerIDParam(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "customerId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id")
	}
	return id, nil
}
