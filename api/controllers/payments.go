package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/api/responses"
	"github.com/hanamaru-app/hanamaru-backend/api/validators"
	"github.com/hanamaru-app/hanamaru-backend/internal/settlement"
	"github.com/hanamaru-app/hanamaru-backend/internal/snapshot"
	"github.com/hanamaru-app/hanamaru-backend/pkg/enums"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/logger"
)

type paymentVerifyRequest struct {
	Code string `json:"code" validate:"required"`
}

type snapshotResponse struct {
	StoreID      string             `json:"store_id"`
	StoreName    string             `json:"store_name"`
	Items        []lineItemResponse `json:"items"`
	Subtotal     int                `json:"subtotal"`
	Tax          int                `json:"tax"`
	PointsUsed   int                `json:"points_used"`
	PointsEarned int                `json:"points_earned"`
	ChargeAmount int                `json:"charge_amount"`
}

type lineItemResponse struct {
	Name      string `json:"name"`
	UnitPrice int    `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal int    `json:"line_total"`
}

type paymentVerifyResponse struct {
	Namespace enums.CodeNamespace `json:"namespace"`
	ExpiresAt time.Time           `json:"expires_at"`
	Snapshot  snapshotResponse    `json:"snapshot"`
}

// PaymentVerify previews a payment code without consuming it.
func PaymentVerify(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentVerifyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Verify(r.Context(), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentVerifyResponse{
			Namespace: result.Namespace,
			ExpiresAt: result.ExpiresAt,
			Snapshot:  toSnapshotResponse(result.Snapshot),
		})
	}
}

type paymentRedeemRequest struct {
	Code          string `json:"code" validate:"required"`
	CustomerID    string `json:"customer_id" validate:"required,uuid"`
	PaymentMethod string `json:"payment_method" validate:"omitempty"`
}

type paymentRedeemResponse struct {
	Status       enums.SettlementStatus `json:"status"`
	Charged      int                    `json:"charged"`
	PointsUsed   int                    `json:"points_used"`
	PointsEarned int                    `json:"points_earned"`
	NewBalance   int                    `json:"new_balance"`
}

// PaymentRedeem settles a sale against a payment code: it debits and credits
// the customer's points, records the sale, and consumes the code.
func PaymentRedeem(svc settlement.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload paymentRedeemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID, err := uuid.Parse(payload.CustomerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id"))
			return
		}

		var method enums.PaymentMethod
		if payload.PaymentMethod != "" {
			method, err = enums.ParsePaymentMethod(payload.PaymentMethod)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
				return
			}
		}

		result, err := svc.Redeem(r.Context(), settlement.RedeemInput{
			Code:       payload.Code,
			CustomerID: customerID,
			Method:     method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, paymentRedeemResponse{
			Status:       result.Status,
			Charged:      result.Charged,
			PointsUsed:   result.PointsUsed,
			PointsEarned: result.PointsEarned,
			NewBalance:   result.NewBalance,
		})
	}
}

func toSnapshotResponse(snap *snapshot.PaymentSnapshot) snapshotResponse {
	if snap == nil {
		return snapshotResponse{}
	}
	items := make([]lineItemResponse, 0, len(snap.Items))
	for _, item := range snap.Items {
		items = append(items, lineItemResponse{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal,
		})
	}
	return snapshotResponse{
		StoreID:      snap.StoreID,
		StoreName:    snap.StoreName,
		Items:        items,
		Subtotal:     snap.Subtotal,
		Tax:          snap.Tax,
		PointsUsed:   snap.PointsUsed,
		PointsEarned: snap.PointsEarned,
		ChargeAmount: snap.ChargeAmount,
	}
}
