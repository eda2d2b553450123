package snapshot

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

// earnRate is the point-earn rate applied to the charged amount: 5%,
// rounded down.
var earnRate = decimal.New(5, -2)

type rawLineItem struct {
	Name     string          `json:"name"`
	Price    json.RawMessage `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
	Total    json.RawMessage `json:"total"`
}

type rawSnapshot struct {
	StoreID     string          `json:"storeId"`
	StoreName   string          `json:"storeName"`
	Items       []rawLineItem   `json:"items"`
	Subtotal    json.RawMessage `json:"subtotal"`
	Tax         json.RawMessage `json:"tax"`
	PointsUsed  json.RawMessage `json:"pointsUsed"`
	TotalAmount json.RawMessage `json:"totalAmount"`
}

// Normalize parses a raw payment snapshot blob into a validated
// PaymentSnapshot. It is a pure function: the same input always yields the
// same output, and nothing is read from or written to storage.
//
// Upstream stores encode monetary fields inconsistently as JSON numbers or
// strings, so every amount passes through decimal coercion. Derivations run
// in a fixed order: points used is the absolute value of pointsUsed, the
// charge is totalAmount verbatim, and points earned is floor(charge * 0.05)
// recomputed here rather than trusted from the snapshot.
func Normalize(raw json.RawMessage) (*PaymentSnapshot, error) {
	if len(raw) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, "payment snapshot is empty")
	}

	var parsed rawSnapshot
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInvalidSnapshot, err, "payment snapshot is not valid JSON")
	}
	if strings.TrimSpace(parsed.StoreID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, "payment snapshot missing store id")
	}

	subtotal, err := coerceNonNegative(parsed.Subtotal, "subtotal")
	if err != nil {
		return nil, err
	}
	tax, err := coerceNonNegative(parsed.Tax, "tax")
	if err != nil {
		return nil, err
	}
	charge, err := coerceNonNegative(parsed.TotalAmount, "totalAmount")
	if err != nil {
		return nil, err
	}

	pointsUsed, err := coerceInt(parsed.PointsUsed, "pointsUsed")
	if err != nil {
		return nil, err
	}
	// upstream sometimes encodes usage as a negative delta
	if pointsUsed < 0 {
		pointsUsed = -pointsUsed
	}

	items := make([]LineItem, 0, len(parsed.Items))
	for i, item := range parsed.Items {
		unitPrice, err := coerceNonNegative(item.Price, fmt.Sprintf("items[%d].price", i))
		if err != nil {
			return nil, err
		}
		quantity, err := coerceNonNegative(item.Quantity, fmt.Sprintf("items[%d].quantity", i))
		if err != nil {
			return nil, err
		}
		lineTotal, err := coerceNonNegative(item.Total, fmt.Sprintf("items[%d].total", i))
		if err != nil {
			return nil, err
		}
		items = append(items, LineItem{
			Name:      item.Name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			LineTotal: lineTotal,
		})
	}

	earned := decimal.NewFromInt(int64(charge)).Mul(earnRate).Floor().IntPart()

	return &PaymentSnapshot{
		StoreID:      parsed.StoreID,
		StoreName:    parsed.StoreName,
		Items:        items,
		Subtotal:     subtotal,
		Tax:          tax,
		PointsUsed:   pointsUsed,
		PointsEarned: int(earned),
		ChargeAmount: charge,
	}, nil
}

// coerceInt accepts a JSON number or a numeric string and truncates it to a
// whole integer. Missing fields coerce to zero.
func coerceInt(raw json.RawMessage, field string) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	text := string(raw)
	if len(text) >= 2 && text[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, fmt.Sprintf("%s is not numeric", field))
		}
		text = strings.TrimSpace(unquoted)
		if text == "" {
			return 0, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, fmt.Sprintf("%s is not numeric", field))
		}
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, fmt.Sprintf("%s is not numeric", field))
	}
	return int(value.IntPart()), nil
}

func coerceNonNegative(raw json.RawMessage, field string) (int, error) {
	value, err := coerceInt(raw, field)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeInvalidSnapshot, fmt.Sprintf("%s must not be negative", field))
	}
	return value, nil
}
