package snapshot

import (
	"encoding/json"
	"reflect"
	"testing"

	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

func TestNormalizeRepresentativeSale(t *testing.T) {
	// subtotal 3000, tax 270 on the post-points amount, 200 points applied,
	// totalAmount pre-agreed at 3070
	raw := json.RawMessage(`{
		"storeId": "store-1",
		"storeName": "Hanamaru Ikebukuro",
		"items": [
			{"name": "Rose bouquet", "price": 2500, "quantity": 1, "total": 2500},
			{"name": "Gift wrap", "price": 250, "quantity": 2, "total": 500}
		],
		"subtotal": 3000,
		"tax": 270,
		"pointsUsed": 200,
		"pointsEarned": 999,
		"totalAmount": 3070
	}`)

	snap, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if snap.ChargeAmount != 3070 {
		t.Errorf("charge: want 3070, got %d", snap.ChargeAmount)
	}
	if snap.PointsUsed != 200 {
		t.Errorf("points used: want 200, got %d", snap.PointsUsed)
	}
	// floor(3070 * 0.05) = 153, recomputed regardless of the snapshot's hint
	if snap.PointsEarned != 153 {
		t.Errorf("points earned: want 153, got %d", snap.PointsEarned)
	}
	if len(snap.Items) != 2 || snap.Items[1].Quantity != 2 || snap.Items[1].LineTotal != 500 {
		t.Errorf("unexpected items: %+v", snap.Items)
	}
}

func TestNormalizeCoercesStringAmounts(t *testing.T) {
	raw := json.RawMessage(`{
		"storeId": "store-1",
		"storeName": "Hanamaru",
		"items": [{"name": "Tulip", "price": "480", "quantity": "3", "total": "1440"}],
		"subtotal": "1440",
		"tax": "144",
		"pointsUsed": "0",
		"totalAmount": "1584"
	}`)

	snap, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if snap.Subtotal != 1440 || snap.Tax != 144 || snap.ChargeAmount != 1584 {
		t.Fatalf("coercion mismatch: %+v", snap)
	}
	if snap.Items[0].UnitPrice != 480 || snap.Items[0].Quantity != 3 {
		t.Fatalf("item coercion mismatch: %+v", snap.Items[0])
	}
	if snap.PointsEarned != 79 { // floor(1584 * 0.05)
		t.Fatalf("points earned: want 79, got %d", snap.PointsEarned)
	}
}

func TestNormalizeTakesAbsoluteValueOfPointsUsed(t *testing.T) {
	raw := json.RawMessage(`{
		"storeId": "store-1",
		"subtotal": 1000, "tax": 100, "pointsUsed": -150, "totalAmount": 950
	}`)

	snap, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if snap.PointsUsed != 150 {
		t.Fatalf("points used: want 150, got %d", snap.PointsUsed)
	}
}

func TestNormalizeIsPure(t *testing.T) {
	raw := json.RawMessage(`{
		"storeId": "store-9",
		"storeName": "Hanamaru Ueno",
		"items": [{"name": "Lily", "price": 800, "quantity": 1, "total": 800}],
		"subtotal": "800", "tax": "80", "pointsUsed": "50", "totalAmount": "830"
	}`)

	first, err := Normalize(raw)
	if err != nil {
		t.Fatalf("first normalize: %v", err)
	}
	second, err := Normalize(raw)
	if err != nil {
		t.Fatalf("second normalize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("normalize not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty", ``},
		{"not json", `{`},
		{"missing store id", `{"subtotal": 100, "tax": 10, "totalAmount": 110}`},
		{"negative total", `{"storeId": "s", "subtotal": 100, "tax": 10, "totalAmount": -110}`},
		{"negative tax", `{"storeId": "s", "subtotal": 100, "tax": -10, "totalAmount": 110}`},
		{"non numeric subtotal", `{"storeId": "s", "subtotal": "abc", "tax": 10, "totalAmount": 110}`},
		{"empty string amount", `{"storeId": "s", "subtotal": "", "tax": 10, "totalAmount": 110}`},
		{"negative item price", `{"storeId": "s", "items": [{"name": "x", "price": -5, "quantity": 1, "total": 5}], "subtotal": 5, "tax": 0, "totalAmount": 5}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(json.RawMessage(tc.raw))
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeInvalidSnapshot {
				t.Fatalf("expected invalid snapshot error, got %v", err)
			}
		})
	}
}

func TestNormalizeMissingOptionalFieldsDefaultToZero(t *testing.T) {
	raw := json.RawMessage(`{"storeId": "s", "totalAmount": 500}`)

	snap, err := Normalize(raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if snap.Subtotal != 0 || snap.Tax != 0 || snap.PointsUsed != 0 {
		t.Fatalf("expected zero defaults, got %+v", snap)
	}
	if snap.PointsEarned != 25 {
		t.Fatalf("points earned: want 25, got %d", snap.PointsEarned)
	}
}
