package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
)

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content type, got %q", ct)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["hello"] != "world" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestWriteErrorMapsTypedCodes(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "code not found"), http.StatusNotFound, "NOT_FOUND"},
		{"already used", pkgerrors.New(pkgerrors.CodeAlreadyUsed, "this code cannot be redeemed"), http.StatusConflict, "CODE_ALREADY_USED"},
		{"invalid snapshot", pkgerrors.New(pkgerrors.CodeInvalidSnapshot, "this code cannot be redeemed"), http.StatusUnprocessableEntity, "INVALID_SNAPSHOT"},
		{"partial settlement", pkgerrors.New(pkgerrors.CodePartialSettlement, "settlement outcome ambiguous"), http.StatusInternalServerError, "PARTIAL_SETTLEMENT"},
		{"rate limited", pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d got %d", tc.wantStatus, rec.Code)
			}
			if body := decodeError(t, rec); body.Error.Code != tc.wantCode {
				t.Fatalf("expected code %s got %s", tc.wantCode, body.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, errors.New("database exploded at 10.0.0.4"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error.Message != "internal server error" {
		t.Fatalf("internal detail leaked: %q", body.Error.Message)
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeInsufficientBalance, "not enough points available").
		WithDetails(map[string]int{"available": 100, "requested": 150})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, err)

	body := decodeError(t, rec)
	if body.Error.Details["available"] != float64(100) || body.Error.Details["requested"] != float64(150) {
		t.Fatalf("expected balance details, got %+v", body.Error.Details)
	}
}

func TestWriteErrorSuppressesDisallowedDetails(t *testing.T) {
	err := pkgerrors.New(pkgerrors.CodeNotFound, "code not found").
		WithDetails(map[string]string{"reason": "expired"})

	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, err)

	if body := decodeError(t, rec); body.Error.Details != nil {
		t.Fatalf("details must not leak for NOT_FOUND, got %+v", body.Error.Details)
	}
}
