package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hanamaru-app/hanamaru-backend/api/middleware"
	"github.com/hanamaru-app/hanamaru-backend/internal/products"
	pkgerrors "github.com/hanamaru-app/hanamaru-backend/pkg/errors"
	"github.com/hanamaru-app/hanamaru-backend/pkg/pagination"
)

type fakeProductService struct {
	created    *products.CreateProductInput
	page       *products.ProductPage
	lastParams pagination.Params
	lastStore  uuid.UUID
	deleted    uuid.UUID
	deleteErr  error
}

func (f *fakeProductService) Create(ctx context.Context, storeID uuid.UUID, input products.CreateProductInput) (*products.ProductDTO, error) {
	f.created = &input
	f.lastStore = storeID
	return &products.ProductDTO{ID: uuid.New(), StoreID: storeID, Name: input.Name, Price: input.Price}, nil
}

func (f *fakeProductService) GetByID(ctx context.Context, id, storeID uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: id, StoreID: storeID}, nil
}

func (f *fakeProductService) Update(ctx context.Context, id, storeID uuid.UUID, input products.UpdateProductInput) (*products.ProductDTO, error) {
	dto := &products.ProductDTO{ID: id, StoreID: storeID}
	if input.Name != nil {
		dto.Name = *input.Name
	}
	return dto, nil
}

func (f *fakeProductService) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = id
	return nil
}

func (f *fakeProductService) List(ctx context.Context, storeID uuid.UUID, params pagination.Params) (*products.ProductPage, error) {
	f.lastStore = storeID
	f.lastParams = params
	if f.page != nil {
		return f.page, nil
	}
	return &products.ProductPage{Items: []products.ProductDTO{}}, nil
}

func storeScopedRequest(method, target string, storeID uuid.UUID, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := middleware.WithStoreID(req.Context(), storeID.String())
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestProductCreateScopesToStore(t *testing.T) {
	svc := &fakeProductService{}
	storeID := uuid.New()

	req := storeScopedRequest(http.MethodPost, "/api/v1/products", storeID, `{"name":"Sunflower bundle","price":1200}`)
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastStore != storeID {
		t.Fatalf("store id not forwarded: %s", svc.lastStore)
	}
	if svc.created == nil || svc.created.Name != "Sunflower bundle" || svc.created.Price != 1200 {
		t.Fatalf("input not forwarded: %+v", svc.created)
	}
}

func TestProductCreateRejectsMissingStoreContext(t *testing.T) {
	svc := &fakeProductService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Lily","price":900}`))
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil)(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestProductListForwardsPagination(t *testing.T) {
	svc := &fakeProductService{}
	storeID := uuid.New()

	req := storeScopedRequest(http.MethodGet, "/api/v1/products?limit=3&cursor=abc", storeID, "")
	rec := httptest.NewRecorder()
	ProductList(svc, nil)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastParams.Limit != 3 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("pagination not forwarded: %+v", svc.lastParams)
	}
}

func TestProductDeleteMapsNotFound(t *testing.T) {
	svc := &fakeProductService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
	storeID := uuid.New()

	req := storeScopedRequest(http.MethodDelete, "/api/v1/products/x", storeID, "")
	req = withURLParam(req, "productId", uuid.NewString())
	rec := httptest.NewRecorder()
	ProductDelete(svc, nil)(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error.Code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND got %s", body.Error.Code)
	}
}

func TestProductGetRejectsBadID(t *testing.T) {
	svc := &fakeProductService{}
	storeID := uuid.New()

	req := storeScopedRequest(http.MethodGet, "/api/v1/products/nope", storeID, "")
	req = withURLParam(req, "productId", "nope")
	rec := httptest.NewRecorder()
	ProductGet(svc, nil)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
