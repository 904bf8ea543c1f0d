package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productsvc "github.com/creamlane/creamery-backend/internal/products"
	pkgerrors "github.com/creamlane/creamery-backend/pkg/errors"
	"github.com/creamlane/creamery-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func withProductID(req *http.Request, id string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

type stubProductService struct {
	productsvc.Service

	createFn  func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error)
	updateFn  func(ctx context.Context, id uuid.UUID, input productsvc.UpdatePriceInput) (*productsvc.ProductDTO, error)
	deleteFn  func(ctx context.Context, id uuid.UUID) (*productsvc.DeletedProductDTO, error)
	priceAtFn func(ctx context.Context, id uuid.UUID, at time.Time) (*productsvc.PriceQuoteDTO, error)
	currentFn func(ctx context.Context, id uuid.UUID) (*productsvc.PriceQuoteDTO, error)
}

func (s *stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return s.createFn(ctx, input)
}

func (s *stubProductService) UpdatePrice(ctx context.Context, id uuid.UUID, input productsvc.UpdatePriceInput) (*productsvc.ProductDTO, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubProductService) DeleteProduct(ctx context.Context, id uuid.UUID) (*productsvc.DeletedProductDTO, error) {
	return s.deleteFn(ctx, id)
}

func (s *stubProductService) GetPriceAt(ctx context.Context, id uuid.UUID, at time.Time) (*productsvc.PriceQuoteDTO, error) {
	return s.priceAtFn(ctx, id, at)
}

func (s *stubProductService) GetCurrentPrice(ctx context.Context, id uuid.UUID) (*productsvc.PriceQuoteDTO, error) {
	return s.currentFn(ctx, id)
}

func TestCreateProduct(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{
			createFn: func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
				assert.Equal(t, "Vanilla", input.Name)
				assert.True(t, input.InitialPrice.Equal(decimal.RequireFromString("4.20")))
				price := input.InitialPrice
				return &productsvc.ProductDTO{ID: uuid.New(), Name: input.Name, CurrentPrice: &price}, nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Vanilla","price":"4.20"}`))
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body struct {
			Data productsvc.ProductDTO `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "Vanilla", body.Data.Name)
	})

	t.Run("missing name", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"price":"4.20"}`))
		rec := httptest.NewRecorder()
		CreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Vanilla","price":"1.00","bogus":true}`))
		rec := httptest.NewRecorder()
		CreateProduct(&stubProductService{}, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("conflict surfaces as 409", func(t *testing.T) {
		stub := &stubProductService{
			createFn: func(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "product name already in use")
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/products", strings.NewReader(`{"name":"Vanilla","price":"1.00"}`))
		rec := httptest.NewRecorder()
		CreateProduct(stub, logg).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUpdateProduct(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{
			updateFn: func(ctx context.Context, id uuid.UUID, input productsvc.UpdatePriceInput) (*productsvc.ProductDTO, error) {
				assert.Equal(t, productID, id)
				price := input.Price
				return &productsvc.ProductDTO{ID: id, Name: input.Name, CurrentPrice: &price}, nil
			},
		}
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String(), strings.NewReader(`{"name":"Vanilla","price":"5.00"}`))
		rec := httptest.NewRecorder()
		UpdateProduct(stub, logg).ServeHTTP(rec, withProductID(req, productID.String()))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/nope", strings.NewReader(`{"name":"x","price":"1.00"}`))
		rec := httptest.NewRecorder()
		UpdateProduct(&stubProductService{}, logg).ServeHTTP(rec, withProductID(req, "nope"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubProductService{
			updateFn: func(ctx context.Context, id uuid.UUID, input productsvc.UpdatePriceInput) (*productsvc.ProductDTO, error) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			},
		}
		req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+productID.String(), strings.NewReader(`{"name":"x","price":"1.00"}`))
		rec := httptest.NewRecorder()
		UpdateProduct(stub, logg).ServeHTTP(rec, withProductID(req, productID.String()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteProduct(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	stub := &stubProductService{
		deleteFn: func(ctx context.Context, id uuid.UUID) (*productsvc.DeletedProductDTO, error) {
			price := decimal.RequireFromString("5.00")
			return &productsvc.DeletedProductDTO{ID: id, Name: "Vanilla", LastPrice: &price, DeletedAt: time.Now()}, nil
		},
	}
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+productID.String(), nil)
	rec := httptest.NewRecorder()
	DeleteProduct(stub, logg).ServeHTTP(rec, withProductID(req, productID.String()))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data productsvc.DeletedProductDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, productID, body.Data.ID)
	require.NotNil(t, body.Data.LastPrice)
}

func TestGetProductPrice(t *testing.T) {
	logg := testLogger()
	productID := uuid.New()

	t.Run("point in time", func(t *testing.T) {
		want := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		stub := &stubProductService{
			priceAtFn: func(ctx context.Context, id uuid.UUID, at time.Time) (*productsvc.PriceQuoteDTO, error) {
				assert.True(t, at.Equal(want))
				price := decimal.RequireFromString("2.00")
				return &productsvc.PriceQuoteDTO{ProductID: id, Price: &price, At: at}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/price?at=2025-06-01T00:00:00Z", nil)
		rec := httptest.NewRecorder()
		GetProductPrice(stub, logg).ServeHTTP(rec, withProductID(req, productID.String()))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("defaults to current", func(t *testing.T) {
		stub := &stubProductService{
			currentFn: func(ctx context.Context, id uuid.UUID) (*productsvc.PriceQuoteDTO, error) {
				price := decimal.RequireFromString("3.00")
				return &productsvc.PriceQuoteDTO{ProductID: id, Price: &price, At: time.Now()}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/price", nil)
		rec := httptest.NewRecorder()
		GetProductPrice(stub, logg).ServeHTTP(rec, withProductID(req, productID.String()))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+productID.String()+"/price?at=yesterday", nil)
		rec := httptest.NewRecorder()
		GetProductPrice(&stubProductService{}, logg).ServeHTTP(rec, withProductID(req, productID.String()))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
