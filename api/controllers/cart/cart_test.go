package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/shopfront/storefront/api/middleware"
	cartsvc "github.com/shopfront/storefront/internal/cart"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
)

type stubCartService struct {
	cart *cartsvc.CartDTO
	err  error

	lastUser     uuid.UUID
	lastProduct  uuid.UUID
	lastQuantity int
	cleared      bool
}

func (s *stubCartService) GetCart(_ context.Context, userID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastUser = userID
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.lastUser, s.lastProduct, s.lastQuantity = userID, productID, quantity
	return s.cart, s.err
}

func (s *stubCartService) UpdateItem(_ context.Context, userID, productID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	s.lastUser, s.lastProduct, s.lastQuantity = userID, productID, quantity
	return s.cart, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, userID, productID uuid.UUID) (*cartsvc.CartDTO, error) {
	s.lastUser, s.lastProduct = userID, productID
	return s.cart, s.err
}

func (s *stubCartService) Clear(_ context.Context, userID uuid.UUID) error {
	s.lastUser = userID
	s.cleared = true
	return s.err
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	return req.WithContext(ctx)
}

func withProductID(req *http.Request, id string) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("productId", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestFetchSuccess(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{UserID: userID, Items: []cartsvc.CartItemDTO{}}}

	req := authed(httptest.NewRequest(http.MethodGet, "/api/cart", nil), userID)
	resp := httptest.NewRecorder()
	Fetch(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data cartsvc.CartDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.UserID != userID {
		t.Fatalf("unexpected user id %s", envelope.Data.UserID)
	}
}

func TestFetchMissingIdentity(t *testing.T) {
	resp := httptest.NewRecorder()
	Fetch(&stubCartService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAddItem(t *testing.T) {
	userID := uuid.New()
	productID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{UserID: userID}}

	body := `{"product_id":"` + productID.String() + `","quantity":3}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)), userID)
	resp := httptest.NewRecorder()
	AddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastProduct != productID || svc.lastQuantity != 3 {
		t.Fatalf("unexpected call product=%s qty=%d", svc.lastProduct, svc.lastQuantity)
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	svc := &stubCartService{}
	body := `{"product_id":"` + uuid.NewString() + `","quantity":0}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	AddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.lastProduct != uuid.Nil {
		t.Fatal("service should not be called")
	}
}

func TestAddItemMapsStockConflict(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	body := `{"product_id":"` + uuid.NewString() + `","quantity":50}`
	req := authed(httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(body)), uuid.New())
	resp := httptest.NewRecorder()
	AddItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestUpdateItemAllowsZero(t *testing.T) {
	productID := uuid.New()
	svc := &stubCartService{cart: &cartsvc.CartDTO{}}
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"quantity":0}`))
	req = withProductID(authed(req, uuid.New()), productID.String())
	resp := httptest.NewRecorder()
	UpdateItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastProduct != productID || svc.lastQuantity != 0 {
		t.Fatalf("unexpected call product=%s qty=%d", svc.lastProduct, svc.lastQuantity)
	}
}

func TestUpdateItemRequiresQuantity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`))
	req = withProductID(authed(req, uuid.New()), uuid.NewString())
	resp := httptest.NewRecorder()
	UpdateItem(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRemoveItemNotFound(t *testing.T) {
	svc := &stubCartService{err: pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")}
	req := withProductID(authed(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New()), uuid.NewString())
	resp := httptest.NewRecorder()
	RemoveItem(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestRemoveItemBadID(t *testing.T) {
	req := withProductID(authed(httptest.NewRequest(http.MethodDelete, "/", nil), uuid.New()), "nope")
	resp := httptest.NewRecorder()
	RemoveItem(&stubCartService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestClear(t *testing.T) {
	userID := uuid.New()
	svc := &stubCartService{}
	req := authed(httptest.NewRequest(http.MethodDelete, "/api/cart", nil), userID)
	resp := httptest.NewRecorder()
	Clear(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !svc.cleared || svc.lastUser != userID {
		t.Fatal("expected cart cleared for caller")
	}
}
