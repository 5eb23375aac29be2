package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shopfront/storefront/api/middleware"
	walletsvc "github.com/shopfront/storefront/internal/wallet"
	"github.com/shopfront/storefront/pkg/enums"
	"github.com/shopfront/storefront/pkg/pagination"
)

type stubWalletService struct {
	balance *walletsvc.BalanceDTO
	list    *walletsvc.TransactionList
	err     error

	lastUser   uuid.UUID
	lastParams pagination.Params
}

func (s *stubWalletService) Balance(_ context.Context, userID uuid.UUID) (*walletsvc.BalanceDTO, error) {
	s.lastUser = userID
	return s.balance, s.err
}

func (s *stubWalletService) Transactions(_ context.Context, userID uuid.UUID, params pagination.Params) (*walletsvc.TransactionList, error) {
	s.lastUser = userID
	s.lastParams = params
	return s.list, s.err
}

func (s *stubWalletService) Reconcile(context.Context) ([]walletsvc.Drift, error) {
	return nil, s.err
}

func authed(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleCustomer))
	return req.WithContext(ctx)
}

func TestBalance(t *testing.T) {
	userID := uuid.New()
	svc := &stubWalletService{balance: &walletsvc.BalanceDTO{UserID: userID, BalanceCents: 12345, Balance: "123.45"}}
	resp := httptest.NewRecorder()
	Balance(svc, nil).ServeHTTP(resp, authed(httptest.NewRequest(http.MethodGet, "/api/wallet", nil), userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data walletsvc.BalanceDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Balance != "123.45" || svc.lastUser != userID {
		t.Fatalf("unexpected balance payload %+v", envelope.Data)
	}
}

func TestBalanceRequiresIdentity(t *testing.T) {
	resp := httptest.NewRecorder()
	Balance(&stubWalletService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/wallet", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestTransactionsPagination(t *testing.T) {
	userID := uuid.New()
	svc := &stubWalletService{list: &walletsvc.TransactionList{}}
	req := authed(httptest.NewRequest(http.MethodGet, "/api/wallet/transactions?limit=2&cursor=abc", nil), userID)
	resp := httptest.NewRecorder()
	Transactions(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.lastParams.Limit != 2 || svc.lastParams.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", svc.lastParams)
	}
}
