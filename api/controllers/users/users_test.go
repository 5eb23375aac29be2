package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/storefront/api/middleware"
	userssvc "github.com/shopfront/storefront/internal/users"
	"github.com/shopfront/storefront/pkg/enums"
	pkgerrors "github.com/shopfront/storefront/pkg/errors"
	"github.com/shopfront/storefront/pkg/pagination"
)

type stubUserService struct {
	user *userssvc.UserDTO
	list *userssvc.UserList
	err  error

	created    userssvc.CreateUserInput
	lastGet    uuid.UUID
	lastParams pagination.Params
	lastActive *bool
}

func (s *stubUserService) Create(_ context.Context, input userssvc.CreateUserInput) (*userssvc.UserDTO, error) {
	s.created = input
	return s.user, s.err
}

func (s *stubUserService) EnsureAdmin(context.Context, string, string) (*userssvc.UserDTO, error) {
	return s.user, s.err
}

func (s *stubUserService) Get(_ context.Context, id uuid.UUID) (*userssvc.UserDTO, error) {
	s.lastGet = id
	return s.user, s.err
}

func (s *stubUserService) SetActive(_ context.Context, _, userID uuid.UUID, active bool) (*userssvc.UserDTO, error) {
	s.lastGet = userID
	s.lastActive = &active
	return s.user, s.err
}

func (s *stubUserService) List(_ context.Context, params pagination.Params) (*userssvc.UserList, error) {
	s.lastParams = params
	return s.list, s.err
}

func TestMe(t *testing.T) {
	userID := uuid.New()
	svc := &stubUserService{user: &userssvc.UserDTO{ID: userID}}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	ctx := middleware.WithRole(middleware.WithUserID(req.Context(), userID.String()), string(enums.RoleCustomer))
	resp := httptest.NewRecorder()
	Me(svc, nil).ServeHTTP(resp, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, userID, svc.lastGet)
}

func TestCreateDefaultsToCustomer(t *testing.T) {
	svc := &stubUserService{user: &userssvc.UserDTO{ID: uuid.New()}}
	body := `{"email":" Ada@Example.com ","name":"Ada"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)))

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	require.Equal(t, "ada@example.com", svc.created.Email)
	require.Equal(t, enums.RoleCustomer, svc.created.Role)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	body := `{"email":"ada@example.com","name":"Ada","role":"owner"}`
	resp := httptest.NewRecorder()
	Create(&stubUserService{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)))
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCreateConflictOnDuplicateEmail(t *testing.T) {
	svc := &stubUserService{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	body := `{"email":"ada@example.com","name":"Ada"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/admin/users", strings.NewReader(body)))
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestList(t *testing.T) {
	svc := &stubUserService{list: &userssvc.UserList{}}
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/admin/users?limit=3", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 3, svc.lastParams.Limit)
}

func TestSetActive(t *testing.T) {
	adminID, target := uuid.New(), uuid.New()
	request := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPut, "/api/admin/users/"+target.String()+"/block", strings.NewReader(body))
		rc := chi.NewRouteContext()
		rc.URLParams.Add("userId", target.String())
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rc)
		ctx = middleware.WithRole(middleware.WithUserID(ctx, adminID.String()), string(enums.RoleAdmin))
		return req.WithContext(ctx)
	}

	cases := []struct {
		body string
		want bool
	}{
		{`{"is_active":false}`, false},
		{`{"is_active":true}`, true},
		{``, true},
	}
	for _, tc := range cases {
		svc := &stubUserService{user: &userssvc.UserDTO{ID: target}}
		resp := httptest.NewRecorder()
		SetActive(svc, nil).ServeHTTP(resp, request(tc.body))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		require.Equal(t, target, svc.lastGet)
		require.NotNil(t, svc.lastActive)
		require.Equal(t, tc.want, *svc.lastActive, "body %q", tc.body)
	}

	svc := &stubUserService{err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}
	resp := httptest.NewRecorder()
	SetActive(svc, nil).ServeHTTP(resp, request(`{"is_active":false}`))
	require.Equal(t, http.StatusNotFound, resp.Code)
}
