package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/levelup-gamer/storefront/internal/auth"
	"github.com/levelup-gamer/storefront/internal/cart"
	"github.com/levelup-gamer/storefront/internal/catalog"
	"github.com/levelup-gamer/storefront/internal/checkout"
	"github.com/levelup-gamer/storefront/internal/domain"
	"github.com/levelup-gamer/storefront/internal/sales"
	"github.com/levelup-gamer/storefront/internal/storage"
)

type mockSales struct {
	createCalls int
	result      *domain.SaleResult
	createErr   error
	mine        []domain.SaleResult
	all         []domain.SaleResult
	listErr     error
}

func (m *mockSales) Create(context.Context, *domain.SaleRequest, string) (*domain.SaleResult, error) {
	m.createCalls++
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.result, nil
}

func (m *mockSales) ListMine(context.Context, string) ([]domain.SaleResult, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.mine, nil
}

func (m *mockSales) ListAll(context.Context, string) ([]domain.SaleResult, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.all, nil
}

type mockAuthClient struct {
	token string
	err   error
}

func (m *mockAuthClient) Login(context.Context, auth.LoginRequest) (string, error) {
	return m.token, m.err
}

func (m *mockAuthClient) Register(context.Context, auth.RegisterRequest) (string, error) {
	return m.token, m.err
}

type mockFetcherHTTP struct {
	products []domain.Product
}

func (m *mockFetcherHTTP) List(context.Context) ([]domain.Product, error) {
	return m.products, nil
}

func (m *mockFetcherHTTP) ListByCategory(context.Context, int64) ([]domain.Product, error) {
	return m.products, nil
}

type memCache struct{}

func (memCache) Get(context.Context, string) ([]domain.Product, error) {
	return nil, catalog.ErrCacheMiss
}
func (memCache) Set(context.Context, string, []domain.Product) error { return nil }
func (memCache) Delete(context.Context, string) error                { return nil }

type fixture struct {
	router http.Handler
	carts  *cart.Service
	keeper *auth.Keeper
	sales  *mockSales
}

func newFixture(t *testing.T, salesMock *mockSales) *fixture {
	t.Helper()
	kv := storage.NewMemoryKV()
	carts := cart.NewService(kv)
	keeper := auth.NewKeeper(kv)
	coordinator := checkout.NewCoordinator(carts, salesMock, keeper)
	catalogSvc := catalog.NewService(&mockFetcherHTTP{products: []domain.Product{{ID: "1", Name: "Mouse Gamer"}}}, memCache{}, nil)

	router := NewRouter(RouterConfig{
		Carts:       carts,
		Coordinator: coordinator,
		Catalog:     catalogSvc,
		Sales:       salesMock,
		Auth:        &mockAuthClient{},
		Keeper:      keeper,
	})
	return &fixture{router: router, carts: carts, keeper: keeper, sales: salesMock}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) signIn(t *testing.T, session string, roles ...string) {
	t.Helper()
	claims := &auth.Claims{
		Name:  "Carla",
		Roles: roles,
		StandardClaims: jwt.StandardClaims{
			Subject:   "carla@duocuc.cl",
			ExpiresAt: time.Now().Add(time.Hour).Unix(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	require.NoError(t, f.keeper.Save(context.Background(), session, tok))
}

func addBody(id string, price int64) map[string]any {
	return map[string]any{
		"productId": id,
		"name":      "Mouse Gamer",
		"category":  "Accesorios",
		"image":     "/mouse.jpg",
		"price":     price,
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCartLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 50000))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 50000))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("2", 80000))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, int64(180000), resp.Summary.Total)
	assert.Equal(t, int64(151261), resp.Summary.Subtotal)
	assert.Equal(t, int64(28739), resp.Summary.Tax)

	rec = f.do(t, http.MethodPut, "/api/cart/s1/items/2", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)

	rec = f.do(t, http.MethodDelete, "/api/cart/s1/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Items)
}

func TestCartSummaryEndpointFormatsMoney(t *testing.T) {
	f := newFixture(t, &mockSales{})
	f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 180000))

	rec := f.do(t, http.MethodGet, "/api/cart/s1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp summaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "$180.000", resp.TotalDisplay)
	assert.Equal(t, "$151.261", resp.SubtotalDisplay)
	assert.Equal(t, "$28.739", resp.TaxDisplay)
}

func TestAddItem_Validation(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodPost, "/api/cart/s1/items", map[string]any{"name": "x", "price": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", -5))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_Success(t *testing.T) {
	salesMock := &mockSales{result: &domain.SaleResult{ID: 7, Total: 180000}}
	f := newFixture(t, salesMock)
	f.signIn(t, "s1", "ROLE_USER")
	f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 180000))

	rec := f.do(t, http.MethodPost, "/api/cart/s1/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result domain.SaleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, int64(7), result.ID)

	items, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCheckout_RequiresSignIn(t *testing.T) {
	salesMock := &mockSales{}
	f := newFixture(t, salesMock)
	f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 1000))

	rec := f.do(t, http.MethodPost, "/api/cart/s1/checkout", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, salesMock.createCalls)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t, &mockSales{})
	f.signIn(t, "s1", "ROLE_USER")

	rec := f.do(t, http.MethodPost, "/api/cart/s1/checkout", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckout_UpstreamFailureKeepsCart(t *testing.T) {
	salesMock := &mockSales{createErr: &sales.APIError{Kind: sales.KindServer, Status: 500}}
	f := newFixture(t, salesMock)
	f.signIn(t, "s1", "ROLE_USER")
	f.do(t, http.MethodPost, "/api/cart/s1/items", addBody("1", 1000))

	rec := f.do(t, http.MethodPost, "/api/cart/s1/checkout", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	items, err := f.carts.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProductsEndpoint(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodGet, "/api/products/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Mouse Gamer", products[0].Name)
}

func TestSalesMine_RequiresSignIn(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodGet, "/api/sales/s1/mine", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSalesMine_ReturnsHistory(t *testing.T) {
	salesMock := &mockSales{mine: []domain.SaleResult{{ID: 1}, {ID: 2}}}
	f := newFixture(t, salesMock)
	f.signIn(t, "s1", "ROLE_USER")

	rec := f.do(t, http.MethodGet, "/api/sales/s1/mine", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result []domain.SaleResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result, 2)
}

func TestSalesAll_AdminOnly(t *testing.T) {
	f := newFixture(t, &mockSales{all: []domain.SaleResult{{ID: 1}}})
	f.signIn(t, "s1", "ROLE_USER")

	rec := f.do(t, http.MethodGet, "/api/sales/s1/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	f.signIn(t, "s2", auth.AdminRole)
	rec = f.do(t, http.MethodGet, "/api/sales/s2/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_StoresTokenForSession(t *testing.T) {
	newFixture(t, &mockSales{})

	claims := &auth.Claims{
		Name:           "Carla",
		Roles:          []string{"ROLE_USER"},
		StandardClaims: jwt.StandardClaims{Subject: "carla@duocuc.cl", ExpiresAt: time.Now().Add(time.Hour).Unix()},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)

	kv := storage.NewMemoryKV()
	carts := cart.NewService(kv)
	keeper := auth.NewKeeper(kv)
	router := NewRouter(RouterConfig{
		Carts:       carts,
		Coordinator: checkout.NewCoordinator(carts, &mockSales{}, keeper),
		Catalog:     catalog.NewService(&mockFetcherHTTP{}, memCache{}, nil),
		Sales:       &mockSales{},
		Auth:        &mockAuthClient{token: tok},
		Keeper:      keeper,
	})

	body, _ := json.Marshal(map[string]string{"correo": "carla@duocuc.cl", "contrasenia": "pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/s1/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, ok := keeper.Token(context.Background(), "s1")
	require.True(t, ok)
	assert.Equal(t, tok, stored)

	var user sessionUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "Carla", user.Name)
}

func TestLogout(t *testing.T) {
	f := newFixture(t, &mockSales{})
	f.signIn(t, "s1", "ROLE_USER")

	rec := f.do(t, http.MethodPost, "/api/auth/s1/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	_, ok := f.keeper.Token(context.Background(), "s1")
	assert.False(t, ok)
}

func TestMe_Unauthenticated(t *testing.T) {
	f := newFixture(t, &mockSales{})

	rec := f.do(t, http.MethodGet, "/api/auth/s1/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRespondDomainError_UnknownError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondDomainError(rec, errors.New("mystery"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
