package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-checkout/internal/domain/checkout"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/payment"
	"github.com/xenking/kart-checkout/internal/storage/memory"
)

// --- Mock implementations ---

type mockGateway struct {
	result  payment.Result
	err     error
	charged []decimal.Decimal
}

func (m *mockGateway) Charge(_ context.Context, amount decimal.Decimal, _ string) (payment.Result, error) {
	m.charged = append(m.charged, amount)
	return m.result, m.err
}

type mockNotifier struct {
	err    error
	bodies []string
}

func (m *mockNotifier) SendEmail(_ context.Context, _, _, body string) error {
	m.bodies = append(m.bodies, body)
	return m.err
}

type failingReader struct{}

func (failingReader) Get(context.Context, string) (*order.Order, error) {
	return nil, errors.New("db down")
}

// --- Helpers ---

type orderResponse struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	TotalFinal float64 `json:"totalFinal"`
	User       struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
		Tier  string `json:"tier"`
	} `json:"user"`
	Items []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"items"`
	CreatedAt string `json:"createdAt"`
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type testEnv struct {
	gateway  *mockGateway
	notifier *mockNotifier
	repo     *memory.OrderRepository
	server   http.Handler
}

func newTestEnv(t *testing.T, result payment.Result) *testEnv {
	t.Helper()

	env := &testEnv{
		gateway:  &mockGateway{result: result},
		notifier: &mockNotifier{},
		repo:     memory.NewOrderRepository(),
	}
	svc, err := checkout.NewService(env.gateway, env.repo, env.notifier)
	require.NoError(t, err)
	env.server = NewHandler(svc, env.repo).Routes()
	return env
}

func (env *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.server.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

const premiumCheckout = `{
	"user": {"id": 2, "name": "Maria Premium", "email": "premium@email.com", "tier": "PREMIUM"},
	"items": [{"name": "Notebook", "price": 150.0}, {"name": "Mouse", "price": "50.00"}],
	"paymentToken": "9876-5432-1098-7654"
}`

// --- Tests ---

func TestCheckout_Approved(t *testing.T) {
	env := newTestEnv(t, payment.Approved())

	w := env.do(http.MethodPost, "/api/checkout", premiumCheckout)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	o := decode[orderResponse](t, w)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "/api/orders/"+o.ID, w.Header().Get("Location"))
	assert.Equal(t, "PROCESSED", o.Status)
	assert.Equal(t, 180.0, o.TotalFinal)
	assert.Equal(t, "PREMIUM", o.User.Tier)
	assert.Len(t, o.Items, 2)
	assert.NotEmpty(t, o.CreatedAt)

	require.Len(t, env.gateway.charged, 1)
	assert.True(t, decimal.NewFromInt(180).Equal(env.gateway.charged[0]))
	assert.Equal(t, []string{"Order " + o.ID + " for $180"}, env.notifier.bodies)
}

func TestCheckout_Declined(t *testing.T) {
	env := newTestEnv(t, payment.Declined())

	w := env.do(http.MethodPost, "/api/checkout", premiumCheckout)

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	e := decode[errorResponse](t, w)
	assert.Equal(t, 402, e.Code)
	assert.Equal(t, "payment declined", e.Message)
	assert.Equal(t, 0, env.repo.Len())
	assert.Empty(t, env.notifier.bodies)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := newTestEnv(t, payment.Approved())

	w := env.do(http.MethodPost, "/api/checkout",
		`{"user":{"id":1,"email":"joao@email.com","tier":"STANDARD"},"items":[],"paymentToken":"1111"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	o := decode[orderResponse](t, w)
	assert.Zero(t, o.TotalFinal)
	assert.Empty(t, o.Items)
}

func TestCheckout_NotifierFailureStillCreated(t *testing.T) {
	env := newTestEnv(t, payment.Approved())
	env.notifier.err = errors.New("mail server unavailable")

	w := env.do(http.MethodPost, "/api/checkout", premiumCheckout)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, env.repo.Len())
	assert.Len(t, env.notifier.bodies, 1)
}

func TestCheckout_GatewayError(t *testing.T) {
	env := newTestEnv(t, payment.Approved())
	env.gateway.err = errors.New("timeout")

	w := env.do(http.MethodPost, "/api/checkout", premiumCheckout)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 0, env.repo.Len())
}

func TestCheckout_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "not json", body: `nope`, code: http.StatusBadRequest},
		{name: "wrong type", body: `{"items": 5}`, code: http.StatusBadRequest},
		{name: "bad price", body: `{"items":[{"name":"x","price":"abc"}]}`, code: http.StatusBadRequest},
		{name: "unknown tier", body: `{"user":{"tier":"GOLD"},"items":[]}`, code: http.StatusUnprocessableEntity},
		{name: "missing user", body: `{"items":[]}`, code: http.StatusUnprocessableEntity},
		{
			name: "negative price",
			body: `{"user":{"tier":"STANDARD"},"items":[{"name":"x","price":-1}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "huge exponent",
			body: `{"user":{"tier":"STANDARD"},"items":[{"name":"x","price":1e3000000}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "tiny exponent",
			body: `{"user":{"tier":"STANDARD"},"items":[{"name":"x","price":"1e-3000000"}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "too many digits",
			body: `{"user":{"tier":"STANDARD"},"items":[{"name":"x","price":` + strings.Repeat("9", 100) + `}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "above max price",
			body: `{"user":{"tier":"STANDARD"},"items":[{"name":"x","price":1000000000.01}]}`,
			code: http.StatusUnprocessableEntity,
		},
		{
			name: "too many decimal places",
			body: `{"user":{"tier":"PREMIUM"},"items":[{"name":"x","price":"0.00005"}]}`,
			code: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, payment.Approved())

			w := env.do(http.MethodPost, "/api/checkout", tt.body)

			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[errorResponse](t, w).Code)
			assert.Empty(t, env.gateway.charged)
		})
	}
}

func TestCheckout_PriceBounds(t *testing.T) {
	env := newTestEnv(t, payment.Approved())

	w := env.do(http.MethodPost, "/api/checkout",
		`{"user":{"id":3,"email":"a@b.c","tier":"PREMIUM"},"items":[{"name":"x","price":1000000000},{"name":"y","price":"0.1230000"}],"paymentToken":"t"}`)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, env.gateway.charged, 1)
	assert.Equal(t, "900000000.1107", env.gateway.charged[0].String())
}

func TestGetOrder(t *testing.T) {
	env := newTestEnv(t, payment.Approved())
	created := decode[orderResponse](t, env.do(http.MethodPost, "/api/checkout", premiumCheckout))

	t.Run("found", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/orders/"+created.ID, "")

		require.Equal(t, http.StatusOK, w.Code)
		got := decode[orderResponse](t, w)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, 180.0, got.TotalFinal)
		assert.Equal(t, "premium@email.com", got.User.Email)
	})

	t.Run("not found", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/orders/missing", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage error", func(t *testing.T) {
		svc, err := checkout.NewService(env.gateway, env.repo, env.notifier)
		require.NoError(t, err)
		srv := NewHandler(svc, failingReader{}).Routes()

		w := httptest.NewRecorder()
		srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/x", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, payment.Approved())

	w := env.do(http.MethodGet, "/api/checkout", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
