package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qrdine/qrdine-server/internal/model"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// Minimal in-memory stores: the handler tests only exercise decode,
// identity extraction and status-code mapping, so the stubs stay tiny.

type stubMenu struct{ items map[string]model.MenuItem }

func (s stubMenu) Get(_ context.Context, id string) (model.MenuItem, error) {
	m, ok := s.items[id]
	if !ok {
		return model.MenuItem{}, workflow.ErrNotFound
	}
	return m, nil
}

type stubOrders struct{ orders map[string]model.Order }

func (s stubOrders) Insert(_ context.Context, o model.Order) error {
	s.orders[o.ID] = o
	return nil
}
func (s stubOrders) Get(_ context.Context, id string) (model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, workflow.ErrNotFound
	}
	return o, nil
}
func (s stubOrders) Update(_ context.Context, o model.Order) error {
	s.orders[o.ID] = o
	return nil
}
func (s stubOrders) Delete(_ context.Context, id string) error {
	delete(s.orders, id)
	return nil
}
func (s stubOrders) ListByPhone(_ context.Context, _ string) ([]model.Order, error) {
	return nil, nil
}
func (s stubOrders) ListByPhoneAndStatus(_ context.Context, _, _ string) ([]model.Order, error) {
	return nil, nil
}
func (s stubOrders) BillTable(_ context.Context, _ string) ([]model.Order, error) {
	return nil, nil
}
func (s stubOrders) PurgeTerminal(_ context.Context) (int64, error) { return 0, nil }

func newTestHandler(t *testing.T, orders map[string]model.Order) *OrderHandler {
	t.Helper()
	wf := workflow.New(
		workflow.Config{ScanBaseURL: "https://dine.example.com", SessionTTL: 30 * time.Minute},
		stubMenu{items: map[string]model.MenuItem{"coke": {ID: "coke", Name: "Cola", Price: 40}}},
		nil, stubOrders{orders: orders}, nil, nil, nil,
	)
	return NewOrderHandler(wf, nil)
}

func patchRequest(t *testing.T, h *OrderHandler, orderID, role, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/v1/orders/"+orderID, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(orderID)
	// What the auth middleware would have stored.
	c.Set("authenticated", true)
	c.Set("user_id", uint64(7))
	c.Set("role", role)
	require.NoError(t, h.Patch(c))
	return rec
}

func TestPatchChefStatusOnly(t *testing.T) {
	orders := map[string]model.Order{"ord_x": {ID: "ord_x", Status: model.StatusPending}}
	h := newTestHandler(t, orders)

	rec := patchRequest(t, h, "ord_x", model.RoleChef, `{"status":"preparing"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.StatusPreparing, orders["ord_x"].Status)
}

func TestPatchChefExtraFieldForbidden(t *testing.T) {
	orders := map[string]model.Order{"ord_x": {ID: "ord_x", Status: model.StatusPending}}
	h := newTestHandler(t, orders)

	// The raw body names total, so the patch is refused wholesale even
	// though total is not a decodable patch field.
	rec := patchRequest(t, h, "ord_x", model.RoleChef, `{"status":"preparing","total":0}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, model.StatusPending, orders["ord_x"].Status, "refused patch must not partially apply")
}

func TestPatchCustomerForbidden(t *testing.T) {
	orders := map[string]model.Order{"ord_x": {ID: "ord_x", Status: model.StatusPending}}
	h := newTestHandler(t, orders)

	rec := patchRequest(t, h, "ord_x", model.RoleCustomer, `{"status":"preparing"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPatchTerminalConflict(t *testing.T) {
	orders := map[string]model.Order{"ord_x": {ID: "ord_x", Status: model.StatusPaid}}
	h := newTestHandler(t, orders)

	rec := patchRequest(t, h, "ord_x", model.RoleAdmin, `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPatchAdminItemsRecompute(t *testing.T) {
	orders := map[string]model.Order{"ord_x": {ID: "ord_x", Status: model.StatusPending, Total: 999}}
	h := newTestHandler(t, orders)

	rec := patchRequest(t, h, "ord_x", model.RoleAdmin, `{"items":[{"id":"coke","qty":"3"}]}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 120.0, orders["ord_x"].Total)
	assert.Contains(t, rec.Body.String(), `"total":120`)
}

func TestPlaceParcelOrder(t *testing.T) {
	orders := map[string]model.Order{}
	h := newTestHandler(t, orders)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{"items":[{"id":"coke","qty":2}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("authenticated", true)
	c.Set("user_id", uint64(3))
	c.Set("role", model.RoleCustomer)
	c.Set("phone", "9990001111")
	c.Set("email", "c@example.com")

	require.NoError(t, h.Place(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, orders, 1)
	for _, o := range orders {
		assert.Equal(t, 80.0, o.Total)
		assert.Equal(t, "9990001111", o.Customer.Phone)
		assert.Nil(t, o.TableNo)
	}
}

func TestPlaceAnonymousWithoutSession(t *testing.T) {
	h := newTestHandler(t, map[string]model.Order{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{"items":[{"id":"coke"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Place(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPlaceUnknownItem(t *testing.T) {
	h := newTestHandler(t, map[string]model.Order{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", strings.NewReader(`{"items":[{"id":"sushi"}]}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("authenticated", true)
	c.Set("role", model.RoleCustomer)
	c.Set("phone", "9990001111")

	require.NoError(t, h.Place(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
