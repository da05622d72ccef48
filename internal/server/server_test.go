package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lojinha/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad quantity", domain.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: nothing to buy", domain.ErrEmptyCart), http.StatusBadRequest},
		{fmt.Errorf("%w: order x", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: address y", domain.ErrOwnership), http.StatusForbidden},
		{fmt.Errorf("%w: declined", domain.ErrPaymentDeclined), http.StatusPaymentRequired},
		{fmt.Errorf("%w: PAID -> CANCELED", domain.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)

		respondError(c, zap.NewNop(), tc.err)
		assert.Equal(t, tc.want, w.Code, "error %v", tc.err)
	}
}

func TestRespondError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders", nil)
	c.Set("request_id", "req-1")

	respondError(c, zap.NewNop(), fmt.Errorf("pq: relation orders does not exist"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "relation")
	assert.Contains(t, w.Body.String(), "req-1")
}

func TestPrincipalMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(Principal())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"principal": c.GetString("principal_id"),
			"operator":  isOperator(c),
		})
	})

	// No principal header: rejected before the handler runs.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Principal without the operator role.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerPrincipalID, "auth0|abc")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"operator":false`)

	// Operator role grants the flag.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerPrincipalID, "auth0|abc")
	req.Header.Set(headerRole, roleOperator)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"operator":true`)
}

func TestOrderResponse_CarriesPaymentArtifacts(t *testing.T) {
	expires := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	line := "12345678901234567890123456789012345678901234567"
	order := &domain.Order{
		ID:         uuid.New(),
		Number:     "20250310-000042",
		CustomerID: uuid.New(),
		AddressID:  uuid.New(),
		Status:     domain.OrderProcessing,
		Total:      decimal.RequireFromString("1500.00"),
		Payment: &domain.Payment{
			Method:          domain.PaymentBoleto,
			Status:          domain.PaymentPending,
			BoletoLine:      line,
			BoletoExpiresAt: &expires,
		},
	}

	resp := toOrderResponse(order)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "boleto", resp.Payment.Method)
	assert.Equal(t, "PENDING", resp.Payment.Status)
	assert.Equal(t, line, resp.Payment.BoletoLine)
	require.NotNil(t, resp.Payment.BoletoExpiresAt)

	order.Payment = &domain.Payment{
		Method:    domain.PaymentPix,
		Status:    domain.PaymentSucceeded,
		PixQRCode: "00020126-qr-payload",
	}
	resp = toOrderResponse(order)
	require.NotNil(t, resp.Payment)
	assert.Equal(t, "00020126-qr-payload", resp.Payment.PixQRCode)

	order.Payment = nil
	assert.Nil(t, toOrderResponse(order).Payment)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(headerRequestID))

	// A caller-supplied id is echoed back untouched.
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(headerRequestID, "trace-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "trace-42", w.Header().Get(headerRequestID))
}
