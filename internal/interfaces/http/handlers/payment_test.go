package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/order-service/internal/config"
)

func setupWebhookRouter(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, _ := setupHandlerDB(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	handler := NewPaymentHandler(db, cfg, log)

	router := gin.New()
	router.POST("/payments/webhook", handler.Webhook)
	return router
}

func TestPaymentHandler_Webhook_BadSignature(t *testing.T) {
	cfg := &config.Config{}
	cfg.Stripe.WebhookSecret = "whsec_test_secret"
	router := setupWebhookRouter(t, cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid webhook signature")
}

// Without a signing secret configured, events are accepted unverified
// and unknown types are acknowledged.
func TestPaymentHandler_Webhook_UnverifiedIgnoredEvent(t *testing.T) {
	router := setupWebhookRouter(t, &config.Config{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(`{"id":"evt_1","type":"charge.refunded"}`))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)
}

func TestPaymentHandler_Webhook_PaymentFailedLogged(t *testing.T) {
	router := setupWebhookRouter(t, &config.Config{})

	payload := `{"id":"evt_2","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_1"}}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", strings.NewReader(payload))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
