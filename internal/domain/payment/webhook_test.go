package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test_secret"

func signPayload(t *testing.T, payload []byte, ts int64, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func withFixedTime(t *testing.T, fixed time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })
}

func TestConstructEvent_ValidSignature(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, fixed)

	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)
	header := signPayload(t, payload, fixed.Unix(), testSecret)

	event, err := ConstructEvent(payload, header, testSecret)
	require.NoError(t, err)

	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, EventCheckoutSessionCompleted, event.Type)

	var session CheckoutSession
	require.NoError(t, json.Unmarshal(event.Data.Object, &session))
	assert.Equal(t, "cs_1", session.ID)
}

func TestConstructEvent_WrongSecret(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, fixed)

	payload := []byte(`{"id":"evt_1","type":"x"}`)
	header := signPayload(t, payload, fixed.Unix(), "whsec_other")

	_, err := ConstructEvent(payload, header, testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_TamperedPayload(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, fixed)

	payload := []byte(`{"id":"evt_1","type":"x"}`)
	header := signPayload(t, payload, fixed.Unix(), testSecret)

	_, err := ConstructEvent([]byte(`{"id":"evt_2","type":"x"}`), header, testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_StaleTimestamp(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, fixed)

	payload := []byte(`{"id":"evt_1","type":"x"}`)
	stale := fixed.Add(-10 * time.Minute).Unix()
	header := signPayload(t, payload, stale, testSecret)

	_, err := ConstructEvent(payload, header, testSecret)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestConstructEvent_MalformedHeader(t *testing.T) {
	payload := []byte(`{}`)

	for _, header := range []string{"", "t=notanumber,v1=deadbeef", "v1=deadbeef", "t=123"} {
		_, err := ConstructEvent(payload, header, testSecret)
		assert.ErrorIs(t, err, ErrInvalidSignature, header)
	}
}

// Additional v1 entries (key rotation) are accepted as long as one
// matches.
func TestConstructEvent_MultipleSignatures(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withFixedTime(t, fixed)

	payload := []byte(`{"id":"evt_1","type":"x"}`)
	valid := signPayload(t, payload, fixed.Unix(), testSecret)
	header := fmt.Sprintf("%s,v1=%s", valid, "00deadbeef")

	_, err := ConstructEvent(payload, header, testSecret)
	assert.NoError(t, err)
}

func TestParseEventUnverified(t *testing.T) {
	event, err := ParseEventUnverified([]byte(`{"id":"evt_9","type":"payment_intent.payment_failed"}`))
	require.NoError(t, err)
	assert.Equal(t, EventPaymentIntentFailed, event.Type)

	_, err = ParseEventUnverified([]byte("not json"))
	assert.Error(t, err)
}
