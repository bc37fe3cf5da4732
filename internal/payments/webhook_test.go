package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

const testWebhookSecret = "whsec_test_secret"

type fakeSettler struct {
	calls   int
	booking string
	session string
	fail    bool
}

func (f *fakeSettler) SettleBooking(ctx context.Context, bookingID, sessionID string) error {
	f.calls++
	f.booking = bookingID
	f.session = sessionID
	if f.fail {
		return fmt.Errorf("settlement failed")
	}
	return nil
}

// signPayload builds a Stripe-Signature header for the given payload using
// the scheme the SDK verifies: t=<ts>,v1=hex(hmac_sha256(secret, ts.payload))
func signPayload(payload []byte, secret string, at time.Time) string {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func newWebhookServer(settler *fakeSettler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	ctrl := NewWebhookController(settler, testWebhookSecret)
	SetupWebhookRoutes(engine.Group("/api/v1"), ctrl)
	return engine
}

func postEvent(engine *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func checkoutCompletedEvent(bookingID string) []byte {
	return []byte(`{
		"id": "evt_test_1",
		"type": "checkout.session.completed",
		"data": {
			"object": {
				"id": "cs_test_abc",
				"metadata": {"booking_id": "` + bookingID + `"}
			}
		}
	}`)
}

func TestWebhookSettlesOnCheckoutCompleted(t *testing.T) {
	settler := &fakeSettler{}
	engine := newWebhookServer(settler)

	payload := checkoutCompletedEvent("11111111-2222-3333-4444-555555555555")
	w := postEvent(engine, payload, signPayload(payload, testWebhookSecret, time.Now()))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if settler.calls != 1 {
		t.Fatalf("settler calls = %d, want 1", settler.calls)
	}
	if settler.booking != "11111111-2222-3333-4444-555555555555" || settler.session != "cs_test_abc" {
		t.Errorf("settled booking=%q session=%q", settler.booking, settler.session)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	settler := &fakeSettler{}
	engine := newWebhookServer(settler)

	payload := checkoutCompletedEvent("11111111-2222-3333-4444-555555555555")

	w := postEvent(engine, payload, signPayload(payload, "whsec_wrong", time.Now()))
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong secret: status = %d, want 400", w.Code)
	}

	w = postEvent(engine, payload, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing signature: status = %d, want 400", w.Code)
	}

	// Stale timestamps fall outside the default tolerance
	w = postEvent(engine, payload, signPayload(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	if w.Code != http.StatusBadRequest {
		t.Errorf("stale signature: status = %d, want 400", w.Code)
	}

	if settler.calls != 0 {
		t.Errorf("settler called %d times despite rejected signatures", settler.calls)
	}
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	settler := &fakeSettler{}
	engine := newWebhookServer(settler)

	payload := []byte(`{"id": "evt_test_2", "type": "charge.refunded", "data": {"object": {}}}`)
	w := postEvent(engine, payload, signPayload(payload, testWebhookSecret, time.Now()))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (acknowledge and ignore)", w.Code)
	}
	if settler.calls != 0 {
		t.Errorf("settler called for an unrelated event type")
	}
}

func TestWebhookRejectsMissingBookingReference(t *testing.T) {
	settler := &fakeSettler{}
	engine := newWebhookServer(settler)

	payload := []byte(`{
		"id": "evt_test_3",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_test_abc", "metadata": {}}}
	}`)
	w := postEvent(engine, payload, signPayload(payload, testWebhookSecret, time.Now()))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if settler.calls != 0 {
		t.Errorf("settler called without a booking reference")
	}
}

func TestWebhookRetriesOnSettlementFailure(t *testing.T) {
	settler := &fakeSettler{fail: true}
	engine := newWebhookServer(settler)

	payload := checkoutCompletedEvent("11111111-2222-3333-4444-555555555555")
	w := postEvent(engine, payload, signPayload(payload, testWebhookSecret, time.Now()))

	// Non-2xx tells the gateway to redeliver
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
