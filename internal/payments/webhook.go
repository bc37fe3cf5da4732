package payments

import (
	"context"
	"encoding/json"
	"net/http"

	"showtix/internal/shared/utils/response"
	"showtix/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Settler finalizes a booking once its payment clears. Implemented by the
// bookings service; settlement of a booking that no longer exists must be a
// no-op there.
type Settler interface {
	SettleBooking(ctx context.Context, bookingID, sessionID string) error
}

// WebhookController receives payment gateway events
type WebhookController struct {
	settler       Settler
	webhookSecret string
}

func NewWebhookController(settler Settler, webhookSecret string) *WebhookController {
	return &WebhookController{
		settler:       settler,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook verifies the gateway signature and settles bookings on
// checkout completion. Unknown event types are acknowledged and ignored.
func (ctrl *WebhookController) HandleWebhook(c *gin.Context) {
	appLogger := logger.GetDefault()

	payload, err := c.GetRawData()
	if err != nil {
		appLogger.LogWebhookRejected(c.Request.Context(), "payments", "unreadable body")
		response.RespondJSON(c, "error", http.StatusBadRequest, "Failed to read request body", nil, err.Error())
		return
	}

	// IgnoreAPIVersionMismatch: the account's API version can drift from the
	// SDK's pin and settlement must not stop when it does. The signature
	// check itself is unaffected.
	event, err := webhook.ConstructEventWithOptions(payload, c.GetHeader("Stripe-Signature"), ctrl.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		appLogger.LogWebhookRejected(c.Request.Context(), "payments", "invalid signature")
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid webhook signature", nil, err.Error())
		return
	}

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			response.RespondJSON(c, "error", http.StatusBadRequest, "Malformed event payload", nil, err.Error())
			return
		}

		bookingID, ok := session.Metadata["booking_id"]
		if !ok || bookingID == "" {
			appLogger.LogWebhookRejected(c.Request.Context(), "payments", "missing booking_id metadata")
			response.RespondJSON(c, "error", http.StatusBadRequest, "Missing booking reference", nil, nil)
			return
		}

		if err := ctrl.settler.SettleBooking(c.Request.Context(), bookingID, session.ID); err != nil {
			// Returning non-2xx makes the gateway redeliver, which is what we
			// want for transient failures
			response.RespondJSON(c, "error", http.StatusInternalServerError, "Failed to settle booking", nil, err.Error())
			return
		}

	default:
		// Acknowledge everything else so the gateway stops retrying
	}

	response.RespondJSON(c, "success", http.StatusOK, "Webhook processed", nil, nil)
}

// SetupWebhookRoutes registers the payment webhook endpoint. No auth
// middleware: authenticity comes from the signature check.
func SetupWebhookRoutes(rg *gin.RouterGroup, ctrl *WebhookController) {
	rg.POST("/webhooks/payments", ctrl.HandleWebhook)
}
