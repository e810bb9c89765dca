package handler

import (
	"errors"
	"io"
	"net/http"

	billingapp "github.com/clientdesk/backend/internal/application/billing"
	"github.com/clientdesk/backend/internal/infrastructure/ratelimit"
	"github.com/clientdesk/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Maximum webhook payload size (64KB - payment webhooks are typically small)
const maxWebhookPayloadSize = 65536

// WebhookHandler handles payment provider webhook endpoints
// These endpoints are called by the provider and do not require authentication
type WebhookHandler struct {
	BaseHandler
	webhookService *billingapp.WebhookService
	limiter        ratelimit.Limiter
}

// NewWebhookHandler creates a new WebhookHandler. The limiter bounds request
// volume per source so a runaway provider cannot saturate the ingress.
func NewWebhookHandler(webhookService *billingapp.WebhookService, limiter ratelimit.Limiter) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		limiter:        limiter,
	}
}

// WebhookResponse represents the acknowledgement returned to the provider
//
//	@Description	Webhook acknowledgement
type WebhookResponse struct {
	Received  bool   `json:"received" example:"true"`
	EventID   string `json:"event_id,omitempty" example:"evt_1234567890"`
	EventType string `json:"event_type,omitempty" example:"checkout.session.completed"`
	Message   string `json:"message,omitempty" example:"Webhook processed successfully"`
}

// HandleStripeWebhook godoc
//
//	@ID				handleStripeWebhook
//	@Summary		Handle Stripe webhook
//	@Description	Receive and process payment events from Stripe
//	@Tags			webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string			true	"Stripe webhook signature"
//	@Success		200					{object}	WebhookResponse	"Webhook processed successfully"
//	@Failure		400					{object}	WebhookResponse	"Invalid request"
//	@Failure		401					{object}	WebhookResponse	"Invalid signature"
//	@Failure		413					{object}	WebhookResponse	"Payload too large"
//	@Failure		500					{object}	WebhookResponse	"Processing failed, provider should retry"
//	@Router			/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// Read the raw request body with size limit to prevent DoS attacks.
	// The signature is computed over the raw bytes, so the body must not
	// pass through any parsing before verification.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, WebhookResponse{
			Received: false,
			Message:  "Failed to read request body",
		})
		return
	}

	// Check if payload exceeds size limit
	if len(payload) > maxWebhookPayloadSize {
		c.JSON(http.StatusRequestEntityTooLarge, WebhookResponse{
			Received: false,
			Message:  "Payload too large",
		})
		return
	}

	// Get signature from header
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusUnauthorized, WebhookResponse{
			Received: false,
			Message:  "Missing Stripe-Signature header",
		})
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, signature)
	if err != nil {
		if errors.Is(err, billingapp.ErrWebhookSignature) {
			c.JSON(http.StatusUnauthorized, WebhookResponse{
				Received: false,
				Message:  "Webhook signature verification failed",
			})
			return
		}

		// Engine failures are transient (database unavailable, lock conflict).
		// Answer 500 so the provider redelivers; the idempotency ledger makes
		// the retry safe. Don't expose internal error details in the response.
		resp := WebhookResponse{
			Received: false,
			Message:  "Webhook processing failed",
		}
		if result != nil {
			resp.EventID = result.EventID
			resp.EventType = result.EventType
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Message:   result.Message,
	})
}

// RegisterRoutes registers the webhook ingress routes. The rate limit is
// keyed per source address so a flooder exhausts only its own bucket and
// cannot starve genuine provider deliveries.
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	webhooks := rg.Group("/webhooks")
	if h.limiter != nil {
		webhooks.Use(middleware.RateLimitByKey(h.limiter, func(c *gin.Context) string {
			return "webhook:stripe:" + c.ClientIP()
		}))
	}
	{
		webhooks.POST("/stripe", h.HandleStripeWebhook)
	}
}
