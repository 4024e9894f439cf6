package stripewebhooks

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v75/webhook"
	"go.uber.org/zap"

	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
)

const maxBodyBytes = 65536

// Handler receives gateway webhook deliveries: verify the signature,
// translate the payload into an internal event, hand it to the
// processor. 2xx acknowledges (including no-ops), 4xx rejects
// permanently, 5xx makes the gateway redeliver.
type Handler struct {
	processor      *billing.Processor
	endpointSecret string
	log            *zap.Logger
}

func NewHandler(processor *billing.Processor, endpointSecret string, log *zap.Logger) *Handler {
	return &Handler{
		processor:      processor,
		endpointSecret: endpointSecret,
		log:            log.Named("stripe.webhook"),
	}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	payload, err := readBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn("signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	ctx := c.Request.Context()

	switch event.Type {
	case "checkout.session.completed":
		ev, err := checkoutCompletedEvent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		h.respond(c, string(event.Type), h.processor.HandleCheckoutCompleted(ctx, ev))

	case "invoice.paid", "invoice.payment_succeeded":
		ev, err := invoicePaidEvent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice"})
			return
		}
		h.respond(c, string(event.Type), h.processor.HandleInvoicePaid(ctx, ev))

	case "invoice.payment_failed":
		ev, err := invoicePaymentFailedEvent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse invoice"})
			return
		}
		h.respond(c, string(event.Type), h.processor.HandleInvoicePaymentFailed(ctx, ev))

	case "customer.subscription.updated":
		ev, err := subscriptionUpdatedEvent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		h.respond(c, string(event.Type), h.processor.HandleSubscriptionUpdated(ctx, ev))

	case "customer.subscription.deleted":
		ev, err := subscriptionDeletedEvent(event)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		h.respond(c, string(event.Type), h.processor.HandleSubscriptionDeleted(ctx, ev))

	default:
		// Acknowledge unknown events so the gateway stops retrying.
		h.log.Debug("ignoring event", zap.String("type", string(event.Type)))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

// respond maps processor outcomes onto the gateway's retry contract.
// Malformed correlation data and unknown plans are permanent: the
// gateway must stop redelivering. Everything else transient gets a 5xx
// so at-least-once delivery retries it instead of letting state
// silently diverge.
func (h *Handler) respond(c *gin.Context, eventType string, err error) {
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	if errors.Is(err, billing.ErrMissingMetadata) || errors.Is(err, plans.ErrPlanNotFound) {
		h.log.Error("permanently rejecting event",
			zap.String("type", eventType),
			zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.log.Error("event processing failed",
		zap.String("type", eventType),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func readBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
