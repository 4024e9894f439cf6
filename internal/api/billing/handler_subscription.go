package billing

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"school-admin-app/internal/domain/billing"
)

type subscriptionResponse struct {
	ID                 uint       `json:"id"`
	Status             string     `json:"status"`
	CurrentPeriodStart time.Time  `json:"current_period_start"`
	NextBillingDate    time.Time  `json:"next_billing_date"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	Plan               *planInfo  `json:"plan,omitempty"`
}

type planInfo struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	PriceAmount  float64  `json:"price_amount"`
	Currency     string   `json:"currency"`
	BillingCycle string   `json:"billing_cycle"`
	Features     []string `json:"features"`
}

// GetCurrentSubscription answers GET /schools/:id/subscription. 404
// means the school has no current entitlement, which callers must not
// treat as a server failure.
func (h *Handler) GetCurrentSubscription(c *gin.Context) {
	schoolID, ok := schoolIDParam(c)
	if !ok {
		return
	}

	sub, err := h.repo.FindCurrent(c.Request.Context(), schoolID)
	if err != nil {
		if errors.Is(err, billing.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No current subscription"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	resp := subscriptionResponse{
		ID:                 sub.ID,
		Status:             string(sub.Status),
		CurrentPeriodStart: sub.CurrentPeriodStart,
		NextBillingDate:    sub.NextBillingDate,
		EndDate:            sub.EndDate,
	}
	if sub.Plan != nil {
		resp.Plan = &planInfo{
			ID:           sub.Plan.ID,
			Name:         sub.Plan.Name,
			PriceAmount:  sub.Plan.PriceAmount,
			Currency:     sub.Plan.Currency,
			BillingCycle: string(sub.Plan.BillingCycle),
			Features:     sub.Plan.FeatureList(),
		}
	}

	c.JSON(http.StatusOK, resp)
}
