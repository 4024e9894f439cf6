package routes

import (
	billingapi "school-admin-app/internal/api/billing"
	plansapi "school-admin-app/internal/api/plans"
	stripewebhooks "school-admin-app/internal/api/stripewebhook"
	"school-admin-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything RegisterRoutes mounts. main builds it so
// route wiring stays free of construction logic.
type Handlers struct {
	Webhook *stripewebhooks.Handler
	Billing *billingapi.Handler
	Plans   *plansapi.Handler

	JWTSecret string
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	// Raw body required; no sanitation, no auth.
	r.POST("/webhook", h.Webhook.HandleWebhook)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/plans", h.Plans.ListPlans)

	// School-scoped billing, administrators only.
	school := r.Group("/schools/:id")
	school.Use(
		middleware.AuthMiddleware(h.JWTSecret),
		middleware.RequireSchoolAdmin(),
		middleware.SanitizeInputMiddleware(),
	)
	school.POST("/checkout", h.Billing.CreateCheckoutSession)
	school.POST("/billing-portal", h.Billing.CreateBillingPortal)
	school.GET("/subscription", h.Billing.GetCurrentSubscription)
	school.GET("/payments", h.Billing.GetPaymentHistory)
}
