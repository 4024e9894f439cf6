package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"school-admin-app/internal/domain/billing"
	"school-admin-app/internal/domain/plans"
	"school-admin-app/internal/domain/schools"
	stripeinfra "school-admin-app/internal/infra/stripe"
)

// Handler serves the billing endpoints scoped to a school. It holds its
// collaborators explicitly; there is no ambient database handle.
type Handler struct {
	schools *schools.Store
	plans   *plans.Store
	repo    *billing.Repository
	gateway stripeinfra.Gateway
	appURL  string
	log     *zap.Logger
}

func NewHandler(schoolStore *schools.Store, planStore *plans.Store, repo *billing.Repository, gateway stripeinfra.Gateway, appURL string, log *zap.Logger) *Handler {
	return &Handler{
		schools: schoolStore,
		plans:   planStore,
		repo:    repo,
		gateway: gateway,
		appURL:  appURL,
		log:     log.Named("billing.api"),
	}
}

// CreateCheckoutSession starts a hosted checkout for POST
// /schools/:id/checkout. It never creates a subscription row itself;
// that happens only when the gateway confirms completion through the
// webhook.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	schoolID, ok := schoolIDParam(c)
	if !ok {
		return
	}

	var body struct {
		PlanID uint `json:"plan_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PlanID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid plan_id"})
		return
	}

	school, err := h.schools.FindByID(c.Request.Context(), schoolID)
	if err != nil {
		if errors.Is(err, schools.ErrSchoolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load school"})
		return
	}

	plan, err := h.plans.FindByID(c.Request.Context(), body.PlanID)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return
	}
	if !plan.Active {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan is no longer offered"})
		return
	}

	interval, ok := stripeinfra.IntervalForCycle(plan.BillingCycle)
	if !ok {
		h.log.Error("plan has unsupported billing cycle",
			zap.Uint("plan_id", plan.ID),
			zap.String("cycle", string(plan.BillingCycle)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Plan is misconfigured"})
		return
	}

	customerID, err := h.ensureCustomer(c, school)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment account"})
		return
	}

	requesterID := c.GetUint("user_id")
	url, err := h.gateway.NewCheckoutSession(stripeinfra.CheckoutParams{
		CustomerID:      customerID,
		PlanName:        plan.Name,
		UnitAmountMinor: plan.PriceMinorUnits(),
		Currency:        plan.Currency,
		Interval:        interval,
		SuccessURL:      h.appURL + "/billing",
		CancelURL:       h.appURL + "/billing?canceled=1",
		ClientReference: fmt.Sprint(school.ID),
		Metadata: map[string]string{
			"school_id":    fmt.Sprint(school.ID),
			"plan_id":      fmt.Sprint(plan.ID),
			"requester_id": fmt.Sprint(requesterID),
		},
	})
	if err != nil {
		h.log.Error("checkout session failed", zap.Uint("school_id", school.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// ensureCustomer returns the school's gateway customer ref, creating it
// on first use. The store only writes when no ref exists yet, so a
// concurrent request racing us is benign; we re-read to pick up
// whichever write won.
func (h *Handler) ensureCustomer(c *gin.Context, school *schools.School) (string, error) {
	if school.StripeCustomerID != nil && *school.StripeCustomerID != "" {
		return *school.StripeCustomerID, nil
	}

	customerID, err := h.gateway.CreateCustomer(school.Name, school.ContactEmail, map[string]string{
		"school_id": fmt.Sprint(school.ID),
	})
	if err != nil {
		return "", err
	}

	if err := h.schools.SetStripeCustomerID(c.Request.Context(), school.ID, customerID); err != nil {
		return "", err
	}

	fresh, err := h.schools.FindByID(c.Request.Context(), school.ID)
	if err != nil {
		return "", err
	}
	if fresh.StripeCustomerID != nil && *fresh.StripeCustomerID != "" {
		return *fresh.StripeCustomerID, nil
	}
	return customerID, nil
}

// CreateBillingPortal hands the caller a gateway-hosted portal URL for
// POST /schools/:id/billing-portal.
func (h *Handler) CreateBillingPortal(c *gin.Context) {
	schoolID, ok := schoolIDParam(c)
	if !ok {
		return
	}

	school, err := h.schools.FindByID(c.Request.Context(), schoolID)
	if err != nil {
		if errors.Is(err, schools.ErrSchoolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "School not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load school"})
		return
	}
	if school.StripeCustomerID == nil || *school.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No payment account yet (subscribe first)"})
		return
	}

	url, err := h.gateway.NewPortalSession(*school.StripeCustomerID, h.appURL+"/billing")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func schoolIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school id"})
		return 0, false
	}
	return uint(id), true
}
