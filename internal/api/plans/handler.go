package plans

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"school-admin-app/internal/domain/plans"
)

type Handler struct {
	store *plans.Store
}

func NewHandler(store *plans.Store) *Handler {
	return &Handler{store: store}
}

type planResponse struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	PriceAmount  float64  `json:"price_amount"`
	Currency     string   `json:"currency"`
	BillingCycle string   `json:"billing_cycle"`
	Features     []string `json:"features"`
	MaxStudents  *int     `json:"max_students,omitempty"`
	MaxTeachers  *int     `json:"max_teachers,omitempty"`
}

// ListPlans is the public catalog read path: active plans only,
// cheapest first.
func (h *Handler) ListPlans(c *gin.Context) {
	list, err := h.store.ListActive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}

	out := make([]planResponse, 0, len(list))
	for i := range list {
		p := &list[i]
		out = append(out, planResponse{
			ID:           p.ID,
			Name:         p.Name,
			PriceAmount:  p.PriceAmount,
			Currency:     p.Currency,
			BillingCycle: string(p.BillingCycle),
			Features:     p.FeatureList(),
			MaxStudents:  p.MaxStudents,
			MaxTeachers:  p.MaxTeachers,
		})
	}

	c.JSON(http.StatusOK, out)
}
