package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPaymentHistory answers GET /schools/:id/payments with the school's
// settled invoices, newest first.
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	schoolID, ok := schoolIDParam(c)
	if !ok {
		return
	}

	payments, err := h.repo.ListPayments(c.Request.Context(), schoolID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
