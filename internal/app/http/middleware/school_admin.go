package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireSchoolAdmin guards routes under /schools/:id. The caller must
// hold an administrative role and the token's school scope must match
// the school in the path; platform admins pass for any school.
func RequireSchoolAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "admin" {
			c.Next()
			return
		}
		if role != "school_admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			c.Abort()
			return
		}

		pathID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid school id"})
			c.Abort()
			return
		}

		if c.GetUint("school_id") != uint(pathID) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not an administrator of this school"})
			c.Abort()
			return
		}

		c.Next()
	}
}
