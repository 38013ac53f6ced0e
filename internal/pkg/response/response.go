package response

import "github.com/gin-gonic/gin"

// Data writes {"data": ...}, the envelope the booking frontend reads.
func Data(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{"data": data})
}

// Error writes {"error": message}. Messages must be safe to show to clients.
func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"error": message})
}

func ErrorWithDetails(c *gin.Context, statusCode int, message string, details any) {
	c.JSON(statusCode, gin.H{
		"error":   message,
		"details": details,
	})
}
