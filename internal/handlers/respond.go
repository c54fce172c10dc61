package handlers

import "github.com/gin-gonic/gin"

// The API speaks a single envelope: {message, data?, total?}.

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{"message": message, "data": data})
}

func respondPage(c *gin.Context, status int, message string, data any, total int) {
	c.JSON(status, gin.H{"message": message, "data": data, "total": total})
}
