package controllers

import "github.com/gin-gonic/gin"

func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func respondWithValidation(c *gin.Context, fields map[string]string) {
	c.JSON(400, gin.H{"errors": fields})
}
