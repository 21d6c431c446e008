package controllers

import (
	"errors"
	"net/http"

	"meal-coupon/coupon"
	"meal-coupon/registration"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondWithDomainError maps registration and coupon errors to HTTP responses.
// Store and unexpected failures are logged and reported without detail.
func (h *Handlers) respondWithDomainError(c *gin.Context, err error) {
	var (
		verr     *registration.ValidationError
		dup      *registration.DuplicatePaymentReferenceError
		amb      *registration.AmbiguousCodeError
		upstream *registration.UpstreamError
	)

	switch {
	case errors.As(err, &verr):
		respondWithValidation(c, verr.Fields)
	case errors.As(err, &dup):
		c.JSON(http.StatusConflict, gin.H{
			"error":            "This payment reference has already been used.",
			"conflicting_team": dup.Team,
		})
	case errors.As(err, &amb):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "More than one registration has this code, enter the team name.",
			"matches": amb.Count,
		})
	case errors.Is(err, registration.ErrNotFound):
		respondWithError(c, http.StatusNotFound, "Registration not found")
	case errors.Is(err, registration.ErrCodeMismatch):
		respondWithError(c, http.StatusForbidden, "Invalid verification code")
	case errors.Is(err, coupon.ErrInvalidPayload):
		respondWithError(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &upstream):
		h.log.Warn("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		respondWithError(c, http.StatusBadGateway, upstream.Service+" is unavailable, please try again")
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
