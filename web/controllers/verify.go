package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"meal-coupon/registration"

	"github.com/gin-gonic/gin"
)

// codeValue accepts a coupon code sent as a JSON string or number.
type codeValue string

func (v *codeValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = codeValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("coupon code must be a string or number")
	}
	*v = codeValue(n.String())
	return nil
}

// Lookup shows a registration to the scanning station before it is redeemed.
func (h *Handlers) Lookup(c *gin.Context) {
	id := strings.TrimSpace(c.Query("id"))
	code := strings.TrimSpace(c.Query("code"))

	var (
		reg *registration.Registration
		err error
	)
	switch {
	case id != "":
		reg, err = h.svc.ByID(c.Request.Context(), id)
	case code != "":
		reg, err = h.svc.ByCode(c.Request.Context(), code, c.Query("team"))
	default:
		respondWithError(c, http.StatusBadRequest, "Missing registration ID or Code")
		return
	}
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

// Redeem marks a coupon as used. Without an id the code is resolved like a manual entry.
func (h *Handlers) Redeem(c *gin.Context) {
	var body struct {
		ID         string    `json:"id"`
		CouponCode codeValue `json:"couponCode"`
		Team       string    `json:"team"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}
	if body.CouponCode == "" {
		respondWithError(c, http.StatusBadRequest, "Missing id or couponCode")
		return
	}

	var (
		res registration.RedeemResult
		err error
	)
	if id := strings.TrimSpace(body.ID); id != "" {
		res, err = h.svc.Redeem(c.Request.Context(), id, string(body.CouponCode))
	} else {
		res, err = h.svc.RedeemByCode(c.Request.Context(), string(body.CouponCode), body.Team)
	}
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	if res.Outcome == registration.OutcomeAlreadyVerified {
		c.JSON(http.StatusConflict, gin.H{
			"error":            "This coupon has already been verified.",
			"already_verified": true,
			"registration":     res.Registration,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Coupon verified successfully!",
		"registration": res.Registration,
	})
}

// Scan resolves a raw QR payload read by a camera station.
func (h *Handlers) Scan(c *gin.Context) {
	var body struct {
		Payload string `json:"payload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, http.StatusBadRequest, "Missing payload")
		return
	}

	p, err := h.codec.Decode(body.Payload)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	reg, err := h.svc.Resolve(c.Request.Context(), p)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": reg.ID, "code": p.Code, "registration": reg})
}
