package controllers

import (
	"net/http"

	"meal-coupon/coupon"
	"meal-coupon/registration"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) Register(c *gin.Context) {
	var sub registration.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		respondWithError(c, http.StatusBadRequest, "Failed to read body")
		return
	}

	reg, err := h.svc.Register(c.Request.Context(), sub)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	payload, err := h.codec.Encode(reg.ID, reg.VerificationCode)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"registration": reg,
		"qr_payload":   payload,
		"qr_image_url": coupon.HostedImageURL(h.qrEndpoint, payload, coupon.DefaultImageSize),
	})
}

// ListRegistrations is polled by the admin dashboard.
func (h *Handlers) ListRegistrations(c *gin.Context) {
	regs, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registrations": regs, "count": len(regs)})
}

func (h *Handlers) QRCode(c *gin.Context) {
	reg, err := h.svc.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	payload, err := h.codec.Encode(reg.ID, reg.VerificationCode)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	png, err := coupon.RenderPNG(payload, coupon.DefaultImageSize)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handlers) Stats(c *gin.Context) {
	counts, err := h.svc.Counts(c.Request.Context())
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}
