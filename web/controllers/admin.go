package controllers

import (
	"fmt"
	"net/http"
	"time"

	"meal-coupon/export"
	"meal-coupon/registration"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handlers) ReviewPayment(c *gin.Context) {
	var body struct {
		Status registration.PaymentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondWithError(c, http.StatusBadRequest, "Missing status")
		return
	}

	reg, err := h.svc.ReviewPayment(c.Request.Context(), c.Param("id"), body.Status)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

func (h *Handlers) Export(c *gin.Context) {
	regs, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}

	name := fmt.Sprintf("registrations-%s.xlsx", time.Now().Format("20060102-1504"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if err := export.WriteWorkbook(c.Writer, regs, h.svc.Menu()); err != nil {
		h.log.Error("export failed", zap.Error(err))
		c.Error(err)
	}
}
