package controllers

import (
	"errors"
	"net/http"

	"meal-coupon/web/storage"

	"github.com/gin-gonic/gin"
)

// UploadPaymentProof stores the payment screenshot a registrant attaches before submitting.
func (h *Handlers) UploadPaymentProof(c *gin.Context) {
	limit := h.maxUpload + 1<<10
	if c.Request.ContentLength > limit {
		respondWithError(c, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(c, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		respondWithError(c, http.StatusBadRequest, "No file provided")
		return
	}
	if fh.Size > h.maxUpload {
		respondWithError(c, http.StatusRequestEntityTooLarge, "File is too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Failed to open file")
		return
	}
	defer f.Close()

	obj, err := h.uploads.Put(c.Request.Context(), storage.ObjectName(fh.Filename), fh.Header.Get("Content-Type"), f)
	if err != nil {
		h.respondWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, obj)
}
