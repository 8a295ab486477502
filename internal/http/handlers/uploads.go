package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UploadImage accepts one multipart "file" part. The part is streamed to the
// service, which sniffs it and enforces the size limit.
func (h *Handler) UploadImage(c *gin.Context) {
	limit := h.Env.Upload.MaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	// room for the multipart framing around the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+64<<10)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusBadRequest, "file_too_large", "file too large", gin.H{"field": "file"})
			return
		}
		respondError(c, http.StatusBadRequest, "validation_error", "multipart field file is required", gin.H{"field": "file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "cannot read upload", gin.H{"field": "file"})
		return
	}
	defer f.Close()

	info, err := h.uploads(c).Upload(c.Request.Context(), fh.Header.Get("Content-Type"), f)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"key":          info.Key,
		"url":          info.URL,
		"content_type": info.ContentType,
		"size":         info.Size,
	})
}

func (h *Handler) DeleteUpload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if err := h.uploads(c).Delete(c.Request.Context(), key); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
