package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

// FetchURLMetadata returns the link preview used by the editor's link tool.
func (a *API) FetchURLMetadata(c *gin.Context) {
	target := strings.TrimSpace(c.Query("url"))
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": 0, "error": "URL is required"})
		return
	}

	meta, err := a.metadata.Fetch(c.Request.Context(), target)
	if err != nil {
		if errors.Is(err, service.ErrMetadataURLInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"success": 0, "error": "URL is invalid"})
			return
		}
		log.Printf("[metadata] fetch %s: %v", target, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": 0, "error": "Failed to fetch URL metadata"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": 1, "meta": meta})
}
