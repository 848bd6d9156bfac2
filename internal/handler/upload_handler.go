package handler

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

// UploadMedia 把编辑器上传的图片或视频转存到媒体托管
func (a *API) UploadMedia(c *gin.Context) {
	maxBytes := a.media.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, http.StatusBadRequest, tooLargeMessage(maxBytes))
			return
		}
		respondError(c, http.StatusBadRequest, "No file provided")
		return
	}
	if header.Size > maxBytes {
		respondError(c, http.StatusBadRequest, tooLargeMessage(maxBytes))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondServerError(c, "upload", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respondServerError(c, "upload", err)
		return
	}

	asset, err := a.media.Upload(c.Request.Context(), service.UploadInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadEmpty):
			respondError(c, http.StatusBadRequest, "No file provided")
		case errors.Is(err, service.ErrUploadTooLarge):
			respondError(c, http.StatusBadRequest, tooLargeMessage(maxBytes))
		case errors.Is(err, service.ErrUploadTypeNotAllowed):
			respondError(c, http.StatusBadRequest, "Invalid file type. Only images and videos are allowed.")
		case errors.Is(err, service.ErrUploadCorrupt):
			respondError(c, http.StatusBadRequest, "The uploaded image could not be read")
		case errors.Is(err, service.ErrUploadNotConfigured):
			log.Printf("[upload] rejected %q: media host credentials are missing", header.Filename)
			respondError(c, http.StatusInternalServerError, "Media uploads are not configured")
		default:
			respondServerError(c, "upload", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"url":           asset.URL,
		"public_id":     asset.PublicID,
		"resource_type": asset.ResourceType,
		"format":        asset.Format,
		"width":         asset.Width,
		"height":        asset.Height,
		"bytes":         asset.Bytes,
	})
}

// DeleteMedia 删除媒体托管上的文件
func (a *API) DeleteMedia(c *gin.Context) {
	err := a.media.Delete(c.Request.Context(), c.Query("public_id"), c.Query("resource_type"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMediaIDRequired):
			respondError(c, http.StatusBadRequest, "public_id is required")
		case errors.Is(err, service.ErrMediaNotFound):
			respondError(c, http.StatusNotFound, "File not found")
		case errors.Is(err, service.ErrUploadNotConfigured):
			respondError(c, http.StatusInternalServerError, "Media uploads are not configured")
		default:
			respondServerError(c, "upload", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File size too large. Maximum %dMB allowed.", maxBytes>>20)
}
