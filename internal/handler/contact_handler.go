package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type contactReadRequest struct {
	Read *bool `json:"read" binding:"required"`
}

// CreateContact 保存联系表单提交
func (a *API) CreateContact(c *gin.Context) {
	if !a.contactLimiter.Allow(c.ClientIP()) {
		a.contactLimiter.reject(c)
		return
	}

	var req contactRequest
	if !bindJSON(c, &req, "Invalid contact payload") {
		return
	}

	contact, err := a.contacts.Create(service.ContactInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		var invalid *service.ContactValidationError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Please check the highlighted fields",
				"fields": invalid.Fields,
			})
			return
		}
		respondServerError(c, "contact", err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// ListContacts 返回联系消息，可只看未读
func (a *API) ListContacts(c *gin.Context) {
	contacts, err := a.contacts.List(service.ContactFilter{UnreadOnly: parseBoolQuery(c, "unread")})
	if err != nil {
		respondServerError(c, "contact", err)
		return
	}
	unread, err := a.contacts.UnreadCount()
	if err != nil {
		respondServerError(c, "contact", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"contacts": contacts, "unread": unread})
}

// GetContact 返回单条消息并标记为已读
func (a *API) GetContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact id")
		return
	}
	contact, err := a.contacts.MarkRead(id)
	if err != nil {
		handleContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// UpdateContactRead 设置已读状态
func (a *API) UpdateContactRead(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact id")
		return
	}
	var req contactReadRequest
	if !bindJSON(c, &req, "read flag is required") {
		return
	}
	contact, err := a.contacts.SetRead(id, *req.Read)
	if err != nil {
		handleContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, contact)
}

// DeleteContact 删除消息
func (a *API) DeleteContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid contact id")
		return
	}
	if err := a.contacts.Delete(id); err != nil {
		handleContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Contact deleted successfully"})
}

func handleContactError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrContactNotFound) {
		respondError(c, http.StatusNotFound, "Contact not found")
		return
	}
	respondServerError(c, "contact", err)
}
