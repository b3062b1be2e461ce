package handlers

import (
	"errors"
	"net/http"

	"campusbook/services/username"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// UsernameHandler exposes the unique-handle registry endpoints.
type UsernameHandler struct {
	Svc username.Service
}

// NewUsernameHandler creates a new UsernameHandler instance.
func NewUsernameHandler(svc username.Service) *UsernameHandler {
	return &UsernameHandler{Svc: svc}
}

// ReserveUsernameRequest is the reservation payload.
type ReserveUsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

// ReserveUsernameHandler reserves a handle for the authenticated caller.
func (h *UsernameHandler) ReserveUsernameHandler(c *gin.Context) {
	var req ReserveUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	err := h.Svc.Reserve(c, c.GetString("uid"), c.GetString("email"), req.Username)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ReleaseUsernameHandler releases the caller's handle.
func (h *UsernameHandler) ReleaseUsernameHandler(c *gin.Context) {
	err := h.Svc.Release(c, c.GetString("uid"), c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// LookupEmailHandler resolves a handle to the bound account's email. Public.
func (h *UsernameHandler) LookupEmailHandler(c *gin.Context) {
	email, err := h.Svc.LookupEmail(c, c.Param("username"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"email": email})
}

func (h *UsernameHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, username.ErrInvalidUsername),
		errors.Is(err, username.ErrReservedWord):
		utils.JSONError(c, http.StatusBadRequest, "invalid username", err.Error())
	case errors.Is(err, username.ErrTaken):
		utils.JSONError(c, http.StatusConflict, "username taken", err.Error())
	case errors.Is(err, username.ErrNotOwner):
		utils.JSONError(c, http.StatusForbidden, "permission denied", err.Error())
	case errors.Is(err, username.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}
