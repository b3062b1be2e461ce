package handlers

import (
	"errors"
	"net/http"

	"campusbook/services/clearance"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// PermitHandler exposes the admin permit-upload endpoint.
type PermitHandler struct {
	Svc clearance.Service
}

// NewPermitHandler creates a new PermitHandler instance.
func NewPermitHandler(svc clearance.Service) *PermitHandler {
	return &PermitHandler{Svc: svc}
}

// UploadPermitRequest carries the scanned permit for one student.
type UploadPermitRequest struct {
	TargetUID   string `json:"targetUid" binding:"required"`
	Base64Image string `json:"base64Image" binding:"required"`
}

// UploadPermitHandler uploads a permit scan and records it on the student's
// clearance document.
func (h *PermitHandler) UploadPermitHandler(c *gin.Context) {
	var req UploadPermitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	permitURL, err := h.Svc.UploadPermit(c, c.GetString("uid"), req.TargetUID, req.Base64Image)
	if err != nil {
		switch {
		case errors.Is(err, clearance.ErrMissingPayload):
			utils.JSONError(c, http.StatusBadRequest, "invalid argument", err.Error())
		case errors.Is(err, clearance.ErrAdminsOnly):
			utils.JSONError(c, http.StatusForbidden, "permission denied", err.Error())
		default:
			utils.JSONError(c, http.StatusInternalServerError, "upload failed", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "permitUrl": permitURL})
}
