package handlers

import (
	"net/http"

	"campusbook/database/store"
	"campusbook/models"
	"campusbook/services/role"
	"campusbook/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account provisioning and device registration.
type UserHandler struct {
	Store       store.Store
	Provisioner *role.Provisioner
}

// NewUserHandler creates a new UserHandler instance.
func NewUserHandler(st store.Store, prov *role.Provisioner) *UserHandler {
	return &UserHandler{Store: st, Provisioner: prov}
}

// ProvisionHandler is the identity-provider "account created" callback: the
// client calls it once after signup. Replays are no-ops.
func (h *UserHandler) ProvisionHandler(c *gin.Context) {
	uid := c.GetString("uid")
	email := c.GetString("email")
	if err := h.Provisioner.OnAccountCreated(c, uid, email); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "provisioning failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UpdateFCMTokenRequest registers the device push token.
type UpdateFCMTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// UpdateFCMTokenHandler stores the caller's current device token on their
// role document so reminders and paid notifications can reach them.
func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	var req UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	uid := c.GetString("uid")
	err := h.Store.RunTransaction(c, func(tx store.Txn) error {
		var user models.User
		found, err := tx.Get(store.CollUsers, uid, &user)
		if err != nil {
			return err
		}
		if !found {
			user = models.User{UID: uid, Email: c.GetString("email"), Role: models.RoleGuest}
		}
		user.FCMToken = req.Token
		return tx.Set(store.CollUsers, uid, &user)
	})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
