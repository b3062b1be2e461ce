// Package clearance attaches scanned permit documents to a student's
// clearance record. The upload provider is opaque behind Uploader; the
// production implementation is Cloudinary.
package clearance

import (
	"context"
	"fmt"
	"time"

	"campusbook/database/store"
	"campusbook/models"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// permitFolder is the provider-side folder for permit scans.
const permitFolder = "permits"

// Uploader accepts a base64-encoded image and returns a retrievable URL.
type Uploader interface {
	UploadBase64(ctx context.Context, data, folder string) (string, error)
}

// Service uploads permits and records them on the clearance document.
type Service interface {
	UploadPermit(ctx context.Context, adminUID, targetUID, base64Image string) (string, error)
}

// DefaultService is the production implementation.
type DefaultService struct {
	Store    store.Store
	Uploader Uploader

	now func() time.Time
}

// NewService wires a DefaultService.
func NewService(st store.Store, up Uploader) *DefaultService {
	return &DefaultService{Store: st, Uploader: up, now: time.Now}
}

// UploadPermit verifies the caller holds the ADMIN role document, uploads
// the scan, and merges the resulting URL into clearances/{targetUID}.
func (s *DefaultService) UploadPermit(ctx context.Context, adminUID, targetUID, base64Image string) (string, error) {
	if targetUID == "" || base64Image == "" {
		return "", ErrMissingPayload
	}

	var caller models.User
	found, err := s.Store.Get(ctx, store.CollUsers, adminUID, &caller)
	if err != nil {
		return "", err
	}
	if !found || caller.Role != models.RoleAdmin {
		return "", ErrAdminsOnly
	}

	permitURL, err := s.Uploader.UploadBase64(ctx, base64Image, permitFolder)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	err = s.Store.RunTransaction(ctx, func(tx store.Txn) error {
		var rec models.Clearance
		if _, err := tx.Get(store.CollClearances, targetUID, &rec); err != nil {
			return err
		}
		now := s.now()
		rec.UID = targetUID
		rec.PermitURL = permitURL
		rec.PermitReady = true
		rec.PermitUpdatedAt = &now
		return tx.Set(store.CollClearances, targetUID, &rec)
	})
	if err != nil {
		return "", err
	}
	return permitURL, nil
}

// CloudinaryUploader implements Uploader on the Cloudinary SDK. Cloudinary
// accepts data URIs directly as the upload source.
type CloudinaryUploader struct {
	Cld *cloudinary.Cloudinary
}

func (u *CloudinaryUploader) UploadBase64(ctx context.Context, data, folder string) (string, error) {
	result, err := u.Cld.Upload.Upload(ctx, data, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload failed: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload returned no URL")
	}
	return result.SecureURL, nil
}
