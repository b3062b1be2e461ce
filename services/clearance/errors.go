package clearance

import "errors"

var (
	ErrAdminsOnly     = errors.New("permit uploads require the ADMIN role")
	ErrMissingPayload = errors.New("target uid and base64 image are required")
	ErrUploadFailed   = errors.New("permit upload failed")
)
