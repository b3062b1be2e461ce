package username

import "errors"

var (
	ErrInvalidUsername = errors.New("username must match ^[a-z0-9._-]{3,30}$")
	ErrReservedWord    = errors.New("username is reserved")
	ErrTaken           = errors.New("username is already taken")
	ErrNotOwner        = errors.New("username is reserved by another account")
	ErrNotFound        = errors.New("username not found")
)
