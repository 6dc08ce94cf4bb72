package sessionkit

import "errors"

var (
	ErrOpenStore = errors.New("failed to open token store")
	ErrMigrate   = errors.New("failed to migrate token store")
)
