package domain

import "errors"

// Sentinel errors shared across the repository layer. Infrastructure
// translates driver-specific errors (gorm.ErrRecordNotFound, unique
// violations) into these so services never import gorm.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)
