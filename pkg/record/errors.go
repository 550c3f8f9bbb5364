package record

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of all caller-input rejections. Validation runs
// before any store mutation, so a rejected submission is never partially
// applied.
var ErrValidation = errors.New("validation failed")

var (
	// ErrZeroAmount rejects submissions with a zero amount.
	ErrZeroAmount = fmt.Errorf("%w: amount cannot be 0", ErrValidation)
	// ErrNegativeAmount rejects negative amounts.
	ErrNegativeAmount = fmt.Errorf("%w: amount cannot be negative", ErrValidation)
	// ErrTooManyImages rejects submissions with more than MaxImages images.
	ErrTooManyImages = fmt.Errorf("%w: maximum %d images allowed", ErrValidation, MaxImages)
	// ErrMissingModel rejects submissions without a 3D model file.
	ErrMissingModel = fmt.Errorf("%w: a 3D model file is required", ErrValidation)
)
