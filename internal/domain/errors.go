package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrValidation)
	ErrFileTooLarge        = fmt.Errorf("%w: file exceeds maximum allowed size", ErrValidation)
	ErrFileTooSmall        = fmt.Errorf("%w: file is too small to be a valid document", ErrValidation)
	ErrInvalidOption       = fmt.Errorf("%w: invalid parse option", ErrValidation)
	ErrPageOutOfRange      = fmt.Errorf("%w: page out of range", ErrValidation)

	ErrNotFound       = errors.New("resource not found")
	ErrResultNotFound = fmt.Errorf("%w: no parse result for session", ErrNotFound)

	ErrConfig              = errors.New("invalid configuration")
	ErrVendor              = errors.New("vendor request failed")
	ErrUploadInProgress    = errors.New("an upload is already in progress for this session")
	ErrSelectionOutOfRange = errors.New("selected element index is out of range")
	ErrInvalidSessionID    = errors.New("invalid session id")
)

// VendorError describes a failed call to the document parsing vendor.
// StatusCode is 0 when the request never produced an HTTP response.
type VendorError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *VendorError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *VendorError) Unwrap() error {
	return e.Err
}

// Is reports every VendorError as ErrVendor so callers can match on the sentinel.
func (e *VendorError) Is(target error) bool {
	return target == ErrVendor
}
