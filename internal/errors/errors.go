package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by code so wrapped copies still compare equal.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return t.Code == e.Code && t.Message == e.Message
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeConflict            = "CONFLICT"
	CodeUploadFailed        = "UPLOAD_FAILED"
	CodeMediaUnavailable    = "MEDIA_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// Predefined domain errors
var (
	// Account errors
	ErrMissingFields      = NewDomainError(CodeInvalidInput, "All fields are required")
	ErrUserExists         = NewDomainError(CodeConflict, "User already exists")
	ErrEmailTaken         = NewDomainError(CodeConflict, "Email is already in use")
	ErrAvatarRequired     = NewDomainError(CodeInvalidInput, "Avatar file is required")
	ErrAvatarUpload       = NewDomainError(CodeInvalidInput, "Avatar upload failed")
	ErrCoverImageRequired = NewDomainError(CodeInvalidInput, "Cover image file is required")
	ErrCoverImageUpload   = NewDomainError(CodeInvalidInput, "Cover image upload failed")
	ErrLoginIdentifier    = NewDomainError(CodeInvalidInput, "Username or email is required")
	ErrUserNotFound       = NewDomainError(CodeNotFound, "User does not exist")
	ErrInvalidCredentials = NewDomainError(CodeInvalidCredentials, "Invalid user credentials")
	ErrInvalidOldPassword = NewDomainError(CodeInvalidInput, "Invalid old password")
	ErrUsernameMissing    = NewDomainError(CodeInvalidInput, "Username is missing")
	ErrChannelNotFound    = NewDomainError(CodeNotFound, "channel does not exist")
	ErrSelfSubscription   = NewDomainError(CodeInvalidInput, "You cannot subscribe to your own channel")
	ErrInvalidChannelID   = NewDomainError(CodeInvalidInput, "Invalid channel id")
	ErrInvalidUserID      = NewDomainError(CodeInvalidInput, "Invalid user id")
	ErrUploadTooLarge     = NewDomainError(CodeInvalidInput, "Uploaded file is too large")

	// Authentication errors
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Unauthorized request")
	ErrInvalidToken        = NewDomainError(CodeInvalidToken, "Invalid access token")
	ErrInvalidRefreshToken = NewDomainError(CodeInvalidRefreshToken, "Invalid refresh token")
	ErrRefreshTokenUsed    = NewDomainError(CodeInvalidRefreshToken, "Refresh token is expired or used")
	ErrTokenGeneration     = NewDomainError(CodeInternal, "Something went wrong while generating access and refresh tokens")

	// Video errors
	ErrInvalidVideoID    = NewDomainError(CodeInvalidInput, "Invalid video id")
	ErrVideoNotFound     = NewDomainError(CodeNotFound, "Video not found")
	ErrVideoFieldsEmpty  = NewDomainError(CodeInvalidInput, "Title and description are required")
	ErrVideoFilesMissing = NewDomainError(CodeInvalidInput, "Video file or thumbnail is missing")
	ErrVideoUpload       = NewDomainError(CodeUploadFailed, "Error while uploading video to storage")
	ErrThumbnailUpload   = NewDomainError(CodeUploadFailed, "Error while uploading thumbnail to storage")
	ErrMediaDelete       = NewDomainError(CodeMediaUnavailable, "Error while deleting media from storage")
	ErrNotVideoOwner     = NewDomainError(CodeForbidden, "You are not allowed to modify this video")

	// System errors
	ErrInternal           = NewDomainError(CodeInternal, "Internal server error")
	ErrServiceUnavailable = NewDomainError(CodeServiceUnavailable, "Service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

// domainErrorToHTTPStatus maps specific domain errors to HTTP status codes
func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case CodeInvalidInput:
		return http.StatusBadRequest

	case CodeUnauthorized, CodeInvalidCredentials, CodeInvalidToken, CodeInvalidRefreshToken:
		return http.StatusUnauthorized

	case CodeForbidden:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	case CodeConflict:
		return http.StatusConflict

	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable

	// upload and media host failures surface as 500
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
