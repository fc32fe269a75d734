package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// ContentTypeJSON is the content type of every error body.
const ContentTypeJSON = "application/json; charset=UTF-8"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Body is the JSON shape written for every failed request.
type Body struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest)
}

// NewInvalidToken is the uniform rejection for any unusable bearer token.
func NewInvalidToken() error {
	return NewDomainError("INVALID_TOKEN", "token is not valid", http.StatusBadRequest)
}

func NewNotFound(resource string) error {
	return NewDomainError("NOT_FOUND", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden)
}

func NewConflict(message string) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return NewDomainError("HTTP_ERROR", fiberErr.Message, fiberErr.Code)
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Respond writes err as the standard failure body and ends the handler chain.
func Respond(c *fiber.Ctx, err error) error {
	domainErr := ToDomainError(err)
	if domainErr == nil {
		return nil
	}
	if jsonErr := c.Status(domainErr.HTTPStatus).JSON(Body{Message: domainErr.Message, Status: domainErr.HTTPStatus}); jsonErr != nil {
		return jsonErr
	}
	c.Set(fiber.HeaderContentType, ContentTypeJSON)
	return nil
}
