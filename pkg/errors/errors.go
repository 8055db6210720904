package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrValidation              = errors.New("validation failed")
	ErrUserNotFound            = errors.New("user not found")
	ErrVehicleNotFound         = errors.New("vehicle not found")
	ErrApplicationNotFound     = errors.New("loan application not found")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidApplicationState = errors.New("invalid or inactive EMI application")
	ErrInvalidStatusTransition = errors.New("invalid application status transition")
	ErrConcurrencyConflict     = errors.New("concurrent update conflict")
	ErrEmailExists             = errors.New("email already registered")
	ErrVehicleInUse            = errors.New("vehicle referenced by loan applications")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation              = "VALIDATION_ERROR"
	ErrCodeUserNotFound            = "USER_NOT_FOUND"
	ErrCodeVehicleNotFound         = "VEHICLE_NOT_FOUND"
	ErrCodeApplicationNotFound     = "APPLICATION_NOT_FOUND"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodeInvalidApplicationState = "INVALID_APPLICATION_STATE"
	ErrCodeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	ErrCodeConcurrencyConflict     = "CONCURRENCY_CONFLICT"
	ErrCodeEmailExists             = "EMAIL_ALREADY_EXISTS"
	ErrCodeVehicleInUse            = "VEHICLE_IN_USE"
	ErrCodeDatabaseError           = "DATABASE_ERROR"
)

// HTTPStatus maps an error to the status code the API answers with.
// Anything that is not a BusinessError is treated as an internal failure.
func HTTPStatus(err error) int {
	var be *BusinessError
	if !errors.As(err, &be) {
		return http.StatusInternalServerError
	}

	switch be.Code {
	case ErrCodeValidation, ErrCodeInvalidApplicationState:
		return http.StatusBadRequest
	case ErrCodeUserNotFound, ErrCodeVehicleNotFound, ErrCodeApplicationNotFound, ErrCodePaymentNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidStatusTransition, ErrCodeConcurrencyConflict, ErrCodeEmailExists, ErrCodeVehicleInUse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the message that is safe to show to API clients.
func PublicMessage(err error) string {
	var be *BusinessError
	if !errors.As(err, &be) || be.Code == ErrCodeDatabaseError {
		return "internal server error"
	}
	return be.Message
}

// Code returns the business error code, or an empty string.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

// Wrap common errors with business context
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapUserNotFound(userID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %d not found", userID),
		ErrUserNotFound,
	)
}

func WrapVehicleNotFound(vehicleID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeVehicleNotFound,
		fmt.Sprintf("Vehicle with ID %d not found", vehicleID),
		ErrVehicleNotFound,
	)
}

func WrapApplicationNotFound(applicationID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Loan application with ID %d not found", applicationID),
		ErrApplicationNotFound,
	)
}

func WrapPaymentNotFound(paymentID int64) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %d not found", paymentID),
		ErrPaymentNotFound,
	)
}

// WrapInvalidApplicationState keeps the wording clients of the original API rely on.
func WrapInvalidApplicationState() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidApplicationState,
		"Invalid or inactive EMI application",
		ErrInvalidApplicationState,
	)
}

func WrapInvalidStatusTransition(from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatusTransition,
		fmt.Sprintf("Cannot change application status from %s to %s", from, to),
		ErrInvalidStatusTransition,
	)
}

func WrapConcurrencyConflict(applicationID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeConcurrencyConflict,
		fmt.Sprintf("Loan application %d is being updated concurrently, retry the request", applicationID),
		ErrConcurrencyConflict,
	)
}

func WrapEmailExists(email string) *BusinessError {
	return NewBusinessError(
		ErrCodeEmailExists,
		fmt.Sprintf("Email %s already exists", email),
		ErrEmailExists,
	)
}

func WrapVehicleInUse(vehicleID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeVehicleInUse,
		fmt.Sprintf("Vehicle with ID %d has loan applications and cannot be deleted", vehicleID),
		ErrVehicleInUse,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}
