package api

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"expenseai/app/middleware"
)

// ErrorHandler maps application errors onto JSON responses: api.Error keeps
// its code, validation errors keep their status, fiber errors keep theirs,
// anything unexpected becomes a 500 carrying the error's description.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}

	var fiberError *fiber.Error
	if errors.As(err, &fiberError) {
		return c.Status(fiberError.Code).JSON(NewError(fiberError.Code, fiberError.Message))
	}

	apiError := NewError(fiber.StatusInternalServerError, err.Error())
	log.Printf("request %v failed with code %d and message: %s",
		c.Locals(middleware.HeaderRequestID), apiError.Code, apiError.Message)
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusBadRequest,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrUnsupportedFileType() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "Only Excel files are supported",
	}
}

func ErrMissingColumns(columns []string) Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: fmt.Sprintf("Missing required columns: %s", strings.Join(columns, ", ")),
	}
}

func ErrNoExpenseData() Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: "No expense data found. Please upload an Excel file first.",
	}
}

func ErrUpstream(cause error) Error {
	return Error{
		Code:    fiber.StatusInternalServerError,
		Message: cause.Error(),
	}
}
