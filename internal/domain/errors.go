package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every error returned by the catalog wraps exactly one of
// these, or none when the failure is internal.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
)

// catalogError carries a user-facing message and the class it belongs to.
type catalogError struct {
	class error
	msg   string
}

func (e *catalogError) Error() string { return e.msg }

func (e *catalogError) Unwrap() error { return e.class }

func newError(class error, msg string) error {
	return &catalogError{class: class, msg: msg}
}

var (
	ErrCategoryDetailsRequired = newError(ErrValidation, "Please enter category details")
	ErrCategoryNameRequired    = newError(ErrValidation, "Category name is required")
	ErrInvalidCategoryID       = newError(ErrValidation, "Invalid category ID")
	ErrCategoryNotFound        = newError(ErrNotFound, "Category not found")
	ErrCategoryInUse           = newError(ErrConflict, "Cannot delete category with associated products")

	ErrProductFieldsRequired = newError(ErrValidation, "name, price, and category are required fields")
	ErrInvalidProductName    = newError(ErrValidation, "Product name is required")
	ErrInvalidProductPrice   = newError(ErrValidation, "Price must be a positive number")
	ErrInvalidProductID      = newError(ErrValidation, "Invalid product ID")
	ErrUnknownCategory       = newError(ErrValidation, "Invalid category ID. Please provide a valid category.")
	ErrProductNotFound       = newError(ErrNotFound, "Product not found")

	ErrInvalidRequestBody = newError(ErrValidation, "Invalid request body")
)

// CategoryExistsError reports a duplicate category name.
func CategoryExistsError(name string) error {
	return newError(ErrConflict, fmt.Sprintf("The category %s already exists", name))
}

// InvalidQueryError reports a product listing query with keys outside the
// accepted set.
func InvalidQueryError(allowed []string) error {
	return newError(ErrValidation, fmt.Sprintf("Invalid query parameters. Valid options are: %s", strings.Join(allowed, ", ")))
}
