// Package errs provides standardized error types for the pizzeria application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError: For when a required value is missing
//   - ValueIsInvalidError: For when a value is invalid
//   - ValueIsOutOfRangeError: For when a numeric setting is outside its bounds
//   - ObjectNotFoundError: For when an order cannot be found
//   - ObjectAlreadyExistsError: For when an order identifier is registered twice
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so errors.Is works across layers
//
// The HTTP adapter maps the sentinels to status codes, so callers deep in the
// pipeline only need to pick the right constructor.
package errs
