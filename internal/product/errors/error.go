// Package errors provides custom error types for product-related operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")

// ErrDuplicateID is returned by a store when the product identifier is already taken.
var ErrDuplicateID = errors.New("product id already exists")

// ErrIDSpaceExhausted is returned when the next identifier would not fit in six digits.
var ErrIDSpaceExhausted = errors.New("product id space exhausted")

var ErrInvalidArgument = errors.New("invalid argument")

var ErrMalformedID = errors.New("malformed product id")

// ErrStockOverflow is returned when a stock change would not fit the stock counter.
var ErrStockOverflow = errors.New("stock quantity overflow")
