// Package errors provides the domain error kinds surfaced to the API boundary.
package errors

import "errors"

// Identity and ownership.
var ErrUnauthenticated = errors.New("user is not authenticated")
var ErrAccessDenied = errors.New("access denied")
var ErrInvalidCredentials = errors.New("password is incorrect")

// Resolution failures. Looking up a resource owned by another vendor is
// ErrAccessDenied, not one of these.
var ErrVendorNotFound = errors.New("vendor does not exist")
var ErrClientNotFound = errors.New("client does not exist")
var ErrProductNotFound = errors.New("product does not exist")
var ErrOrderNotFound = errors.New("order does not exist")

// Registration conflicts.
var ErrVendorExists = errors.New("vendor is already registered")
var ErrClientExists = errors.New("client email is already in use")

// Order lifecycle.
var ErrInsufficientStock = errors.New("requested amount exceeds available stock")
var ErrOrderImmutable = errors.New("order items and client cannot be modified")
var ErrProductInUse = errors.New("product is being used in pending orders")

// ErrConflict reports that a concurrent operation modified one of the
// records this operation staged against. The whole operation was rolled
// back; callers may retry.
var ErrConflict = errors.New("record was modified by a concurrent operation")
