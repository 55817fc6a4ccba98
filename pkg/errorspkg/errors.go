// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates a storage or infrastructure failure.
//
// The underlying driver error is logged where it happens and never returned to callers.
var ErrInternal = errors.New("internal")
