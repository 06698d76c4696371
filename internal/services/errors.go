package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetch marks a network or path failure loading declared media.
	ErrFetch = errors.New("fetch failure")
	// ErrDecode marks bytes that could not be interpreted as an image.
	ErrDecode = errors.New("decode failure")
	// ErrEncode marks a transform whose output could not be serialized.
	ErrEncode = errors.New("encode failure")
	// ErrValidation marks user-supplied parameters rejected before any work starts.
	ErrValidation = errors.New("validation failure")
	// ErrIdentityMismatch marks an imported entry that matches no known asset.
	ErrIdentityMismatch = errors.New("identity mismatch")
	ErrNotFound         = errors.New("not found")
	ErrConfiguration    = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFetch
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether a per-asset failure may be isolated so the
// surrounding batch continues. Configuration errors are not recoverable.
func Recoverable(err error) bool {
	if err == nil {
		return true
	}
	return !errors.Is(err, ErrConfiguration)
}

// Kind returns a short classification label for err, used in progress
// reports and API payloads.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrFetch):
		return "fetch"
	case errors.Is(err, ErrDecode):
		return "decode"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrIdentityMismatch):
		return "identity_mismatch"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "asset failure"
	}
	return strings.Join(parts, ": ")
}
