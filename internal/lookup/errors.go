package lookup

import (
	"errors"
	"fmt"

	"arena-god/internal/region"
)

var ErrAccountNotFound = errors.New("account not found in any region")

// UpstreamError is a non-success status from one region.
type UpstreamError struct {
	Region region.Region
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error in %s: %d", e.Region, e.Status)
}

// ValidationError means the body did not have the expected shape.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid response: " + e.Reason
	}
	return fmt.Sprintf("invalid response: %s %s", e.Field, e.Reason)
}
