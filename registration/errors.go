package registration

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-auth-portal/internal/errors"
)

// UpstreamError is returned when the registration backend answers with a
// non-success status.
type UpstreamError struct {
	Status int
	Body   []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("registration backend returned status %d", e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return apperrors.ErrUpstream
}
