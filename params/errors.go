package params

import (
	"errors"
	"strings"
)

// Sentinel errors for the recoverable failure modes of matrix construction
// and parameter assembly. They are always returned wrapped with context, so
// match them with errors.Is.
var (
	// ErrDimensionMismatch reports an operand shape that the requested
	// operation cannot accept.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrSingularMatrix reports a zero determinant where an inverse was
	// required.
	ErrSingularMatrix = errors.New("matrix is singular")

	// ErrInvalidMixingMatrix reports a mixing matrix that cannot support the
	// constant-optimization transform: wrong dimensions for the constants it
	// is paired with, or no inverse.
	ErrInvalidMixingMatrix = errors.New("invalid mixing matrix")
)

// ValidationError reports every check a parameter set failed. A set with
// three bad shapes yields one ValidationError carrying three issues, not
// three separate errors.
type ValidationError struct {
	Issues []error
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("poseidon377: invalid parameter set:")
	for _, issue := range e.Issues {
		b.WriteString("\n\t")
		b.WriteString(issue.Error())
	}
	return b.String()
}

// Unwrap exposes the individual issues to errors.Is and errors.As.
func (e *ValidationError) Unwrap() []error {
	return e.Issues
}
