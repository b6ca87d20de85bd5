package advanced

import "github.com/pkg/errors"

// Degenerate input: collinear seed points, zero area contours and the like.
// The caller can clean up the input and try again.
var ErrDegenerate = errors.New("degenerate input")

// Constrain may only be called once over the lifetime of a mesh.
var ErrAlreadyConstrained = errors.New("mesh is already constrained")

// Once constrained, the mesh cannot grow beyond its hull.
var ErrOutsideConstrained = errors.New("point lies outside of the constrained mesh")

// Vertices on segments of a constrained mesh cannot be removed.
var ErrSegmentVertex = errors.New("vertex lies on a segment")

// A handle that does not (or no longer) refer to a live element of this mesh.
var ErrStaleHandle = errors.New("stale or foreign handle")

// An internal consistency check failed. The mesh is corrupt after this and
// must be cleared before it is used again.
type InvariantError struct {
	cause error
}

func (e *InvariantError) Error() string {
	return "mesh invariant violated: " + e.cause.Error()
}

func (e *InvariantError) Unwrap() error {
	return e.cause
}

// Threading invariant failures up and down every mesh edit would add a ton of
// noise to the code. Instead, we panic, and the public API recovers to convert
// to an error.
func fatalf(format string, args ...interface{}) {
	panic(&InvariantError{cause: errors.Errorf(format, args...)})
}

// Convert a recovered InvariantError into an error. Any other panic is a real
// bug and is re-raised.
func handlePanicRecover(r interface{}) error {
	if r != nil {
		if invariantError, ok := r.(*InvariantError); ok {
			return invariantError
		}
		panic(r)
	}
	return nil
}

// Exported for the facade package, which has its own recover boundary.
func HandlePanicRecover(r interface{}) error {
	return handlePanicRecover(r)
}
