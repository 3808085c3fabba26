package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Error categories. Every error produced by the core wraps exactly one of them.
var (
	// ErrStructural marks edits rejected because they would break graph integrity.
	ErrStructural = zerr.New("structural graph error")

	// ErrConstraint marks marker-link systems that have no unique solution.
	ErrConstraint = zerr.New("constraint error")

	// ErrProcessor marks per-node evaluation failures.
	ErrProcessor = zerr.New("processor error")

	// ErrBackend marks compositing, decode or encode backend failures.
	ErrBackend = zerr.New("backend error")
)

var (
	// ErrDanglingReference is returned when an edit references an id that does not exist.
	ErrDanglingReference = zerr.Wrap(ErrStructural, "dangling reference")

	// ErrCycleDetected is returned when a connection would close a cycle in the pin graph.
	ErrCycleDetected = zerr.Wrap(ErrStructural, "cycle detected")

	// ErrKindMismatch is returned when two connected pins or a parameter and its value disagree on type.
	ErrKindMismatch = zerr.Wrap(ErrStructural, "kind mismatch")

	// ErrPinOccupied is returned when an input pin already has a connection.
	ErrPinOccupied = zerr.Wrap(ErrStructural, "input pin already connected")

	// ErrDuplicateName is returned when a name is declared twice within one component.
	ErrDuplicateName = zerr.Wrap(ErrStructural, "duplicate name")

	// ErrIntrinsicLink is returned when an edit targets a component's length link directly.
	ErrIntrinsicLink = zerr.Wrap(ErrStructural, "intrinsic link cannot be edited directly")

	// ErrBoundaryMarker is returned when an edit tries to remove a component's boundary marker.
	ErrBoundaryMarker = zerr.Wrap(ErrStructural, "boundary marker cannot be removed")

	// ErrInvalidArgument is returned when an edit carries a value outside its domain.
	ErrInvalidArgument = zerr.Wrap(ErrStructural, "invalid argument")

	// ErrMissingInput is returned when a required input pin of a touched component is disconnected.
	ErrMissingInput = zerr.Wrap(ErrStructural, "required input pin is not connected")
)

var (
	// ErrUnsatisfiable is returned when two paths through the link graph disagree on a marker position.
	ErrUnsatisfiable = zerr.Wrap(ErrConstraint, "unsatisfiable marker links")

	// ErrInvalidSpan is returned when a component's resolved end is not after its start.
	ErrInvalidSpan = zerr.Wrap(ErrConstraint, "component span is empty or inverted")

	// ErrUnresolved is returned when a marker belongs to a region that failed to resolve.
	ErrUnresolved = zerr.Wrap(ErrConstraint, "marker position unresolved")
)

var (
	// ErrUnknownProcessor is returned when a component names a processor that is not registered.
	ErrUnknownProcessor = zerr.Wrap(ErrProcessor, "unknown processor")

	// ErrProcessorFailed is returned when a processor returned an error or panicked.
	ErrProcessorFailed = zerr.Wrap(ErrProcessor, "processor failed")

	// ErrUnexpectedOutput is returned when a processor produced a media kind it was not asked for.
	ErrUnexpectedOutput = zerr.Wrap(ErrProcessor, "processor returned unexpected output")

	// ErrMalformedBuffer is returned when an image or audio buffer does not match its declared shape.
	ErrMalformedBuffer = zerr.Wrap(ErrProcessor, "malformed media buffer")

	// ErrUpstreamFailed marks results computed from a placeholder input.
	ErrUpstreamFailed = zerr.Wrap(ErrProcessor, "upstream evaluation failed")
)

var (
	// ErrCompositeFailed is returned when the compositing backend failed.
	ErrCompositeFailed = zerr.Wrap(ErrBackend, "composite failed")

	// ErrEncodeFailed is returned when the encoder rejected a frame.
	ErrEncodeFailed = zerr.Wrap(ErrBackend, "encode failed")

	// ErrDecodeFailed is returned when a media decoder failed.
	ErrDecodeFailed = zerr.Wrap(ErrBackend, "decode failed")
)

var (
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrConfigRead is returned when the configuration file cannot be read or parsed.
	ErrConfigRead = zerr.New("failed to read configuration")
)

var (
	// ErrSuperseded is the cancellation cause of a preview request replaced by a newer one.
	ErrSuperseded = zerr.New("request superseded")

	// ErrQueueClosed is returned when work is submitted to a closed execution queue.
	ErrQueueClosed = zerr.New("execution queue closed")

	// ErrNothingToUndo is returned when the edit history is empty in the requested direction.
	ErrNothingToUndo = zerr.New("nothing to undo")

	// ErrNothingToRedo is returned when there is no undone edit to reapply.
	ErrNothingToRedo = zerr.New("nothing to redo")
)

// IsStructural reports whether err is a structural graph error.
func IsStructural(err error) bool {
	return errors.Is(err, ErrStructural)
}

// IsConstraint reports whether err is a constraint error.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsProcessor reports whether err is a node-local failure (processor or backend).
func IsProcessor(err error) bool {
	return errors.Is(err, ErrProcessor) || errors.Is(err, ErrBackend)
}
