package errorcode

import "fmt"

// An InputError reports a malformed user-supplied parameter (image ref or
// label). Nothing is fetched or minted when one is returned.
type InputError struct {
	errMsg string
}

func NewInputError(errMsg string) *InputError {
	return &InputError{errMsg: errMsg}
}

func (e *InputError) Error() string {
	return e.errMsg
}

// FetchSide identifies which of the two fetches of a comparison failed.
type FetchSide string

const (
	FetchSideLeft  FetchSide = "left"
	FetchSideRight FetchSide = "right"
)

// FetchKind classifies a remote image fetch failure.
type FetchKind string

const (
	FetchKindNetwork           FetchKind = "network"
	FetchKindTimeout           FetchKind = "timeout"
	FetchKindTooLarge          FetchKind = "tooLarge"
	FetchKindBadStatus         FetchKind = "badStatus"
	FetchKindUnsupportedFormat FetchKind = "unsupportedFormat"
)

// A FetchError reports a failed remote image fetch. It always names the side
// that failed so the caller can report it verbatim.
type FetchError struct {
	Side FetchSide
	Kind FetchKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch the %v image (%v): %v", e.Side, e.Kind, e.Err)
	}

	return fmt.Sprintf("failed to fetch the %v image (%v)", e.Side, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CompositorKind classifies a composition failure.
type CompositorKind string

const (
	CompositorDecodeFailed       CompositorKind = "decodeFailed"
	CompositorDimensionsTooLarge CompositorKind = "dimensionsTooLarge"
)

// A CompositorError reports a failed composition. The detail in `Err` is for
// internal logs only; callers show a generic message.
type CompositorError struct {
	Kind CompositorKind
	Err  error
}

func (e *CompositorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to compose the images (%v): %v", e.Kind, e.Err)
	}

	return fmt.Sprintf("failed to compose the images (%v)", e.Kind)
}

func (e *CompositorError) Unwrap() error {
	return e.Err
}

// A ConfigError reports an invalid or incomplete startup configuration. It is
// the only error class that is fatal: the process must refuse to begin
// serving on one.
type ConfigError struct {
	errMsg string
}

func NewConfigError(errMsg string) *ConfigError {
	return &ConfigError{errMsg: errMsg}
}

func (e *ConfigError) Error() string {
	return e.errMsg
}
