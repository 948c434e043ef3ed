package errorcode

import "fmt"

const (
	// CodeNotFound signals that a resource was not found. Layers receiving an
	// error with this code treat it as a miss rather than a failure.
	CodeNotFound = "~NOTFOUND~"
)

// ErrorNotFound is the error instance carrying `CodeNotFound`.
var ErrorNotFound = fmt.Errorf(CodeNotFound)

// ErrTokenMalformed is returned on the resolve path when either wire value
// cannot be base64url-decoded, or when an authenticated payload fails
// structural decoding. The serving layer must surface it as the same generic
// authentication failure as ErrTokenForged so the two are indistinguishable
// to a caller probing the endpoint.
var ErrTokenMalformed = fmt.Errorf("juxtapose token is malformed")

// ErrTokenForged is returned when the recomputed MAC over the payload bytes
// does not equal the supplied MAC under constant-time comparison.
var ErrTokenForged = fmt.Errorf("juxtapose token MAC mismatch")
