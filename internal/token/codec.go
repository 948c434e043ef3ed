// Package token serializes a comparison request into a compact, versioned
// binary payload and combines that codec with the keyring into the mint and
// verify operations behind the wire-visible `d`/`m` parameters.
package token

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// FormatVersion is the leading byte of every encoded payload. Unknown
// versions are rejected on decode so the format can evolve.
const FormatVersion = 0x01

const (
	// MaxRefLength is the maximum length in bytes of an image ref URL.
	MaxRefLength = 2048
	// MaxLabelLength is the maximum length in bytes of a label.
	MaxLabelLength = 100
)

// A ComparisonRequest describes one side-by-side comparison: two image refs
// and optional labels. An empty label means no label.
type ComparisonRequest struct {
	LeftImageRef  string
	RightImageRef string
	LeftLabel     string
	RightLabel    string
}

// ValidateRequest checks the ref and label invariants: both refs are
// well-formed absolute http(s) URLs and all fields are within their length
// bounds. Violations are reported as `*errorcode.InputError`.
func ValidateRequest(req ComparisonRequest) error {
	if err := validateRef(req.LeftImageRef, "left"); err != nil {
		return err
	}

	if err := validateRef(req.RightImageRef, "right"); err != nil {
		return err
	}

	if len(req.LeftLabel) > MaxLabelLength {
		return errorcode.NewInputError(fmt.Sprintf("the left label must not be longer than %v bytes", MaxLabelLength))
	}

	if len(req.RightLabel) > MaxLabelLength {
		return errorcode.NewInputError(fmt.Sprintf("the right label must not be longer than %v bytes", MaxLabelLength))
	}

	return nil
}

func validateRef(ref string, side string) error {
	if strings.TrimSpace(ref) == "" {
		return errorcode.NewInputError(fmt.Sprintf("the %v image URL must not be empty", side))
	}

	if len(ref) > MaxRefLength {
		return errorcode.NewInputError(fmt.Sprintf("the %v image URL must not be longer than %v bytes", side, MaxRefLength))
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return errorcode.NewInputError(fmt.Sprintf("the %v image URL is malformed", side))
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return errorcode.NewInputError(fmt.Sprintf("the %v image URL must be an absolute http(s) URL", side))
	}

	return nil
}

// Encode serializes the request into its versioned binary form: the format
// version byte followed by four length-prefixed fields (left ref, right ref,
// left label, right label). Identical requests always encode to identical
// bytes, which makes minting deterministic.
func Encode(req ComparisonRequest) ([]byte, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	payload := make([]byte, 0, 1+4*2+len(req.LeftImageRef)+len(req.RightImageRef)+len(req.LeftLabel)+len(req.RightLabel))
	payload = append(payload, FormatVersion)
	payload = appendField(payload, req.LeftImageRef)
	payload = appendField(payload, req.RightImageRef)
	payload = appendField(payload, req.LeftLabel)
	payload = appendField(payload, req.RightLabel)

	return payload, nil
}

func appendField(payload []byte, field string) []byte {
	var fieldLen [2]byte
	binary.BigEndian.PutUint16(fieldLen[:], uint16(len(field)))
	payload = append(payload, fieldLen[:]...)

	return append(payload, field...)
}

// Decode is the exact inverse of Encode. It only ever runs on bytes that
// already passed the MAC check, but it still re-validates the version byte,
// the framing and the field bounds and rejects anything off with
// `errorcode.ErrTokenMalformed`.
func Decode(payload []byte) (ComparisonRequest, error) {
	var req ComparisonRequest

	if len(payload) == 0 {
		return req, errors.Wrap(errorcode.ErrTokenMalformed, "empty payload")
	}

	if payload[0] != FormatVersion {
		return req, errors.Wrapf(errorcode.ErrTokenMalformed, "unknown format version %#x", payload[0])
	}

	rest := payload[1:]
	fields := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		field, remaining, err := readField(rest)
		if err != nil {
			return req, err
		}

		fields = append(fields, field)
		rest = remaining
	}

	if len(rest) != 0 {
		return req, errors.Wrap(errorcode.ErrTokenMalformed, "trailing bytes after the last field")
	}

	req = ComparisonRequest{
		LeftImageRef:  fields[0],
		RightImageRef: fields[1],
		LeftLabel:     fields[2],
		RightLabel:    fields[3],
	}

	if err := ValidateRequest(req); err != nil {
		return ComparisonRequest{}, errors.Wrap(errorcode.ErrTokenMalformed, err.Error())
	}

	return req, nil
}

func readField(payload []byte) (string, []byte, error) {
	if len(payload) < 2 {
		return "", nil, errors.Wrap(errorcode.ErrTokenMalformed, "truncated field length")
	}

	fieldLen := int(binary.BigEndian.Uint16(payload[:2]))
	payload = payload[2:]
	if len(payload) < fieldLen {
		return "", nil, errors.Wrap(errorcode.ErrTokenMalformed, "truncated field contents")
	}

	return string(payload[:fieldLen]), payload[fieldLen:], nil
}
