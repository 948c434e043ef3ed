package token

import (
	"encoding/base64"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/internal/keyring"
	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// MACPurpose is the domain-separation string under which the link-signing
// key is derived. Changing it invalidates every link minted so far.
const MACPurpose = "juxtapose 2023-10-15 12:11:06 link MAC v1"

// wireEncoding is base64url without padding, as required for URL query values.
var wireEncoding = base64.RawURLEncoding

// A Service mints and verifies signed capability tokens. The derived signing
// key is computed once at construction and is read-only afterwards, so one
// Service is safely shared across concurrent requests.
type Service struct {
	key keyring.DerivedKey
}

// NewService derives the link-signing key from the keyring.
func NewService(kr *keyring.Keyring) *Service {
	return &Service{key: kr.DeriveKey(MACPurpose)}
}

// Mint encodes the request and MACs the exact encoded bytes (never the
// structured fields), so verification is unambiguous. It returns the two
// wire values: `d` (payload) and `m` (tag), both base64url without padding.
func (s *Service) Mint(req ComparisonRequest) (d string, m string, err error) {
	payload, err := Encode(req)
	if err != nil {
		return "", "", err
	}

	tag := keyring.MAC(s.key, payload)

	return wireEncoding.EncodeToString(payload), wireEncoding.EncodeToString(tag[:]), nil
}

// Verify authenticates and decodes the wire values. The order is
// load-bearing: the MAC is checked over the decoded payload bytes before any
// structural decoding, so a decode bug can only be reached by data that
// already carries a valid tag.
func (s *Service) Verify(d string, m string) (ComparisonRequest, error) {
	payload, err := wireEncoding.DecodeString(d)
	if err != nil {
		return ComparisonRequest{}, errors.Wrap(errorcode.ErrTokenMalformed, "the d parameter is not valid base64url")
	}

	tag, err := wireEncoding.DecodeString(m)
	if err != nil {
		return ComparisonRequest{}, errors.Wrap(errorcode.ErrTokenMalformed, "the m parameter is not valid base64url")
	}

	if len(tag) != keyring.TagSize {
		return ComparisonRequest{}, errors.Wrap(errorcode.ErrTokenMalformed, "the m parameter has the wrong length")
	}

	if !keyring.Verify(s.key, payload, tag) {
		return ComparisonRequest{}, errorcode.ErrTokenForged
	}

	return Decode(payload)
}
