// Package keyring derives purpose-scoped secret keys from one master secret
// and computes/verifies fixed-length authentication tags with them. A Keyring
// is built once at startup and is safe for unsynchronized concurrent reads;
// it must be injected into every component that signs or verifies instead of
// living in a mutable global.
package keyring

import (
	"crypto/subtle"

	"lukechampine.com/blake3"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// TagSize is the length in bytes of an authentication tag (128 bits).
const TagSize = 16

// MinMasterKeySize is the minimum accepted length of the master key material.
const MinMasterKeySize = 16

// A DerivedKey is a secret derived deterministically from the master key
// material and a domain-separation string. Identical purpose strings always
// yield the identical key for the process lifetime.
type DerivedKey [32]byte

// A Keyring holds the master key material. The material is never logged and
// never leaves the process.
type Keyring struct {
	master []byte
}

// New creates a Keyring from raw master key material.
func New(master []byte) (*Keyring, error) {
	if len(master) < MinMasterKeySize {
		return nil, errorcode.NewConfigError("the master key material must be at least 16 bytes long")
	}

	kr := &Keyring{master: make([]byte, len(master))}
	copy(kr.master, master)

	return kr, nil
}

// DeriveKey derives the key for the given signing purpose. The derivation is
// a pure function of the master key material and the purpose string, so
// compromising one derived key does not expose the keys of other purposes.
func (kr *Keyring) DeriveKey(purpose string) DerivedKey {
	var key DerivedKey
	blake3.DeriveKey(key[:], purpose, kr.master)

	return key
}

// MAC computes the fixed-length authentication tag of `payload` under `key`
// using a keyed cryptographic hash.
func MAC(key DerivedKey, payload []byte) [TagSize]byte {
	hasher := blake3.New(TagSize, key[:])
	hasher.Write(payload)

	var tag [TagSize]byte
	copy(tag[:], hasher.Sum(nil))

	return tag
}

// Verify recomputes the tag of `payload` under `key` and compares it with the
// supplied tag in constant time. An early-exit byte comparison would let an
// attacker recover a valid tag byte-by-byte through timing, so only
// subtle.ConstantTimeCompare is acceptable here.
func Verify(key DerivedKey, payload []byte, tag []byte) bool {
	computed := MAC(key, payload)

	return subtle.ConstantTimeCompare(computed[:], tag) == 1
}
