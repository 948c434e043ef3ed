package keyring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

func TestNewRejectsShortMasterKey(t *testing.T) {
	_, err := New([]byte("too-short"))
	if isError := assert.Error(t, err); !isError {
		t.FailNow()
	}

	var configErr *errorcode.ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	kr, err := New([]byte("0123456789abcdef0123456789abcdef"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	keyA := kr.DeriveKey("juxtapose link MAC v1")
	keyB := kr.DeriveKey("juxtapose link MAC v1")
	assert.Equal(t, keyA, keyB)

	keyOther := kr.DeriveKey("some other purpose v1")
	assert.NotEqual(t, keyA, keyOther)
}

func TestDeriveKeyIsIndependentOfCallerBuffer(t *testing.T) {
	master := []byte("0123456789abcdef0123456789abcdef")
	kr, err := New(master)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	keyBefore := kr.DeriveKey("juxtapose link MAC v1")

	// Mutating the caller's buffer must not change derivations.
	master[0] ^= 0xff
	keyAfter := kr.DeriveKey("juxtapose link MAC v1")
	assert.Equal(t, keyBefore, keyAfter)
}

func TestVerifyAcceptsValidTag(t *testing.T) {
	kr, err := New([]byte("0123456789abcdef0123456789abcdef"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	key := kr.DeriveKey("juxtapose link MAC v1")
	payload := []byte("payload under test")
	tag := MAC(key, payload)

	assert.True(t, Verify(key, payload, tag[:]))
}

func TestVerifyRejectsEverySingleBitFlip(t *testing.T) {
	kr, err := New([]byte("0123456789abcdef0123456789abcdef"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	key := kr.DeriveKey("juxtapose link MAC v1")
	payload := []byte("payload under test")
	tag := MAC(key, payload)

	// Any single-bit mutation of the tag must be rejected.
	for byteIndex := 0; byteIndex < TagSize; byteIndex++ {
		for bit := 0; bit < 8; bit++ {
			mutated := tag
			mutated[byteIndex] ^= 1 << bit
			assert.False(t, Verify(key, payload, mutated[:]))
		}
	}

	// Any single-bit mutation of the payload must be rejected as well.
	for byteIndex := range payload {
		mutatedPayload := make([]byte, len(payload))
		copy(mutatedPayload, payload)
		mutatedPayload[byteIndex] ^= 0x01
		assert.False(t, Verify(key, mutatedPayload, tag[:]))
	}
}

func TestVerifyRejectsWrongLengthTag(t *testing.T) {
	kr, err := New([]byte("0123456789abcdef0123456789abcdef"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	key := kr.DeriveKey("juxtapose link MAC v1")
	payload := []byte("payload under test")
	tag := MAC(key, payload)

	assert.False(t, Verify(key, payload, tag[:TagSize-1]))
	assert.False(t, Verify(key, payload, append(tag[:], 0x00)))
	assert.False(t, Verify(key, payload, nil))
}
