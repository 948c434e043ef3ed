package token

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utilbot/juxtapose/internal/keyring"
	"github.com/utilbot/juxtapose/pkg/errorcode"
)

func newTestService(t *testing.T) *Service {
	kr, err := keyring.New([]byte("0123456789abcdef0123456789abcdef"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	return NewService(kr)
}

func TestMintVerifyRoundTrip(t *testing.T) {
	svc := newTestService(t)

	req := ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
		LeftLabel:     "before",
		RightLabel:    "after",
	}

	d, m, err := svc.Mint(req)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	verified, err := svc.Verify(d, m)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, req, verified)
}

func TestMintIsDeterministic(t *testing.T) {
	svc := newTestService(t)

	req := ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
	}

	dA, mA, err := svc.Mint(req)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	dB, mB, err := svc.Mint(req)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, dA, dB)
	assert.Equal(t, mA, mB)
}

func TestVerifyRejectsFlippedMACCharacter(t *testing.T) {
	svc := newTestService(t)

	d, m, err := svc.Mint(ComparisonRequest{
		LeftImageRef:  "https://a/1.png",
		RightImageRef: "https://b/2.png",
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// Flip the MAC's last character to a different base64url character.
	last := m[len(m)-1]
	flipped := byte('A')
	if last == flipped {
		flipped = 'B'
	}
	forgedM := m[:len(m)-1] + string(flipped)

	_, err = svc.Verify(d, forgedM)
	assert.ErrorIs(t, err, errorcode.ErrTokenForged)
}

func TestVerifyRejectsMutatedPayload(t *testing.T) {
	svc := newTestService(t)

	d, m, err := svc.Mint(ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	// Mutate one character of the payload while keeping the original MAC.
	mutated := []byte(d)
	if mutated[0] != 'A' {
		mutated[0] = 'A'
	} else {
		mutated[0] = 'B'
	}

	_, err = svc.Verify(string(mutated), m)
	assert.ErrorIs(t, err, errorcode.ErrTokenForged)
}

func TestVerifyRejectsMalformedWireValues(t *testing.T) {
	svc := newTestService(t)

	d, m, err := svc.Mint(ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	cases := []struct{ d, m string }{
		{"%%%not-base64%%%", m},
		{d, "%%%not-base64%%%"},
		{d, ""},
		{d, m[:len(m)-4]}, // wrong tag length
	}

	for _, c := range cases {
		_, err := svc.Verify(c.d, c.m)
		assert.ErrorIs(t, err, errorcode.ErrTokenMalformed)
	}
}

func TestVerifyRejectsKeyMismatch(t *testing.T) {
	svcA := newTestService(t)

	krB, err := keyring.New([]byte("ffffffffffffffffffffffffffffffff"))
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}
	svcB := NewService(krB)

	d, m, err := svcA.Mint(ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	_, err = svcB.Verify(d, m)
	assert.ErrorIs(t, err, errorcode.ErrTokenForged)
}
