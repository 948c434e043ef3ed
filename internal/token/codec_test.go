package token

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	requests := []ComparisonRequest{
		{
			LeftImageRef:  "https://a.example.com/1.png",
			RightImageRef: "https://b.example.com/2.png",
		},
		{
			LeftImageRef:  "https://a.example.com/1.png",
			RightImageRef: "https://b.example.com/2.png",
			LeftLabel:     "before",
			RightLabel:    "after",
		},
		{
			LeftImageRef:  "http://a.example.com/path/with%20spaces.jpg?v=1",
			RightImageRef: "https://b.example.com/2.webp",
			RightLabel:    "only the right side has a label",
		},
		{
			LeftImageRef:  "https://a.example.com/" + strings.Repeat("x", MaxRefLength-len("https://a.example.com/")),
			RightImageRef: "https://b.example.com/2.png",
			LeftLabel:     strings.Repeat("y", MaxLabelLength),
		},
	}

	for _, req := range requests {
		payload, err := Encode(req)
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}

		decoded, err := Decode(payload)
		if isNoError := assert.NoError(t, err); !isNoError {
			t.FailNow()
		}

		assert.Equal(t, req, decoded)
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	req := ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
		LeftLabel:     "before",
	}

	payloadA, err := Encode(req)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	payloadB, err := Encode(req)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, payloadA, payloadB)
	assert.Equal(t, byte(FormatVersion), payloadA[0])
}

func TestEncodeRejectsInvalidInput(t *testing.T) {
	invalidRequests := []ComparisonRequest{
		{},
		{LeftImageRef: "https://a.example.com/1.png"},
		{LeftImageRef: "   ", RightImageRef: "https://b.example.com/2.png"},
		{LeftImageRef: "ftp://a.example.com/1.png", RightImageRef: "https://b.example.com/2.png"},
		{LeftImageRef: "relative/path.png", RightImageRef: "https://b.example.com/2.png"},
		{LeftImageRef: "https://", RightImageRef: "https://b.example.com/2.png"},
		{
			LeftImageRef:  "https://a.example.com/" + strings.Repeat("x", MaxRefLength),
			RightImageRef: "https://b.example.com/2.png",
		},
		{
			LeftImageRef:  "https://a.example.com/1.png",
			RightImageRef: "https://b.example.com/2.png",
			LeftLabel:     strings.Repeat("y", MaxLabelLength+1),
		},
	}

	for _, req := range invalidRequests {
		_, err := Encode(req)
		if isError := assert.Error(t, err); !isError {
			t.FailNow()
		}

		var inputErr *errorcode.InputError
		assert.ErrorAs(t, err, &inputErr)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	validPayload, err := Encode(ComparisonRequest{
		LeftImageRef:  "https://a.example.com/1.png",
		RightImageRef: "https://b.example.com/2.png",
	})
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	malformedPayloads := [][]byte{
		nil,
		{},
		{0x02},
		{FormatVersion},
		{FormatVersion, 0x00},
		{FormatVersion, 0x00, 0x05, 'a', 'b'},
		append(append([]byte{}, validPayload...), 0x00),
		validPayload[:len(validPayload)-1],
		// Well-framed payload whose ref is not an absolute http(s) URL.
		func() []byte {
			p := []byte{FormatVersion}
			p = appendField(p, "not a url")
			p = appendField(p, "https://b.example.com/2.png")
			p = appendField(p, "")
			p = appendField(p, "")
			return p
		}(),
	}

	for _, payload := range malformedPayloads {
		_, err := Decode(payload)
		if isError := assert.Error(t, err); !isError {
			t.FailNow()
		}

		assert.ErrorIs(t, err, errorcode.ErrTokenMalformed)
	}
}
