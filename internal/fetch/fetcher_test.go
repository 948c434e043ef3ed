package fetch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

func encodeTestPNG(t *testing.T, width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 0x40, A: 0xff})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test PNG: %v", err)
	}

	return buf.Bytes()
}

func TestFetchReturnsSniffedPNG(t *testing.T) {
	pngBytes := encodeTestPNG(t, 8, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer server.Close()

	fetcher := NewFetcher(1<<20, 2*time.Second)
	data, format, err := fetcher.Fetch(context.Background(), errorcode.FetchSideLeft, server.URL)
	if isNoError := assert.NoError(t, err); !isNoError {
		t.FailNow()
	}

	assert.Equal(t, FormatPNG, format)
	assert.Equal(t, pngBytes, data)
}

func TestFetchRejectsUnsupportedFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>definitely not an image</html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(1<<20, 2*time.Second)
	_, _, err := fetcher.Fetch(context.Background(), errorcode.FetchSideLeft, server.URL)

	var fetchErr *errorcode.FetchError
	if isError := assert.ErrorAs(t, err, &fetchErr); !isError {
		t.FailNow()
	}

	assert.Equal(t, errorcode.FetchKindUnsupportedFormat, fetchErr.Kind)
	assert.Equal(t, errorcode.FetchSideLeft, fetchErr.Side)
}

func TestFetchRejectsOversizedBody(t *testing.T) {
	pngBytes := encodeTestPNG(t, 64, 64)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngBytes)
	}))
	defer server.Close()

	fetcher := NewFetcher(16, 2*time.Second)
	_, _, err := fetcher.Fetch(context.Background(), errorcode.FetchSideRight, server.URL)

	var fetchErr *errorcode.FetchError
	if isError := assert.ErrorAs(t, err, &fetchErr); !isError {
		t.FailNow()
	}

	assert.Equal(t, errorcode.FetchKindTooLarge, fetchErr.Kind)
	assert.Equal(t, errorcode.FetchSideRight, fetchErr.Side)
}

func TestFetchRejectsBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(1<<20, 2*time.Second)
	_, _, err := fetcher.Fetch(context.Background(), errorcode.FetchSideLeft, server.URL)

	var fetchErr *errorcode.FetchError
	if isError := assert.ErrorAs(t, err, &fetchErr); !isError {
		t.FailNow()
	}

	assert.Equal(t, errorcode.FetchKindBadStatus, fetchErr.Kind)
}

func TestFetchTimesOut(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	fetcher := NewFetcher(1<<20, 50*time.Millisecond)
	_, _, err := fetcher.Fetch(context.Background(), errorcode.FetchSideRight, server.URL)

	var fetchErr *errorcode.FetchError
	if isError := assert.ErrorAs(t, err, &fetchErr); !isError {
		t.FailNow()
	}

	assert.Equal(t, errorcode.FetchKindTimeout, fetchErr.Kind)
	assert.Equal(t, errorcode.FetchSideRight, fetchErr.Side)
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	fetcher := NewFetcher(1<<20, 10*time.Second)
	_, _, err := fetcher.Fetch(ctx, errorcode.FetchSideLeft, server.URL)
	assert.Error(t, err)
}

func TestSniffFormat(t *testing.T) {
	cases := []struct {
		data     []byte
		expected Format
	}{
		{encodeTestPNG(t, 1, 1), FormatPNG},
		{[]byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, FormatJPEG},
		{[]byte("GIF89a trailer"), FormatGIF},
		{[]byte("GIF87a trailer"), FormatGIF},
		{append([]byte("RIFF\x00\x00\x00\x00WEBP"), 0x00), FormatWebP},
		{[]byte("RIFF\x00\x00\x00\x00WAVE"), FormatUnknown},
		{[]byte("plain text"), FormatUnknown},
		{nil, FormatUnknown},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, SniffFormat(c.data))
	}
}
