// Package fetch retrieves remote resource bytes under timeout and size
// bounds. It performs no retries: a failed fetch is reported to the caller,
// which decides whether the whole request fails.
package fetch

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// userAgent is sent with every outbound request. Some image hosts reject
// requests without a browser-like user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// A Fetcher performs bounded, timeout-controlled streaming GETs. One Fetcher
// is shared by all requests; it holds no per-request state.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
	Timeout  time.Duration
}

// NewFetcher creates a Fetcher enforcing the given per-call payload cap and
// timeout.
func NewFetcher(maxBytes int64, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{},
		MaxBytes: maxBytes,
		Timeout:  timeout,
	}
}

// Fetch retrieves the image at `rawURL` and sniffs its format from the magic
// bytes before any decode is attempted. Every failure is reported as a
// `*errorcode.FetchError` naming `side`. The context is honored so the
// orchestrator can cancel the sibling fetch on first failure.
func (f *Fetcher) Fetch(ctx context.Context, side errorcode.FetchSide, rawURL string) ([]byte, Format, error) {
	data, err := f.fetchBounded(ctx, side, rawURL, f.MaxBytes)
	if err != nil {
		return nil, FormatUnknown, err
	}

	format := SniffFormat(data)
	if format == FormatUnknown {
		return nil, FormatUnknown, &errorcode.FetchError{
			Side: side,
			Kind: errorcode.FetchKindUnsupportedFormat,
			Err:  errors.New("the resource is not a supported image format"),
		}
	}

	log.WithFields(log.Fields{"side": side, "format": format.String(), "bytes": len(data)}).Debug("Fetched remote image.")

	return data, format, nil
}

// FetchRaw retrieves the resource at `rawURL` without format sniffing, capped
// at `maxBytes` instead of the fetcher-wide image cap. Used for source-file
// previews.
func (f *Fetcher) FetchRaw(ctx context.Context, rawURL string, maxBytes int64) ([]byte, error) {
	return f.fetchBounded(ctx, "", rawURL, maxBytes)
}

func (f *Fetcher) fetchBounded(ctx context.Context, side errorcode.FetchSide, rawURL string, maxBytes int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &errorcode.FetchError{Side: side, Kind: errorcode.FetchKindNetwork, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &errorcode.FetchError{Side: side, Kind: classifyTransportError(ctx, err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errorcode.FetchError{
			Side: side,
			Kind: errorcode.FetchKindBadStatus,
			Err:  errors.Errorf("unexpected status %v", resp.StatusCode),
		}
	}

	if resp.ContentLength > maxBytes {
		return nil, &errorcode.FetchError{
			Side: side,
			Kind: errorcode.FetchKindTooLarge,
			Err:  errors.Errorf("declared size %v exceeds the limit of %v bytes", resp.ContentLength, maxBytes),
		}
	}

	// Read one byte past the cap so an unbounded (or lying) body is detected
	// without buffering it whole.
	data, err := ioutil.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, &errorcode.FetchError{Side: side, Kind: classifyTransportError(ctx, err), Err: err}
	}

	if int64(len(data)) > maxBytes {
		return nil, &errorcode.FetchError{
			Side: side,
			Kind: errorcode.FetchKindTooLarge,
			Err:  errors.Errorf("the resource exceeds the limit of %v bytes", maxBytes),
		}
	}

	return data, nil
}

func classifyTransportError(ctx context.Context, err error) errorcode.FetchKind {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return errorcode.FetchKindTimeout
	}

	return errorcode.FetchKindNetwork
}
