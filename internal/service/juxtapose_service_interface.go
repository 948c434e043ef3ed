package service

import (
	"context"

	"github.com/utilbot/juxtapose/internal/token"
	"github.com/utilbot/juxtapose/pkg/models/juxtapose"
)

// Orientation is the presentation-only layout hint carried in the `o` query
// value. It is deliberately outside the MAC: it never changes which images
// are trusted, only how they are arranged at view time.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// ParseOrientation maps a wire value to an Orientation, defaulting to
// horizontal for anything unknown or empty.
func ParseOrientation(value string) Orientation {
	if value == string(OrientationVertical) {
		return OrientationVertical
	}

	return OrientationHorizontal
}

// JuxtaposeServiceInterface defines the create and resolve flows of the
// juxtapose service.
type JuxtaposeServiceInterface interface {
	// CreateLink validates the request, fetches both images concurrently,
	// optionally composes the confirmation preview and mints the shareable
	// link.
	CreateLink(ctx context.Context, req token.ComparisonRequest, orientation Orientation, withPreview bool) (*juxtapose.CreateResult, error)
	// ResolveLink verifies the inbound wire values and returns the structured
	// refs and labels for the serving layer.
	ResolveLink(ctx context.Context, d string, m string) (*juxtapose.ResolvedComparison, error)
}
