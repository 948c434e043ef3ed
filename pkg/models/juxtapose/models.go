// Package juxtapose contains the wire models of the juxtapose API.
package juxtapose

// A ResolvedComparison is the resolution response body: the source image URLs
// and optional labels for a verified token. The presentation layer performs
// composition at view time (or not) from these.
type ResolvedComparison struct {
	LeftImageURL    string `json:"left_image_url"`
	RightImageURL   string `json:"right_image_url"`
	LeftImageLabel  string `json:"left_image_label,omitempty"`
	RightImageLabel string `json:"right_image_label,omitempty"`
}

// A CreateResult is the create response body: the shareable link plus its
// individual wire values. PreviewPNG carries the confirmation raster when one
// was requested.
type CreateResult struct {
	URL        string `json:"url"`
	D          string `json:"d"`
	M          string `json:"m"`
	O          string `json:"o"`
	PreviewPNG []byte `json:"previewPng,omitempty"`
}
