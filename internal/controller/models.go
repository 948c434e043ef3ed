package controller

// LinkCreationInfo contains the information returned to the client when a comparison link is created.
type LinkCreationInfo struct {
	URL        string `json:"url"`
	D          string `json:"d"`
	M          string `json:"m"`
	O          string `json:"o"`
	PreviewPNG string `json:"previewPng,omitempty"` // base64 standard encoding
}
