package fetch

import "bytes"

// Format is the closed set of image formats the compositor can decode.
// Dispatch happens on sniffed magic bytes; extending support means adding a
// variant here and registering its decoder in the compose package, never
// runtime type inspection.
type Format int

const (
	FormatUnknown Format = iota
	FormatPNG
	FormatJPEG
	FormatGIF
	FormatWebP
)

func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatGIF:
		return "gif"
	case FormatWebP:
		return "webp"
	default:
		return "unknown"
	}
}

var (
	pngMagic  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	gif87a    = []byte("GIF87a")
	gif89a    = []byte("GIF89a")
	riffMagic = []byte("RIFF")
	webpTag   = []byte("WEBP")
)

// SniffFormat inspects the leading magic bytes of `data` and reports the
// image format, or FormatUnknown when none of the supported signatures match.
func SniffFormat(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG
	case bytes.HasPrefix(data, gif87a), bytes.HasPrefix(data, gif89a):
		return FormatGIF
	case bytes.HasPrefix(data, riffMagic) && len(data) >= 12 && bytes.Equal(data[8:12], webpTag):
		return FormatWebP
	default:
		return FormatUnknown
	}
}
