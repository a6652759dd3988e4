// Package imageinfo recovers intrinsic pixel dimensions from compressed
// image buffers without decoding them. The assembly pipeline embeds the
// buffers verbatim, so an image is placeable exactly when this package can
// measure it.
package imageinfo

import "strings"

// Dimensions are intrinsic pixel dimensions read from an image header.
type Dimensions struct {
	Width  int
	Height int
}

// JPEG markers. Markers between rst0 and rst7, plus tem, stand alone and
// carry no length field.
const (
	markerSOI  = 0xd8
	markerEOI  = 0xd9
	markerSOF0 = 0xc0
	markerSOF2 = 0xc2
	markerTEM  = 0x01
	markerRST0 = 0xd0
	markerRST7 = 0xd7
)

// JPEGDimensions scans a JPEG buffer for its first frame header and returns
// the declared pixel dimensions. It validates the start-of-image marker,
// then walks marker segments by their declared lengths until a baseline,
// extended-sequential or progressive start-of-frame appears. Any other
// image family, truncated buffer, or stream without a frame header reports
// ok == false; callers drop such images rather than failing the document.
func JPEGDimensions(data []byte) (Dimensions, bool) {
	if len(data) < 4 || data[0] != 0xff || data[1] != markerSOI {
		return Dimensions{}, false
	}

	i := 2
	for i+1 < len(data) {
		if data[i] != 0xff {
			return Dimensions{}, false
		}
		marker := data[i+1]
		if marker == 0xff {
			// Fill byte before the real marker.
			i++
			continue
		}
		i += 2

		if marker == markerTEM || marker == markerSOI || (marker >= markerRST0 && marker <= markerRST7) {
			continue
		}
		if marker == markerEOI {
			return Dimensions{}, false
		}

		if i+1 >= len(data) {
			return Dimensions{}, false
		}
		segLen := int(data[i])<<8 | int(data[i+1])
		if segLen < 2 || i+segLen > len(data) {
			return Dimensions{}, false
		}

		if marker >= markerSOF0 && marker <= markerSOF2 {
			// Frame header: length(2) precision(1) height(2) width(2).
			if segLen < 7 {
				return Dimensions{}, false
			}
			h := int(data[i+3])<<8 | int(data[i+4])
			w := int(data[i+5])<<8 | int(data[i+6])
			if w == 0 || h == 0 {
				return Dimensions{}, false
			}
			return Dimensions{Width: w, Height: h}, true
		}

		i += segLen
	}
	return Dimensions{}, false
}

// IsEmbeddable reports whether a declared content type names a raster
// family the engine will attempt to measure and embed.
func IsEmbeddable(contentType string) bool {
	ct := contentType
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case "image/jpeg", "image/jpg", "image/pjpeg":
		return true
	}
	return false
}
