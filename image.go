package listscribe

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrEmptyImage   = errors.New("image data is empty")
	ErrInvalidImage = errors.New("image data is not valid base64")
)

// Image is a decoded upload.
type Image struct {
	Data      []byte
	MediaType string
}

// Base64 returns the image re-encoded without a data URL prefix.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// StripDataURL removes a "data:<mime>;base64," prefix if one is present.
func StripDataURL(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// DecodeImage decodes base64 image data, tolerating a data URL prefix and
// missing padding. The media type is sniffed from the bytes.
func DecodeImage(s string) (Image, error) {
	s = StripDataURL(s)
	if s == "" {
		return Image{}, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return Image{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}

	return Image{Data: data, MediaType: http.DetectContentType(data)}, nil
}
