package listscribe

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG.
const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func TestStripDataURL(t *testing.T) {
	tests := map[string]string{
		"data:image/png;base64,AAAA": "AAAA",
		"  AAAA  ":                   "AAAA",
		"data:nocomma":               "data:nocomma",
		"":                           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripDataURL(in), in)
	}
}

func TestDecodeImage(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		mediaType string
		wantErr   error
	}{
		{name: "plain", in: pixelPNG, mediaType: "image/png"},
		{name: "data url", in: "data:image/png;base64," + pixelPNG, mediaType: "image/png"},
		{
			name:      "missing padding",
			in:        base64.RawStdEncoding.EncodeToString([]byte("\xff\xd8\xff\xe0jpeg")),
			mediaType: "image/jpeg",
		},
		{name: "empty", in: "", wantErr: ErrEmptyImage},
		{name: "empty data url", in: "data:image/png;base64,", wantErr: ErrEmptyImage},
		{name: "garbage", in: "not base64!", wantErr: ErrInvalidImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeImage(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mediaType, img.MediaType)
			assert.NotEmpty(t, img.Data)
		})
	}
}

func TestImage_Base64(t *testing.T) {
	img, err := DecodeImage("data:image/png;base64," + pixelPNG)
	require.NoError(t, err)
	assert.Equal(t, pixelPNG, img.Base64())
}
