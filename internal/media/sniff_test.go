package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Result
	}{
		{
			"jpeg",
			[]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F'},
			Result{Type: TypeJPEG, MIME: "image/jpeg", Extension: "jpg"},
		},
		{
			"png",
			[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13},
			Result{Type: TypePNG, MIME: "image/png", Extension: "png"},
		},
		{
			"gif87a",
			[]byte("GIF87a\x01\x00\x01\x00"),
			Result{Type: TypeGIF, MIME: "image/gif", Extension: "gif"},
		},
		{
			"gif89a",
			[]byte("GIF89a\x01\x00\x01\x00"),
			Result{Type: TypeGIF, MIME: "image/gif", Extension: "gif"},
		},
		{
			"webp",
			[]byte("RIFF\x24\x00\x00\x00WEBPVP8 "),
			Result{Type: TypeWEBP, MIME: "image/webp", Extension: "webp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectRejectsUnknownPayloads(t *testing.T) {
	tests := []struct {
		name string
		head []byte
	}{
		{"empty", nil},
		{"text", []byte("hello world")},
		{"pdf", []byte("%PDF-1.4")},
		{"truncated riff", []byte("RIFF\x24\x00")},
		{"riff but not webp", []byte("RIFF\x24\x00\x00\x00WAVEfmt ")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Detect(tt.head)
			assert.ErrorIs(t, err, ErrUnknownType)
		})
	}
}
