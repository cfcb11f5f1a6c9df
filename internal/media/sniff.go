package media

import (
	"bytes"
	"errors"
)

// Type is a detected image format
type Type string

const (
	TypeJPEG Type = "jpeg"
	TypePNG  Type = "png"
	TypeGIF  Type = "gif"
	TypeWEBP Type = "webp"
)

var ErrUnknownType = errors.New("unknown media type")

// Result holds the detected format along with its MIME type and the
// file extension used for stored objects.
type Result struct {
	Type      Type
	MIME      string
	Extension string
}

// Detect sniffs the image format from the leading bytes of the payload.
// Declared content types are ignored; only magic bytes count.
func Detect(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isJPEG(head) {
		return Result{Type: TypeJPEG, MIME: "image/jpeg", Extension: "jpg"}, nil
	}
	if isPNG(head) {
		return Result{Type: TypePNG, MIME: "image/png", Extension: "png"}, nil
	}
	if isGIF(head) {
		return Result{Type: TypeGIF, MIME: "image/gif", Extension: "gif"}, nil
	}
	if isWEBP(head) {
		return Result{Type: TypeWEBP, MIME: "image/webp", Extension: "webp"}, nil
	}

	return Result{}, ErrUnknownType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isGIF(head []byte) bool {
	return len(head) >= 6 && (bytes.Equal(head[:6], []byte("GIF87a")) || bytes.Equal(head[:6], []byte("GIF89a")))
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}
