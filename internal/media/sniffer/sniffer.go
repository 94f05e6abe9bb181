// Package sniffer identifies uploaded files by their leading bytes rather
// than by the name or Content-Type the client sent.
package sniffer

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

type MediaType string

const (
	TypeJPEG MediaType = "jpeg"
	TypePNG  MediaType = "png"
	TypeGIF  MediaType = "gif"
	TypeWEBP MediaType = "webp"
	TypePCK  MediaType = "pck"
)

var (
	ErrUnknownType = errors.New("unknown media type")
	ErrNotImage    = errors.New("not a supported image")
	ErrNotPack     = errors.New("not a godot pack")
)

type Result struct {
	Type MediaType
	MIME string
}

// Ext is the file extension used when the object is stored.
func (r Result) Ext() string {
	if r.Type == TypeJPEG {
		return "jpg"
	}
	return string(r.Type)
}

func (r Result) IsImage() bool {
	switch r.Type {
	case TypeJPEG, TypePNG, TypeGIF, TypeWEBP:
		return true
	}
	return false
}

// Detect reads up to 512 bytes from r and classifies them. The consumed head
// is returned so the caller can stitch it back in front of the remainder.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	switch {
	case len(head) == 0:
		return Result{}, ErrUnknownType
	case isPCK(head):
		return Result{Type: TypePCK, MIME: "application/octet-stream"}, nil
	case isJPEG(head):
		return Result{Type: TypeJPEG, MIME: "image/jpeg"}, nil
	case isPNG(head):
		return Result{Type: TypePNG, MIME: "image/png"}, nil
	case isGIF(head):
		return Result{Type: TypeGIF, MIME: "image/gif"}, nil
	case isWEBP(head):
		return Result{Type: TypeWEBP, MIME: "image/webp"}, nil
	}
	return Result{}, ErrUnknownType
}

// DetectImage accepts only raster thumbnails.
func DetectImage(head []byte) (Result, error) {
	result, err := DetectHead(head)
	if err != nil || !result.IsImage() {
		return Result{}, ErrNotImage
	}
	return result, nil
}

// DetectPack accepts a Godot .pck export. Both the file name and the magic
// must agree.
func DetectPack(filename string, head []byte) (Result, error) {
	if !strings.EqualFold(extension(filename), ".pck") {
		return Result{}, ErrNotPack
	}
	result, err := DetectHead(head)
	if err != nil || result.Type != TypePCK {
		return Result{}, ErrNotPack
	}
	return result, nil
}

func isPCK(head []byte) bool {
	return len(head) >= 4 && bytes.Equal(head[:4], []byte("GDPC"))
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

func extension(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
