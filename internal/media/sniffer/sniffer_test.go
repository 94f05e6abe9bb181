package sniffer

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHead  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}
	jpegHead = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10}
	webpHead = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
	pckHead  = []byte("GDPC\x02\x00\x00\x00\x04\x00\x00\x00")
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"png", pngHead, TypePNG},
		{"jpeg", jpegHead, TypeJPEG},
		{"gif", []byte("GIF89a\x01\x00"), TypeGIF},
		{"webp", webpHead, TypeWEBP},
		{"pck", pckHead, TypePCK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Type)
		})
	}

	_, err := DetectHead(nil)
	assert.ErrorIs(t, err, ErrUnknownType)
	_, err = DetectHead([]byte("<svg xmlns=\"http://www.w3.org/2000/svg\"/>"))
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDetectImage(t *testing.T) {
	got, err := DetectImage(jpegHead)
	require.NoError(t, err)
	assert.Equal(t, "jpg", got.Ext())
	assert.Equal(t, "image/jpeg", got.MIME)

	_, err = DetectImage(pckHead)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestDetectPack(t *testing.T) {
	got, err := DetectPack("Game.PCK", pckHead)
	require.NoError(t, err)
	assert.Equal(t, "pck", got.Ext())

	_, err = DetectPack("game.zip", pckHead)
	assert.ErrorIs(t, err, ErrNotPack)

	_, err = DetectPack("game.pck", pngHead)
	assert.ErrorIs(t, err, ErrNotPack)
}

func TestDetectReturnsConsumedHead(t *testing.T) {
	payload := append(append([]byte{}, pngHead...), bytes.Repeat([]byte{1}, 600)...)
	r := bytes.NewReader(payload)

	result, head, err := Detect(r)
	require.NoError(t, err)
	assert.Equal(t, TypePNG, result.Type)
	assert.Len(t, head, 512)

	rest, err := io.ReadAll(io.MultiReader(bytes.NewReader(head), r))
	require.NoError(t, err)
	assert.Equal(t, payload, rest)
}
