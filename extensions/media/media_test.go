package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/types"
)

// Minimal payloads carrying real magic bytes.
var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D, 'I', 'H', 'D', 'R'}
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00")
	pdfBytes  = []byte("%PDF-1.4\n%geo\n")
	mp3Bytes  = []byte{'I', 'D', '3', 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	wavBytes  = []byte("RIFF\x24\x08\x00\x00WAVEfmt ")
)

func TestValidateMatchingPayloads(t *testing.T) {
	image := NewImage()
	assert.True(t, image.Validate("image/jpeg", jpegBytes))
	assert.True(t, image.Validate("image/png", pngBytes))
	assert.True(t, image.Validate("image/gif", gifBytes))

	audio := NewAudio()
	assert.True(t, audio.Validate("audio/mpeg", mp3Bytes))
	assert.True(t, audio.Validate("audio/wav", wavBytes))

	application := NewApplication()
	assert.True(t, application.Validate("application/pdf", pdfBytes))
}

func TestValidateRejectsMismatchedMagicBytes(t *testing.T) {
	image := NewImage()

	// Declared PNG, actual JPEG payload.
	assert.False(t, image.Validate("image/png", jpegBytes))
	assert.False(t, image.Validate("image/jpeg", pngBytes))
	assert.False(t, image.Validate("image/gif", pdfBytes))
}

func TestValidateRejectsTypesOffTheAllowlist(t *testing.T) {
	// A real BMP payload is still rejected: image/bmp is not allowlisted.
	bmp := []byte{'B', 'M', 0x3A, 0x00, 0x00, 0x00}
	assert.False(t, NewImage().Validate("image/bmp", bmp))

	// Allowlisted elsewhere does not help across families.
	assert.False(t, NewVideo().Validate("image/png", pngBytes))
	assert.False(t, NewAudio().Validate("application/pdf", pdfBytes))
}

func TestValidateRejectsEmptyPayload(t *testing.T) {
	assert.False(t, NewImage().Validate("image/png", nil))
	assert.False(t, NewImage().Validate("image/png", []byte{}))
}

func TestDetect(t *testing.T) {
	require.Equal(t, "image/png", Detect(pngBytes))
	require.Equal(t, "image/jpeg", Detect(jpegBytes))
	require.Equal(t, "application/pdf", Detect(pdfBytes))
	require.Equal(t, "application/octet-stream", Detect([]byte{0x00, 0x01, 0x02}))
}

func TestBuiltinFamilies(t *testing.T) {
	builtin := Builtin()
	require.Len(t, builtin, 4)

	ids := make([]string, 0, len(builtin))
	for _, ext := range builtin {
		ids = append(ids, ext.FormatID())
		require.NotEmpty(t, ext.MimeTypes())
	}
	require.Equal(t, []string{"image", "video", "audio", "application"}, ids)
}

func TestMimeTypesReturnsCopy(t *testing.T) {
	image := NewImage()

	mimes := image.MimeTypes()
	mimes[0] = "text/plain"

	require.Equal(t, "image/jpeg", image.MimeTypes()[0])
}

func TestEncodeDecodeData(t *testing.T) {
	encoded := EncodeData(pngBytes)

	decoded, err := DecodeData(encoded)
	require.NoError(t, err)
	require.Equal(t, pngBytes, decoded)
}

func TestDecodeDataStripsDataURI(t *testing.T) {
	decoded, err := DecodeData("data:image/png;base64," + EncodeData(pngBytes))
	require.NoError(t, err)
	require.Equal(t, pngBytes, decoded)
}

func TestDecodeDataErrors(t *testing.T) {
	_, err := DecodeData("not base64!!!")
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindValidation))

	_, err = DecodeData("data:image/png;hex,00ff")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not base64")
}
