// Package media implements the built-in media type extensions. Each
// extension owns one top-level MIME family and an allowlist of concrete
// types; validation checks the declared type against the allowlist and
// against magic bytes sniffed from the payload, so a payload lying about
// its type is rejected.
package media

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/geoattest/sdk-go/core/registry"
)

// Extension identifiers for the built-in media families.
const (
	ImageFormatID       = "image"
	VideoFormatID       = "video"
	AudioFormatID       = "audio"
	ApplicationFormatID = "application"
)

// Extension validates attachments for one MIME family.
type Extension struct {
	id    string
	name  string
	mimes []string
}

var _ registry.MediaExtension = (*Extension)(nil)

// NewImage covers common raster image types.
func NewImage() *Extension {
	return &Extension{
		id:   ImageFormatID,
		name: "Image",
		mimes: []string{
			"image/jpeg",
			"image/png",
			"image/gif",
			"image/webp",
			"image/tiff",
		},
	}
}

// NewVideo covers common video container types.
func NewVideo() *Extension {
	return &Extension{
		id:   VideoFormatID,
		name: "Video",
		mimes: []string{
			"video/mp4",
			"video/quicktime",
			"video/webm",
		},
	}
}

// NewAudio covers common audio types.
func NewAudio() *Extension {
	return &Extension{
		id:   AudioFormatID,
		name: "Audio",
		mimes: []string{
			"audio/mpeg",
			"audio/wav",
			"audio/ogg",
			"audio/aac",
		},
	}
}

// NewApplication covers document payloads, currently PDF only.
func NewApplication() *Extension {
	return &Extension{
		id:    ApplicationFormatID,
		name:  "Application",
		mimes: []string{"application/pdf"},
	}
}

// Builtin returns the four built-in media extensions in registration order.
func Builtin() []*Extension {
	return []*Extension{NewImage(), NewVideo(), NewAudio(), NewApplication()}
}

func (e *Extension) FormatID() string    { return e.id }
func (e *Extension) DisplayName() string { return e.name }

// MimeTypes returns the allowlist the extension registers under.
func (e *Extension) MimeTypes() []string {
	out := make([]string, len(e.mimes))
	copy(out, e.mimes)
	return out
}

// Validate reports whether data is a payload of the declared MIME type.
// The declared type must be on the allowlist and the sniffed type of the
// payload must match it, alias forms included.
func (e *Extension) Validate(mime string, data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !mimetype.EqualsAny(mime, e.mimes...) {
		return false
	}
	return mimetype.Detect(data).Is(mime)
}

// Detect sniffs the MIME type of data from its magic bytes. Unrecognized
// payloads come back as application/octet-stream.
func Detect(data []byte) string {
	return mimetype.Detect(data).String()
}
