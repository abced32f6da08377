package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureRoundTrip(t *testing.T) {
	raw := make([]byte, 65)
	for i := range raw {
		raw[i] = byte(i)
	}
	raw[64] = 27

	sig, err := SignatureFromBytes(raw)
	require.NoError(t, err)
	require.Equal(t, uint8(27), sig.V)
	require.Equal(t, raw, sig.Bytes())
}

func TestSignatureFromBytesRejectsBadLength(t *testing.T) {
	_, err := SignatureFromBytes(make([]byte, 64))
	require.Error(t, err)
	require.True(t, IsKind(err, KindValidation))
}

func TestAttachmentAccessorsPreserveOrder(t *testing.T) {
	att := &UnsignedAttestation{
		Media: []MediaAttachment{
			{MimeType: "image/png", Data: "aGVsbG8="},
			{MimeType: "application/pdf", Data: "d29ybGQ="},
		},
	}

	require.Equal(t, []string{"image/png", "application/pdf"}, att.MediaTypes())
	require.Equal(t, []string{"aGVsbG8=", "d29ybGQ="}, att.MediaData())
}
