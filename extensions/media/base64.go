package media

import (
	"encoding/base64"
	"strings"

	"github.com/geoattest/sdk-go/core/types"
)

// EncodeData returns the base64 form media payloads are attested with.
func EncodeData(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeData reverses EncodeData. A data URI prefix such as
// "data:image/png;base64," is stripped before decoding.
func DecodeData(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		idx := strings.Index(s, "base64,")
		if idx < 0 {
			return nil, types.NewFormatError(types.KindValidation, "media",
				"data URI is not base64 encoded")
		}
		s = s[idx+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, types.WrapFormatError(types.KindValidation, "media",
			"invalid base64 payload", err)
	}
	return data, nil
}
