package employee

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const photoDataURIPrefix = "data:image/png;base64,"

// EncodePhoto は base64 の写真データを検証し、data URI に変換します。
// 空の入力、またはデコード結果が空の場合は nil を返します。
func EncodePhoto(payload string) (*string, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, nil
	}
	// 取得したレコードの data URI をそのまま送り返すクライアントがある。
	if strings.HasPrefix(trimmed, "data:") {
		_, data, ok := strings.Cut(trimmed, ";base64,")
		if !ok {
			return nil, fmt.Errorf("%w: unsupported data uri", ErrMalformedImage)
		}
		trimmed = data
	}

	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	uri := photoDataURIPrefix + base64.StdEncoding.EncodeToString(raw)
	return &uri, nil
}
