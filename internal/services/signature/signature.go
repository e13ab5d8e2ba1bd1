package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Verify checks the processor's notification signature. The header is a
// comma-separated list of key=value pairs carrying a timestamp (ts) and an
// HMAC-SHA256 digest (v1) computed over the manifest
// "id:<data id>;request-id:<request id>;ts:<ts>;" with the data id lowercased.
// Fails closed on any malformed input.
func Verify(signatureHeader string, requestID string, dataID string, secret string) bool {
	var ts, hash string

	for _, part := range strings.Split(signatureHeader, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}

		switch strings.TrimSpace(key) {
		case "ts":
			ts = strings.TrimSpace(value)
		case "v1":
			hash = strings.TrimSpace(value)
		}
	}

	if ts == "" || hash == "" {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))

	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(hash))
}
