package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testSecret    = "super-secret"
	testRequestID = "req-42"
	testTS        = "1700000000"
)

func computeDigest(secret string, dataID string, requestID string, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", strings.ToLower(dataID), requestID, ts)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(manifest))

	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerify_ValidSignature(t *testing.T) {
	digest := computeDigest(testSecret, "abc123", testRequestID, testTS)
	header := fmt.Sprintf("ts=%s,v1=%s", testTS, digest)

	assert.True(t, Verify(header, testRequestID, "abc123", testSecret))
}

func TestVerify_ToleratesWhitespaceAroundPairs(t *testing.T) {
	digest := computeDigest(testSecret, "abc123", testRequestID, testTS)
	header := fmt.Sprintf(" ts=%s , v1=%s ", testTS, digest)

	assert.True(t, Verify(header, testRequestID, "abc123", testSecret))
}

func TestVerify_UppercaseDataIDMatchesLowercaseManifest(t *testing.T) {
	digest := computeDigest(testSecret, "abc123", testRequestID, testTS)
	header := fmt.Sprintf("ts=%s,v1=%s", testTS, digest)

	assert.True(t, Verify(header, testRequestID, "ABC123", testSecret))
}

func TestVerify_MutatedDigestFails(t *testing.T) {
	digest := computeDigest(testSecret, "abc123", testRequestID, testTS)

	for i := 0; i < len(digest); i++ {
		mutated := []byte(digest)
		if mutated[i] == 'f' {
			mutated[i] = '0'
		} else {
			mutated[i] = 'f'
		}

		header := fmt.Sprintf("ts=%s,v1=%s", testTS, string(mutated))

		assert.False(t, Verify(header, testRequestID, "abc123", testSecret), "mutation at index %d must fail", i)
	}
}

func TestVerify_MissingParts(t *testing.T) {
	digest := computeDigest(testSecret, "abc123", testRequestID, testTS)

	assert.False(t, Verify(fmt.Sprintf("v1=%s", digest), testRequestID, "abc123", testSecret))
	assert.False(t, Verify(fmt.Sprintf("ts=%s", testTS), testRequestID, "abc123", testSecret))
	assert.False(t, Verify("", testRequestID, "abc123", testSecret))
	assert.False(t, Verify("garbage", testRequestID, "abc123", testSecret))
}

func TestVerify_WrongSecretFails(t *testing.T) {
	digest := computeDigest("other-secret", "abc123", testRequestID, testTS)
	header := fmt.Sprintf("ts=%s,v1=%s", testTS, digest)

	assert.False(t, Verify(header, testRequestID, "abc123", testSecret))
}
