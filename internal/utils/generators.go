package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

// GenerateLinkToken produces the opaque token embedded in a public guest
// registration URL. 24 random bytes, URL-safe, no padding.
func GenerateLinkToken() string {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		// Fallback to a timestamp-based token if random generation fails
		return fmt.Sprintf("lnk_%d", time.Now().UnixNano())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
