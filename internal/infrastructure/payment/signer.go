package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"net/url"
	"sort"
	"strings"
)

// hmacHex signs data with key and returns the lowercase hex digest
func hmacHex(newHash func() hash.Hash, key, data string) string {
	mac := hmac.New(newHash, []byte(key))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func hmacSHA256Hex(key, data string) string {
	return hmacHex(sha256.New, key, data)
}

func hmacSHA512Hex(key, data string) string {
	return hmacHex(sha512.New, key, data)
}

// signatureEqual compares two hex signatures in constant time, ignoring case
func signatureEqual(expected, actual string) bool {
	if expected == "" || actual == "" {
		return false
	}
	return hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(actual)))
}

// sortedQuery encodes params as key=value pairs sorted by key, skipping empty values
// and the excluded keys. Keys and values are form-encoded.
func sortedQuery(params map[string]string, exclude ...string) string {
	skip := make(map[string]struct{}, len(exclude))
	for _, key := range exclude {
		skip[key] = struct{}{}
	}

	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == "" {
			continue
		}
		if _, ok := skip[key]; ok {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(params[key]))
	}
	return strings.Join(parts, "&")
}
