package generation

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	volcRegion      = "cn-north-1"
	volcService     = "cv"
	volcAlgorithm   = "HMAC-SHA256"
	volcSignedHdrs  = "content-type;host;x-content-sha256;x-date"
	volcTimeFormat  = "20060102T150405Z"
	volcContentType = "application/json"
)

// volcSigner ลงชื่อ request แบบ HMAC-SHA256 ของ Volcengine OpenAPI
type volcSigner struct {
	accessKey string
	secretKey string
	host      string
}

// sign คืน headers ที่ต้องแนบไปกับ request
func (s volcSigner) sign(method, path string, query url.Values, body []byte, now time.Time) http.Header {
	timestamp := now.UTC().Format(volcTimeFormat)
	date := timestamp[:8]
	payloadHash := sha256Hex(body)

	canonicalHeaders := strings.Join([]string{
		"content-type:" + volcContentType,
		"host:" + s.host,
		"x-content-sha256:" + payloadHash,
		"x-date:" + timestamp,
	}, "\n")

	canonicalRequest := strings.Join([]string{
		method,
		path,
		canonicalQuery(query),
		canonicalHeaders,
		"",
		volcSignedHdrs,
		payloadHash,
	}, "\n")

	scope := fmt.Sprintf("%s/%s/%s/request", date, volcRegion, volcService)
	stringToSign := strings.Join([]string{
		volcAlgorithm,
		timestamp,
		scope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	kDate := hmacSHA256([]byte(s.secretKey), date)
	kRegion := hmacSHA256(kDate, volcRegion)
	kService := hmacSHA256(kRegion, volcService)
	kSigning := hmacSHA256(kService, "request")
	signature := hex.EncodeToString(hmacSHA256(kSigning, stringToSign))

	h := http.Header{}
	h.Set("Content-Type", volcContentType)
	h.Set("Host", s.host)
	h.Set("X-Date", timestamp)
	h.Set("X-Content-Sha256", payloadHash)
	h.Set("Authorization", fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		volcAlgorithm, s.accessKey, scope, volcSignedHdrs, signature))
	return h
}

// canonicalQuery เรียง key และ encode ช่องว่างเป็น %20
func canonicalQuery(q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, escape(k)+"="+escape(q.Get(k)))
	}
	return strings.Join(parts, "&")
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func hmacSHA256(key []byte, msg string) []byte {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(msg))
	return m.Sum(nil)
}
