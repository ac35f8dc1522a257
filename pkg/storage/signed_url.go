package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenInvalid covers malformed tokens and signature mismatches.
	ErrTokenInvalid = errors.New("download token invalid")
	// ErrTokenExpired marks a well-formed token past its expiry.
	ErrTokenExpired = errors.New("download token expired")
)

// SignedURLSigner mints and verifies self-contained download tokens so the
// export endpoint needs no session state: the token itself names the job,
// the file and the deadline, sealed with an HMAC.
//
// Token layout: base64url(jobID \n expiryUnix \n relPath) "." base64url(mac).
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner builds a signer. A non-positive TTL falls back to 24h.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a token for the job's stored file plus its expiry instant.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("signer: jobID and path are required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signer: secret not configured")
	}
	if strings.ContainsRune(jobID, '\n') {
		return "", time.Time{}, fmt.Errorf("signer: jobID must not contain newlines")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	payload := jobID + "\n" + strconv.FormatInt(expiresAt.Unix(), 10) + "\n" + relPath
	token := base64.RawURLEncoding.EncodeToString([]byte(payload)) + "." +
		base64.RawURLEncoding.EncodeToString(s.seal([]byte(payload)))
	return token, expiresAt, nil
}

// Parse verifies the token and returns what it names. With allowExpired the
// deadline check is skipped so cleanup can still resolve stale tokens.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	body, sig, ok := strings.Cut(token, ".")
	if !ok {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	mac, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	if !hmac.Equal(mac, s.seal(payload)) {
		return "", "", time.Time{}, ErrTokenInvalid
	}

	fields := strings.SplitN(string(payload), "\n", 3)
	if len(fields) != 3 || fields[0] == "" || fields[2] == "" {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return "", "", time.Time{}, ErrTokenInvalid
	}
	expiresAt = time.Unix(unix, 0)
	if !allowExpired && s.now().After(expiresAt) {
		return "", "", time.Time{}, ErrTokenExpired
	}
	return fields[0], fields[2], expiresAt, nil
}

func (s *SignedURLSigner) seal(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload) //nolint:errcheck
	return mac.Sum(nil)
}
