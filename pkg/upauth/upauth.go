// Package upauth issues short-lived signed credentials that authorize a
// client to upload a file directly to the external media host, without the
// bytes passing through this server.
package upauth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Credentials is the ephemeral token/signature/expire tuple the host accepts.
// It is never persisted; the host enforces single use and the expiry.
type Credentials struct {
	Token     string `json:"token"`
	Signature string `json:"signature"`
	Expire    int64  `json:"expire"`
}

var ErrNoKeyMaterial = errors.New("upload key material not configured")

type Issuer struct {
	publicKey  string
	privateKey string
	ttl        time.Duration

	now      func() time.Time
	newToken func() string
}

func NewIssuer(publicKey, privateKey string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Issuer{
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        ttl,
		now:        time.Now,
		newToken:   func() string { return uuid.New().String() },
	}
}

func (i *Issuer) PublicKey() string { return i.publicKey }

// Issue produces a fresh credential tuple. Pure function of the key material
// and the clock; the private key itself never leaves this package.
func (i *Issuer) Issue() (Credentials, error) {
	if i.privateKey == "" {
		return Credentials{}, ErrNoKeyMaterial
	}
	token := i.newToken()
	expire := i.now().Add(i.ttl).Unix()
	return Credentials{
		Token:     token,
		Signature: Sign(token, expire, i.privateKey),
		Expire:    expire,
	}, nil
}

// Sign computes the host's signature scheme: hex HMAC-SHA1 over the token
// concatenated with the decimal expiry.
func Sign(token string, expire int64, privateKey string) string {
	mac := hmac.New(sha1.New, []byte(privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
