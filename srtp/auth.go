package srtp

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"hash"
	"sync"
)

// authenticator computes a truncated authentication tag over an
// authenticated-data buffer. Implementations must be safe for concurrent use
// by distinct authenticators derived from distinct keys; a single
// authenticator is not expected to be called concurrently (it belongs to one
// context, which the caller already serializes).
type authenticator struct {
	tagLen int
	pool   *sync.Pool // of hash.Hash, nil when AuthType == AuthNone
}

func newAuthenticator(t AuthType, key []byte, tagLen int) *authenticator {
	a := &authenticator{tagLen: tagLen}
	if t == AuthHMACSHA1 {
		keyCopy := append([]byte(nil), key...)
		a.pool = &sync.Pool{
			New: func() interface{} {
				return hmac.New(sha1.New, keyCopy)
			},
		}
	}
	return a
}

// tag computes the truncated authentication tag over m. Returns nil when
// authentication is disabled.
func (a *authenticator) tag(m []byte) []byte {
	if a.pool == nil {
		return nil
	}
	mac := a.pool.Get().(hash.Hash)
	mac.Write(m)
	tag := mac.Sum(nil)[:a.tagLen]
	mac.Reset()
	a.pool.Put(mac)
	return tag
}

// verify recomputes the tag over m and compares it against want in constant
// time, regardless of where a mismatch occurs. The source this is grounded
// on (an early-exit continue/else-return loop) was explicitly flagged as
// non-constant-time; subtle.ConstantTimeCompare is used instead.
func (a *authenticator) verify(m, want []byte) bool {
	if a.pool == nil {
		return len(want) == 0
	}
	got := a.tag(m)
	return subtle.ConstantTimeCompare(got, want) == 1
}
