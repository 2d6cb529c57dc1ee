package srtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthenticatorTagIsDeterministic(t *testing.T) {
	key := make([]byte, 20)
	a := newAuthenticator(AuthHMACSHA1, key, 10)

	m := []byte("authenticated data")
	tag1 := a.tag(m)
	tag2 := a.tag(m)
	assert.Equal(t, tag1, tag2)
	assert.Len(t, tag1, 10)
}

func TestAuthenticatorVerifyDetectsTamper(t *testing.T) {
	key := make([]byte, 20)
	a := newAuthenticator(AuthHMACSHA1, key, 10)

	m := []byte("authenticated data")
	tag := a.tag(m)
	assert.True(t, a.verify(m, tag))

	tampered := append([]byte(nil), tag...)
	tampered[0] ^= 0x01
	assert.False(t, a.verify(m, tampered))

	assert.False(t, a.verify([]byte("different data"), tag))
}

func TestAuthenticatorNoneDisablesAuth(t *testing.T) {
	a := newAuthenticator(AuthNone, nil, 0)
	assert.Nil(t, a.tag([]byte("anything")))
	assert.True(t, a.verify([]byte("anything"), nil))
}
