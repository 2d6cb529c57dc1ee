package srtp

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDeriveKeyRFC3711Vector pins deriveKey to the RFC 3711 §4.3.1 example
// key derivation: a 128-bit master key and 112-bit master salt producing a
// known SRTP session encryption key (label 0).
func TestDeriveKeyRFC3711Vector(t *testing.T) {
	masterKey, err := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	assert.NoError(t, err)
	masterSalt, err := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")
	assert.NoError(t, err)

	key, err := deriveKey(masterKey, masterSalt, labelSRTPEncryption, 16)
	assert.NoError(t, err)

	expected, err := hex.DecodeString("C61E7A93744F39EE10734AFE3FF7A087")
	assert.NoError(t, err)
	assert.Equal(t, expected, key)
}

func TestDeriveKeyIsDeterministicAndLabelSensitive(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	a, err := deriveKey(masterKey, masterSalt, labelSRTPEncryption, 16)
	assert.NoError(t, err)
	b, err := deriveKey(masterKey, masterSalt, labelSRTPEncryption, 16)
	assert.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := deriveKey(masterKey, masterSalt, labelSRTPAuth, 16)
	assert.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDeriveSessionKeysLengths(t *testing.T) {
	m := MasterKeyMaterial{
		Key:  make([]byte, 16),
		Salt: make([]byte, 14),
	}
	p := DefaultPolicy()

	keys, err := deriveSessionKeys(m, p, labelSRTPEncryption, labelSRTPAuth, labelSRTPSalt)
	assert.NoError(t, err)
	assert.Len(t, keys.encKey, p.EncKeyLen)
	assert.Len(t, keys.authKey, p.AuthKeyLen)
	assert.Len(t, keys.salt, p.SaltKeyLen)
}
