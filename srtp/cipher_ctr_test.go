package srtp

import (
	"crypto/aes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCTRKeystreamMatchesBlockEncrypt exercises the literal CTR scenario
// encrypting 16 zero bytes with AES-CM must be identical to
// a single raw block-cipher encryption of the constructed IV, since XORing
// a zero plaintext with a keystream is the identity and AES-CTR's first
// block keystream is exactly E(IV).
func TestCTRKeystreamMatchesBlockEncrypt(t *testing.T) {
	masterKey, _ := hex.DecodeString("E1F97A0D3E018BE0D64FA32C06DE4139")
	masterSalt, _ := hex.DecodeString("0EC675AD498AFEEBB6960B3AABE6")

	sessionKey, err := deriveKey(masterKey, masterSalt, labelSRTPEncryption, 16)
	assert.NoError(t, err)
	sessionSalt, err := deriveKey(masterKey, masterSalt, labelSRTPSalt, 14)
	assert.NoError(t, err)

	block, err := aes.NewCipher(sessionKey)
	assert.NoError(t, err)

	const ssrc = uint32(1)
	const index = uint64(0)
	iv := buildCTRIV(sessionSalt, ssrc, index)

	plaintext := make([]byte, 16)
	ciphertext := make([]byte, 16)
	copy(ciphertext, plaintext)
	assert.NoError(t, ctrXORKeyStream(block, iv, ciphertext))

	var expected [16]byte
	block.Encrypt(expected[:], iv[:])

	assert.Equal(t, expected[:], ciphertext)
	assert.NotEqual(t, plaintext, ciphertext) // keystream is not all-zero
}

func TestCTRIVLayout(t *testing.T) {
	salt := make([]byte, 14)
	for i := range salt {
		salt[i] = byte(i + 1)
	}

	iv := buildCTRIV(salt, 0x00000000, 0)
	assert.Equal(t, salt[:8], iv[:8])
	assert.Equal(t, salt[8:14], iv[8:14])
	assert.Equal(t, [2]byte{0, 0}, [2]byte{iv[14], iv[15]})

	iv2 := buildCTRIV(salt, 0xFFFFFFFF, 0)
	assert.NotEqual(t, iv[4:8], iv2[4:8])
}

func TestCTRPayloadTooLarge(t *testing.T) {
	key := make([]byte, 16)
	block, err := aes.NewCipher(key)
	assert.NoError(t, err)

	var iv [16]byte
	big := make([]byte, (maxCTRBlocks+1)*blockSize)
	err = ctrXORKeyStream(block, iv, big)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}
