package srtp

import (
	"crypto/aes"
	"crypto/cipher"

	"github.com/pkg/errors"
	"golang.org/x/crypto/twofish"
)

// newBlockCipher constructs the 128-bit block cipher backing the given
// encryption type. AES_CM and AES_F8 share an AES block cipher; TWOFISH_CM
// and TWOFISH_F8 share a Twofish one. Both ciphers have a 16-byte block
// size, which is all the CTR and f8 keystream generators below assume.
func newBlockCipher(t EncType, key []byte) (cipher.Block, error) {
	switch t {
	case EncAESCM, EncAESF8:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, errors.Wrap(err, "srtp: AES key setup")
		}
		return block, nil
	case EncTwofishCM, EncTwofishF8:
		block, err := twofish.NewCipher(key)
		if err != nil {
			return nil, errors.Wrap(err, "srtp: Twofish key setup")
		}
		return block, nil
	case EncNone:
		return nil, nil
	default:
		return nil, errors.Errorf("srtp: unsupported enc type %s", t)
	}
}

const blockSize = 16
