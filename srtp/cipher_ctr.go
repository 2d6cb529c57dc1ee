package srtp

import (
	"crypto/cipher"
	"encoding/binary"

	"github.com/pkg/errors"
)

// maxCTRBlocks is the number of 16-byte blocks addressable by the 16-bit
// counter occupying the last two bytes of the CTR IV (RFC 3711 §4.1.1).
// Payloads requiring more blocks than this would wrap the counter into the
// SSRC/index-derived portion of the IV and reuse keystream, so they are
// rejected instead.
const maxCTRBlocks = 1 << 16

// buildCTRIV constructs the 16-byte SRTP/SRTCP CTR IV:
//
//	bytes 0..=3  : salt[0..=3]
//	bytes 4..=7  : salt[4..=7] XOR ssrc (big-endian)
//	bytes 8..=13 : salt[8..=13] XOR index (big-endian, 48 or 31 bits)
//	bytes 14..=15: zero (block counter, incremented per block by CTR mode)
func buildCTRIV(salt []byte, ssrc uint32, index uint64) [16]byte {
	var iv [16]byte
	copy(iv[:], padSalt(salt))

	var ssrcBuf [4]byte
	binary.BigEndian.PutUint32(ssrcBuf[:], ssrc)
	for i := range ssrcBuf {
		iv[4+i] ^= ssrcBuf[i]
	}

	var idxBuf [6]byte
	putUint48(idxBuf[:], index)
	for i := range idxBuf {
		iv[8+i] ^= idxBuf[i]
	}

	return iv
}

// padSalt right-pads salt with zero bytes to the full 14-byte RFC 3711 salt
// length used by the CTR IV layout, regardless of the policy's configured
// salt length (shorter salts are valid; the remaining IV bytes are simply
// left at their zero default).
func padSalt(salt []byte) []byte {
	if len(salt) >= 14 {
		return salt[:14]
	}
	padded := make([]byte, 14)
	copy(padded, salt)
	return padded
}

func putUint48(b []byte, v uint64) {
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// ctrXORKeyStream XORs the keystream generated by block under iv against buf
// in place, checking the SRTP-specific 16-bit block counter bound first.
func ctrXORKeyStream(block cipher.Block, iv [16]byte, buf []byte) error {
	blocks := (len(buf) + blockSize - 1) / blockSize
	if blocks > maxCTRBlocks {
		return errors.Wrapf(ErrPayloadTooLarge, "%d blocks exceeds CTR counter range", blocks)
	}
	cipher.NewCTR(block, iv[:]).XORKeyStream(buf, buf)
	return nil
}

// ctrKeystream fills dst with keystream bytes (dst is assumed zeroed, as is
// the case for freshly-allocated key-derivation output buffers).
func ctrKeystream(block cipher.Block, iv [16]byte, dst []byte) {
	cipher.NewCTR(block, iv[:]).XORKeyStream(dst, dst)
}
