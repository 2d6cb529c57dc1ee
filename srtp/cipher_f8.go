package srtp

import (
	"crypto/cipher"
	"encoding/binary"
)

// f8MaskByte is the fixed padding byte RFC 3711 §4.1.2 uses to extend the session
// salt up to the encryption key's length when deriving the IV' cipher key:
// m = k_e XOR (k_s || 0x55 0x55 ... 0x55).
const f8MaskByte = 0x55

// f8IVPrimeKey derives the key for the "IV' cipher": the session encryption
// key masked by the session salt padded on the right with 0x55 bytes.
func f8IVPrimeKey(encKey, salt []byte) []byte {
	masked := make([]byte, len(encKey))
	for i := range masked {
		maskByte := byte(f8MaskByte)
		if i < len(salt) {
			maskByte = salt[i]
		}
		masked[i] = encKey[i] ^ maskByte
	}
	return masked
}

// f8Stream implements the RFC 3711 §4.1.2 f8 keystream: a chained mode where
// each 16-byte block's keystream depends on the previous block's output.
//
//	S[0]   = 0
//	S[n+1] = E(S[n] XOR IV' XOR J[n])
//	J[n]   = n (as a 128-bit big-endian integer)
//
// The data cipher (keyed with the session encryption key) produces the
// keystream; a separate "IV' cipher" (keyed with the salt-masked encryption
// key, see f8IVPrimeKey) is used once, up front, to derive IV' from the
// packet-specific IV.
type f8Stream struct {
	dataCipher cipher.Block
	ivPrime    [16]byte
	s          [16]byte
	j          uint64
}

func newF8Stream(ivCipher, dataCipher cipher.Block, iv [16]byte) *f8Stream {
	f := &f8Stream{dataCipher: dataCipher}
	ivCipher.Encrypt(f.ivPrime[:], iv[:])
	return f
}

// xorKeyStream XORs payload in place with the f8 keystream, advancing chain
// state for every 16-byte block consumed (including a final short block).
func (f *f8Stream) xorKeyStream(buf []byte) {
	for len(buf) > 0 {
		var x [16]byte
		var jBig [16]byte
		binary.BigEndian.PutUint64(jBig[8:], f.j)
		for i := range x {
			x[i] = f.s[i] ^ f.ivPrime[i] ^ jBig[i]
		}
		f.dataCipher.Encrypt(f.s[:], x[:])

		n := len(buf)
		if n > blockSize {
			n = blockSize
		}
		for i := 0; i < n; i++ {
			buf[i] ^= f.s[i]
		}
		buf = buf[n:]
		f.j++
	}
}

// buildF8IVRTP builds the packet-specific IV for SRTP f8 mode: byte 0 of the
// RTP header zeroed, bytes 1..=11 copied verbatim, and the last 4 bytes set
// to the ROC.
func buildF8IVRTP(rtpHeaderPrefix [12]byte, roc uint32) [16]byte {
	var iv [16]byte
	copy(iv[0:12], rtpHeaderPrefix[:])
	iv[0] = 0
	binary.BigEndian.PutUint32(iv[12:16], roc)
	return iv
}

// buildF8IVRTCP builds the packet-specific IV for SRTCP f8 mode:
// (0,0,0,0, index-with-E-bit big-endian, first 8 bytes of the RTCP header).
func buildF8IVRTCP(indexWithEBit uint32, rtcpHeaderPrefix [8]byte) [16]byte {
	var iv [16]byte
	binary.BigEndian.PutUint32(iv[4:8], indexWithEBit)
	copy(iv[8:16], rtcpHeaderPrefix[:])
	return iv
}
