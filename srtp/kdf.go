package srtp

// Key Derivation Function described in RFC 3711 §4.3: session encryption,
// authentication, and salting keys for both SRTP and SRTCP are all derived
// from a single master key/salt pair via the same AES-CM-keyed PRF,
// regardless of which cipher the policy selects for payload encryption
// (RFC 3711 §4.3.3 fixes the KDF's PRF as AES-CM).
//
// Keys are derived once, at context construction; there is no periodic
// re-keying or key-derivation rate to track.

import "crypto/aes"

const (
	labelSRTPEncryption  = 0
	labelSRTPAuth        = 1
	labelSRTPSalt        = 2
	labelSRTCPEncryption = 3
	labelSRTCPAuth       = 4
	labelSRTCPSalt       = 5
)

// deriveKey produces `length` bytes of key material for the given label:
//
//	IV      = masterSalt padded to 14 bytes, with byte 7 XORed by label
//	IV[14:] = 0
//	output  = AES-CM-keystream(masterKey, IV, length)
func deriveKey(masterKey, masterSalt []byte, label byte, length int) ([]byte, error) {
	block, err := aes.NewCipher(masterKey)
	if err != nil {
		return nil, err
	}

	var iv [16]byte
	copy(iv[:14], padSalt(masterSalt))
	iv[7] ^= label

	out := make([]byte, length)
	ctrKeystream(block, iv, out)
	return out, nil
}

// deriveSessionKeys derives the three session keys (enc, auth, salt) for one
// direction (SRTP or SRTCP, selected by the label triple) from master
// material and a policy. Called exactly once, at context construction.
func deriveSessionKeys(m MasterKeyMaterial, p Policy, encLabel, authLabel, saltLabel byte) (sessionKeys, error) {
	var keys sessionKeys
	var err error

	encLen := p.EncKeyLen
	if p.EncType == EncNone {
		encLen = 16 // still derive a key so NULL policies can be swapped in place
	}
	if keys.encKey, err = deriveKey(m.Key, m.Salt, encLabel, encLen); err != nil {
		return sessionKeys{}, err
	}

	authLen := p.AuthKeyLen
	if p.AuthType == AuthNone {
		authLen = 20
	}
	if keys.authKey, err = deriveKey(m.Key, m.Salt, authLabel, authLen); err != nil {
		return sessionKeys{}, err
	}

	saltLen := p.SaltKeyLen
	if saltLen == 0 {
		saltLen = 14
	}
	if keys.salt, err = deriveKey(m.Key, m.Salt, saltLabel, saltLen); err != nil {
		return sessionKeys{}, err
	}

	return keys, nil
}
