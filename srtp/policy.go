package srtp

import "github.com/pkg/errors"

// EncType selects the keystream algorithm used to encrypt RTP/RTCP payload.
type EncType int

const (
	EncNone EncType = iota
	EncAESCM
	EncAESF8
	EncTwofishCM
	EncTwofishF8
)

func (t EncType) String() string {
	switch t {
	case EncNone:
		return "NONE"
	case EncAESCM:
		return "AES_CM"
	case EncAESF8:
		return "AES_F8"
	case EncTwofishCM:
		return "TWOFISH_CM"
	case EncTwofishF8:
		return "TWOFISH_F8"
	default:
		return "UNKNOWN"
	}
}

// AuthType selects the algorithm used to authenticate packets.
type AuthType int

const (
	AuthNone AuthType = iota
	AuthHMACSHA1
)

func (t AuthType) String() string {
	switch t {
	case AuthNone:
		return "NONE"
	case AuthHMACSHA1:
		return "HMAC_SHA1"
	default:
		return "UNKNOWN"
	}
}

// Policy is an immutable description of the algorithms and key/tag sizes
// used by a context. It never changes after construction: a context built
// from it snapshots every field it needs.
type Policy struct {
	EncType  EncType
	AuthType AuthType

	EncKeyLen  int // session encryption key length, bytes
	SaltKeyLen int // session salt length, bytes
	AuthKeyLen int // session authentication key length, bytes
	AuthTagLen int // authentication tag length, bytes (0 if AuthType == AuthNone)
}

// DefaultPolicy returns the RFC 3711 "default" profile: AES-CM encryption
// with 128-bit keys, HMAC-SHA1 authentication with an 80-bit tag.
func DefaultPolicy() Policy {
	return Policy{
		EncType:    EncAESCM,
		AuthType:   AuthHMACSHA1,
		EncKeyLen:  16,
		SaltKeyLen: 14,
		AuthKeyLen: 20,
		AuthTagLen: 10,
	}
}

// Validate checks internal consistency of the policy, failing with a wrapped
// PolicyInvalid-class error on contradiction. It does not mutate p.
func (p Policy) Validate() error {
	switch p.EncType {
	case EncNone, EncAESCM, EncAESF8, EncTwofishCM, EncTwofishF8:
	default:
		return errors.Errorf("policy invalid: unknown enc type %d", p.EncType)
	}

	switch p.AuthType {
	case AuthNone:
		if p.AuthTagLen != 0 {
			return errors.Errorf("policy invalid: auth disabled but tag length is %d", p.AuthTagLen)
		}
	case AuthHMACSHA1:
		if p.AuthKeyLen != 20 {
			return errors.Errorf("policy invalid: HMAC-SHA1 requires a 20-byte key, got %d", p.AuthKeyLen)
		}
		if p.AuthTagLen <= 0 || p.AuthTagLen > 20 {
			return errors.Errorf("policy invalid: HMAC-SHA1 tag length %d out of range (0,20]", p.AuthTagLen)
		}
	default:
		return errors.Errorf("policy invalid: unknown auth type %d", p.AuthType)
	}

	if p.EncType != EncNone {
		if p.EncKeyLen != 16 {
			return errors.Errorf("policy invalid: enc type %s requires a 16-byte key, got %d", p.EncType, p.EncKeyLen)
		}
		if p.SaltKeyLen <= 0 || p.SaltKeyLen > 14 {
			return errors.Errorf("policy invalid: salt length %d out of range (0,14]", p.SaltKeyLen)
		}
	}

	return nil
}
