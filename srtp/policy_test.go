package srtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicyValidates(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
}

func TestPolicyValidateRejectsUnknownEncType(t *testing.T) {
	p := DefaultPolicy()
	p.EncType = EncType(99)
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsUnknownAuthType(t *testing.T) {
	p := DefaultPolicy()
	p.AuthType = AuthType(99)
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsAuthNoneWithNonzeroTag(t *testing.T) {
	p := Policy{EncType: EncNone, AuthType: AuthNone, AuthTagLen: 4}
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsBadHMACKeyLen(t *testing.T) {
	p := DefaultPolicy()
	p.AuthKeyLen = 16
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsOversizedTag(t *testing.T) {
	p := DefaultPolicy()
	p.AuthTagLen = 21
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsBadEncKeyLen(t *testing.T) {
	p := DefaultPolicy()
	p.EncKeyLen = 24
	assert.Error(t, p.Validate())
}

func TestPolicyValidateRejectsOversizedSalt(t *testing.T) {
	p := DefaultPolicy()
	p.SaltKeyLen = 15
	assert.Error(t, p.Validate())
}

func TestPolicyValidateAcceptsNullPolicy(t *testing.T) {
	p := Policy{EncType: EncNone, AuthType: AuthHMACSHA1, AuthKeyLen: 20, AuthTagLen: 10}
	assert.NoError(t, p.Validate())
}

func TestEncTypeString(t *testing.T) {
	assert.Equal(t, "AES_CM", EncAESCM.String())
	assert.Equal(t, "TWOFISH_F8", EncTwofishF8.String())
	assert.Equal(t, "UNKNOWN", EncType(99).String())
}
