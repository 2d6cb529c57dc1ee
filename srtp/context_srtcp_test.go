package srtp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSRTCPPair(t *testing.T, policy Policy, ssrc uint32) (*SrtcpContext, *SrtcpContext) {
	m := testMasterMaterial()
	sender, err := newSrtcpContext(ssrc, policy, m)
	assert.NoError(t, err)
	receiver, err := newSrtcpContext(ssrc, policy, m)
	assert.NoError(t, err)
	return sender, receiver
}

func rtcpPacketWithSSRC(ssrc uint32, body []byte, tagHeadroom int) []byte {
	buf := make([]byte, rtcpFixedHeaderSize+len(body), rtcpFixedHeaderSize+len(body)+srtcpTrailerSize+tagHeadroom)
	buf[0] = 0x81
	buf[1] = 200 // RTCP SR
	buf[2] = 0x00
	buf[3] = byte(len(body)/4 + 1)
	buf[4] = byte(ssrc >> 24)
	buf[5] = byte(ssrc >> 16)
	buf[6] = byte(ssrc >> 8)
	buf[7] = byte(ssrc)
	copy(buf[rtcpFixedHeaderSize:], body)
	return buf
}

// TestSRTCPRoundTrip round-trips an 8-byte
// fixed header plus a 12-byte body, encrypted, trailer E-bit set, 10-byte tag.
func TestSRTCPRoundTrip(t *testing.T) {
	policy := DefaultPolicy()
	sender, receiver := newSRTCPPair(t, policy, 1)

	body := make([]byte, 12)
	for i := range body {
		body[i] = byte(i)
	}
	packet := rtcpPacketWithSSRC(1, body, policy.AuthTagLen)

	out, err := sender.Transform(packet)
	assert.NoError(t, err)
	assert.Len(t, out, rtcpFixedHeaderSize+len(body)+srtcpTrailerSize+policy.AuthTagLen)

	trailerStart := len(out) - policy.AuthTagLen - srtcpTrailerSize
	trailer := uint32(out[trailerStart])<<24 | uint32(out[trailerStart+1])<<16 |
		uint32(out[trailerStart+2])<<8 | uint32(out[trailerStart+3])
	assert.Equal(t, uint32(0x80000001), trailer)

	plaintext, err := receiver.ReverseTransform(out)
	assert.NoError(t, err)
	assert.Equal(t, rtcpFixedHeaderSize+len(body), len(plaintext))
	assert.Equal(t, body, plaintext[rtcpFixedHeaderSize:])
}

func TestSRTCPReplayRejected(t *testing.T) {
	policy := DefaultPolicy()
	sender, receiver := newSRTCPPair(t, policy, 42)

	body := []byte("rtcp-report-body")
	var accepted [][]byte
	for i := 0; i < 66; i++ {
		out, err := sender.Transform(rtcpPacketWithSSRC(42, body, policy.AuthTagLen))
		assert.NoError(t, err)
		accepted = append(accepted, out)
	}

	for i, packet := range accepted {
		_, err := receiver.ReverseTransform(packet)
		assert.NoError(t, err, "packet %d should be accepted", i+1)
	}

	// index 66 is the high-water mark; index 2 is still inside the 64-wide
	// window (delta = 2-66 = -64) and was already seen, so it's a duplicate.
	_, err := receiver.ReverseTransform(accepted[1])
	assert.ErrorIs(t, err, ErrReplayDup)

	// index 1 is one past the window (delta = 1-66 = -65), so it's too old
	// rather than a duplicate.
	_, err = receiver.ReverseTransform(accepted[0])
	assert.ErrorIs(t, err, ErrReplayOld)
}

// TestSRTCPAuthTamperingOnFirstPacketRejected verifies the same invariant as
// TestAuthTamperingRejected (srtp): a tampered first packet must be dropped
// without marking the context as having seen any index.
func TestSRTCPAuthTamperingOnFirstPacketRejected(t *testing.T) {
	policy := DefaultPolicy()
	sender, receiver := newSRTCPPair(t, policy, 9)

	out, err := sender.Transform(rtcpPacketWithSSRC(9, []byte("tamper-me!!!"), policy.AuthTagLen))
	assert.NoError(t, err)

	tampered := make([]byte, len(out))
	copy(tampered, out)
	tampered[len(tampered)-1] ^= 0x01

	_, err = receiver.ReverseTransform(tampered)
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.False(t, receiver.indexSeen)
	assert.Equal(t, uint32(0), receiver.receivedIndex)
	assert.Equal(t, uint64(0), receiver.replayWindow)

	// The untampered packet must still be accepted afterward, and become the
	// context's first accepted index.
	_, err = receiver.ReverseTransform(out)
	assert.NoError(t, err)
	assert.True(t, receiver.indexSeen)
	assert.Equal(t, uint32(1), receiver.receivedIndex)
}

func TestSRTCPNullPolicyRoundTrip(t *testing.T) {
	policy := Policy{EncType: EncNone, AuthType: AuthHMACSHA1, AuthKeyLen: 20, AuthTagLen: 10}
	sender, receiver := newSRTCPPair(t, policy, 5)

	body := []byte("cleartext rtcp body")
	packet := rtcpPacketWithSSRC(5, body, policy.AuthTagLen)

	out, err := sender.Transform(packet)
	assert.NoError(t, err)
	assert.Equal(t, body, out[rtcpFixedHeaderSize:rtcpFixedHeaderSize+len(body)])

	plaintext, err := receiver.ReverseTransform(out)
	assert.NoError(t, err)
	assert.Equal(t, body, plaintext[rtcpFixedHeaderSize:])
}
