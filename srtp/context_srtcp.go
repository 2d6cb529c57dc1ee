package srtp

import (
	"crypto/cipher"
	"encoding/binary"
	"sync"

	"github.com/lanikai/srtpguard/internal/wire"
)

var srtcpLog = srtpLog.WithTag("srtcp")

// srtcpEBit marks an SRTCP trailer's encryption flag, the top bit of the
// 4-byte (E || index) field appended after the RTCP payload.
const srtcpEBit = 0x8000_0000
const srtcpIndexMask = 0x7FFF_FFFF
const srtcpTrailerSize = 4

// SrtcpContext is the per-SSRC state for one direction of one SRTCP stream.
// Structurally parallel to SrtpContext (both share the replay-window
// rule and auth/crypt primitives) but keyed with distinct session material
// and indexed by a flat 31-bit counter instead of a 16-bit sequence plus ROC.
type SrtcpContext struct {
	mu sync.Mutex

	ssrc   uint32
	policy Policy
	keys   sessionKeys

	block   cipher.Block
	ivPrime cipher.Block
	auth    *authenticator

	sentIndex     uint32
	receivedIndex uint32
	indexSeen     bool
	replayWindow  uint64

	packetsAccepted uint64
	packetsRejected uint64

	closed bool
}

func newSrtcpContext(ssrc uint32, policy Policy, m MasterKeyMaterial) (*SrtcpContext, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	keys, err := deriveSessionKeys(m, policy, labelSRTCPEncryption, labelSRTCPAuth, labelSRTCPSalt)
	if err != nil {
		return nil, err
	}

	c := &SrtcpContext{
		ssrc:   ssrc,
		policy: policy,
		keys:   keys,
		auth:   newAuthenticator(policy.AuthType, keys.authKey, policy.AuthTagLen),
	}

	if policy.EncType != EncNone {
		c.block, err = newBlockCipher(policy.EncType, keys.encKey)
		if err != nil {
			return nil, err
		}
		if policy.EncType == EncAESF8 || policy.EncType == EncTwofishF8 {
			ivKey := f8IVPrimeKey(keys.encKey, keys.salt)
			c.ivPrime, err = newBlockCipher(policy.EncType, ivKey)
			if err != nil {
				return nil, err
			}
		}
	}

	return c, nil
}

// Transform encrypts an RTCP compound packet's body (everything after the
// 8-byte fixed header) in place, appends the (E, index) trailer and the
// authentication tag, and advances sent_index.
func (c *SrtcpContext) Transform(packet []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	if len(packet) < rtcpFixedHeaderSize {
		return nil, ErrShortPacket
	}

	c.sentIndex++
	c.sentIndex &= srtcpIndexMask

	encrypted := c.policy.EncType != EncNone
	if encrypted {
		payload := packet[rtcpFixedHeaderSize:]
		if err := c.cryptPayload(payload, packet, c.sentIndex); err != nil {
			return nil, err
		}
	}

	trailerValue := c.sentIndex
	if encrypted {
		trailerValue |= srtcpEBit
	}

	out := make([]byte, len(packet)+srtcpTrailerSize)
	w := wire.NewWriter(out)
	if err := w.WriteSlice(packet); err != nil {
		return nil, err
	}
	w.WriteUint32(trailerValue)

	if tagLen := c.policy.AuthTagLen; tagLen > 0 {
		tag := c.auth.tag(out)
		out = append(out, tag...)
	}

	c.packetsAccepted++
	return out, nil
}

// ReverseTransform authenticates and decrypts a received SRTCP packet,
// enforcing the same replay-window discipline as SrtpContext.ReverseTransform
// over the flat 31-bit index.
func (c *SrtcpContext) ReverseTransform(packet []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	tagLen := c.policy.AuthTagLen
	minLen := rtcpFixedHeaderSize + srtcpTrailerSize + tagLen
	if len(packet) < minLen {
		c.packetsRejected++
		return nil, ErrShortPacket
	}

	tagStart := len(packet) - tagLen
	trailerStart := tagStart - srtcpTrailerSize
	trailer := binary.BigEndian.Uint32(packet[trailerStart:tagStart])
	index := trailer & srtcpIndexMask
	encrypted := trailer&srtcpEBit != 0

	firstPacket := !c.indexSeen

	// baseIndex stands in for c.receivedIndex while computing the tentative
	// delta below, without committing anything to context state yet: a
	// packet that is ultimately rejected (short, replayed, or unauthenticated)
	// must leave indexSeen/receivedIndex exactly as they were.
	baseIndex := c.receivedIndex
	if firstPacket {
		baseIndex = index
	}

	delta := int64(index) - int64(baseIndex)
	if !firstPacket && delta == 0 {
		srtcpLog.Debug("srtcp: ssrc %d index %d rejected (replay of current)", c.ssrc, index)
		c.packetsRejected++
		return nil, ErrReplayDup
	}
	if delta < 0 {
		negDelta := -delta
		if negDelta > replayWindowSize {
			srtcpLog.Debug("srtcp: ssrc %d index %d rejected (too old, delta=%d)", c.ssrc, index, delta)
			c.packetsRejected++
			return nil, ErrReplayOld
		}
		if c.replayWindow&(1<<uint(negDelta-1)) != 0 {
			srtcpLog.Debug("srtcp: ssrc %d index %d rejected (replay)", c.ssrc, index)
			c.packetsRejected++
			return nil, ErrReplayDup
		}
	}

	if tagLen > 0 {
		if !c.auth.verify(packet[:trailerStart+srtcpTrailerSize], packet[tagStart:]) {
			srtcpLog.Debug("srtcp: ssrc %d index %d rejected (auth)", c.ssrc, index)
			c.packetsRejected++
			return nil, ErrAuthFailed
		}
	}

	if encrypted {
		payload := packet[rtcpFixedHeaderSize:trailerStart]
		if err := c.cryptPayload(payload, packet[:trailerStart], index); err != nil {
			c.packetsRejected++
			return nil, err
		}
	}

	c.updateReplayState(delta, firstPacket, index)
	c.packetsAccepted++
	return packet[:trailerStart], nil
}

// updateReplayState mirrors SrtpContext.updateReplayState's bit convention:
// bit 0 is the index one below the current high-water mark, bit 63 is 64
// below it, and the high-water mark itself is never stored in the bitmap.
func (c *SrtcpContext) updateReplayState(delta int64, firstPacket bool, index uint32) {
	if firstPacket {
		// Nothing was received before this packet: it becomes the high-water
		// mark outright, with an empty replay window behind it.
		c.indexSeen = true
		c.receivedIndex = index
		return
	}

	if delta > 0 {
		shift := uint64(delta)
		if shift > replayWindowSize {
			c.replayWindow = 0
		} else {
			c.replayWindow <<= shift
			c.replayWindow |= 1 << (shift - 1)
		}
		c.receivedIndex = index
		return
	}

	negDelta := uint64(-delta)
	c.replayWindow |= 1 << (negDelta - 1)
}

func (c *SrtcpContext) cryptPayload(payload, fullHeader []byte, index uint32) error {
	switch c.policy.EncType {
	case EncAESCM, EncTwofishCM:
		iv := buildCTRIV(c.keys.salt, c.ssrc, uint64(index))
		return ctrXORKeyStream(c.block, iv, payload)
	case EncAESF8, EncTwofishF8:
		prefix := rtcpHeaderPrefix8(fullHeader)
		iv := buildF8IVRTCP(index|srtcpEBit, prefix)
		newF8Stream(c.ivPrime, c.block, iv).xorKeyStream(payload)
		return nil
	default:
		return nil
	}
}

// Close scrubs this context's session keys.
func (c *SrtcpContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.keys.scrub()
	c.closed = true
}

// Stats returns best-effort accept/reject counters for diagnostics.
func (c *SrtcpContext) Stats() (accepted, rejected uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.packetsAccepted, c.packetsRejected
}
