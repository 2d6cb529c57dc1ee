package srtp

import (
	"crypto/cipher"
	"encoding/binary"
	"sync"

	"github.com/lanikai/srtpguard/internal/logging"
)

var srtpLog = logging.DefaultLogger.WithTag("srtp")

// replayWindowSize is the width, in bits, of the replay bitmask.
const replayWindowSize = 64

// SrtpContext is the per-SSRC cryptographic and replay state for one
// direction (send or receive) of one RTP stream. A single context is not
// safe for concurrent packet processing of the same SSRC: callers must
// serialize via the embedded mutex, or by dedicating one goroutine to the
// context.
type SrtpContext struct {
	mu sync.Mutex

	ssrc   uint32
	policy Policy
	keys   sessionKeys

	block   cipher.Block // data cipher: AES or Twofish, keyed with keys.encKey
	ivPrime cipher.Block // f8 IV' cipher, nil unless policy.EncType is an f8 variant
	auth    *authenticator
	log     *logging.Logger

	roc          uint32
	lastSeq      uint16
	seqSeen      bool
	replayWindow uint64

	packetsAccepted uint64
	packetsRejected uint64

	closed bool
}

// newSrtpContext derives session keys from m and builds the ciphers named
// by policy. m is not retained; the caller's copy may be scrubbed by its
// owner (e.g. an Engine template) independently of this context's own copy.
func newSrtpContext(ssrc uint32, policy Policy, m MasterKeyMaterial) (*SrtpContext, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	keys, err := deriveSessionKeys(m, policy, labelSRTPEncryption, labelSRTPAuth, labelSRTPSalt)
	if err != nil {
		return nil, err
	}

	c := &SrtpContext{
		ssrc:   ssrc,
		policy: policy,
		keys:   keys,
		auth:   newAuthenticator(policy.AuthType, keys.authKey, policy.AuthTagLen),
		log:    srtpLog,
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

// Transform encrypts packet's RTP payload in place and appends the
// authentication tag (if enabled), advancing the context's ROC. The tag is
// appended to packet, so it lands in packet's backing array when its
// capacity has room and in a new allocation otherwise.
func (c *SrtpContext) Transform(packet []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	hdr, err := parseRTPHeader(packet)
	if err != nil {
		return nil, err
	}

	index := (uint64(c.roc) << 16) | uint64(hdr.sequence)
	payload := packet[hdr.headerLength():]
	if err := c.cryptPayload(payload, packet, hdr.sequence, uint32(index>>16)); err != nil {
		return nil, err
	}

	out := packet
	if tagLen := c.policy.AuthTagLen; tagLen > 0 {
		authed := make([]byte, len(out)+4)
		copy(authed, out)
		binary.BigEndian.PutUint32(authed[len(out):], c.roc)
		tag := c.auth.tag(authed)
		out = append(out, tag...)
	}

	if hdr.sequence == 0xFFFF {
		c.roc++ // wraps mod 2^32 by virtue of uint32 overflow
	}
	c.packetsAccepted++

	return out, nil
}

// ReverseTransform authenticates and decrypts a received SRTP packet,
// reconstructing the 48-bit packet index per RFC 3711 §3.3.1 and enforcing
// the replay window. On any rejection it returns (nil, err) without mutating
// the context's accepted-index state: a dropped packet must
// never perturb future replay decisions.
func (c *SrtpContext) ReverseTransform(packet []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	hdr, err := parseRTPHeader(packet)
	if err != nil {
		return nil, err
	}

	tagLen := c.policy.AuthTagLen
	if len(packet) < hdr.headerLength()+tagLen {
		c.packetsRejected++
		return nil, ErrShortPacket
	}

	seq := hdr.sequence
	firstPacket := !c.seqSeen

	// baseSeq stands in for c.lastSeq when computing the tentative guess
	// below, without committing anything to context state yet: a packet
	// that is ultimately rejected (short, replayed, or unauthenticated)
	// must leave seqSeen/lastSeq exactly as they were.
	baseSeq := c.lastSeq
	if firstPacket {
		baseSeq = seq
	}

	guessedROC, guessedIndex := guessIndex(c.roc, baseSeq, seq)
	if guessedIndex < 0 {
		// A negative guessed index means the reconstructed ROC underflowed
		// below zero: no legitimate 48-bit packet index can be negative, so
		// this packet predates anything this context could have sent.
		c.log.Debug("srtp: ssrc %d seq %d rejected (roc underflow)", c.ssrc, seq)
		c.packetsRejected++
		return nil, ErrReplayOld
	}

	local := int64(uint64(c.roc)<<16 | uint64(baseSeq))
	delta := guessedIndex - local
	if !firstPacket && delta == 0 {
		c.log.Debug("srtp: ssrc %d seq %d rejected (replay of current)", c.ssrc, seq)
		c.packetsRejected++
		return nil, ErrReplayDup
	}
	if delta < 0 {
		negDelta := -delta
		if negDelta > replayWindowSize {
			c.log.Debug("srtp: ssrc %d seq %d rejected (too old, delta=%d)", c.ssrc, seq, delta)
			c.packetsRejected++
			return nil, ErrReplayOld
		}
		if c.replayWindow&(1<<uint(negDelta-1)) != 0 {
			c.log.Debug("srtp: ssrc %d seq %d rejected (replay)", c.ssrc, seq)
			c.packetsRejected++
			return nil, ErrReplayDup
		}
	}

	bodyEnd := len(packet) - tagLen
	if tagLen > 0 {
		authed := make([]byte, bodyEnd+4)
		copy(authed, packet[:bodyEnd])
		binary.BigEndian.PutUint32(authed[bodyEnd:], guessedROC)
		if !c.auth.verify(authed, packet[bodyEnd:]) {
			c.log.Debug("srtp: ssrc %d seq %d rejected (auth)", c.ssrc, seq)
			c.packetsRejected++
			return nil, ErrAuthFailed
		}
	}

	payload := packet[hdr.headerLength():bodyEnd]
	if err := c.cryptPayload(payload, packet[:bodyEnd], seq, guessedROC); err != nil {
		c.packetsRejected++
		return nil, err
	}

	c.updateReplayState(delta, firstPacket, guessedROC, seq)
	c.packetsAccepted++

	return packet[:bodyEnd], nil
}

// updateReplayState records a successfully authenticated packet's index in
// the replay window and advances the context's (roc, last_seq) high-water
// mark when the packet was the newest seen so far.
//
// The window's bit 0 represents the index one below the current high-water
// mark, bit 63 the index 64 below it; the high-water mark itself is never
// stored in the bitmap (delta == 0 is rejected before this point). A packet
// that advances the high-water mark by delta shifts every existing bit up
// by delta and marks the previous high-water mark at its new position,
// delta-1. This indexing (one off from the naive `1 << (unsigned)(-delta)`
// some implementations use, which cannot represent the oldest in-window
// index) is what makes the window's rejection boundary land exactly at 64
// packets back rather than 63.
func (c *SrtpContext) updateReplayState(delta int64, firstPacket bool, guessedROC uint32, seq uint16) {
	if firstPacket {
		// Nothing was sent before this packet: it becomes the high-water
		// mark outright, with an empty replay window behind it.
		c.seqSeen = true
		c.roc = guessedROC
		c.lastSeq = seq
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
		c.roc = guessedROC
		c.lastSeq = seq
		return
	}

	negDelta := uint64(-delta)
	c.replayWindow |= 1 << (negDelta - 1)
}

// cryptPayload encrypts/decrypts payload in place (the transform is
// symmetric XOR keystream for every mode, including f8). fullHeader is the
// packet bytes up to and including the RTP header (used to seed the f8 IV);
// roc is the ROC associated with this packet's index.
func (c *SrtpContext) cryptPayload(payload, fullHeader []byte, seq uint16, roc uint32) error {
	if c.policy.EncType == EncNone {
		return nil
	}

	index := (uint64(roc) << 16) | uint64(seq)

	switch c.policy.EncType {
	case EncAESCM, EncTwofishCM:
		iv := buildCTRIV(c.keys.salt, c.ssrc, index)
		return ctrXORKeyStream(c.block, iv, payload)
	case EncAESF8, EncTwofishF8:
		prefix := rtpHeaderPrefix12(fullHeader)
		iv := buildF8IVRTP(prefix, roc)
		newF8Stream(c.ivPrime, c.block, iv).xorKeyStream(payload)
		return nil
	default:
		return nil
	}
}

// guessIndex reconstructs the 48-bit packet index for a received sequence
// number, per RFC 3711 §3.3.1 / Appendix A.
//
// guessedIndex is returned as a signed int64, not masked back into uint64:
// when the guessed ROC underflows below zero (a packet claiming to precede
// roc 0), the caller needs to see that as a genuinely negative index rather
// than having it silently wrap to a huge positive one, which is the signed-
// arithmetic hazard this computation must not fall into.
func guessIndex(roc uint32, lastSeq, seq uint16) (guessedROC uint32, guessedIndex int64) {
	v := int64(lastSeq)
	s := int64(seq)
	r := int64(roc)

	var gr int64
	switch {
	case v < 32768:
		if s-v > 32768 {
			gr = r - 1
		} else {
			gr = r
		}
	default:
		if v-32768 > s {
			gr = r + 1
		} else {
			gr = r
		}
	}

	guessedROC = uint32(gr) // meaningful only when gr is in [0, 2^32); see guessedIndex < 0 check at call sites
	guessedIndex = (gr << 16) | s
	return
}

// Close scrubs this context's session keys. Subsequent Transform/
// ReverseTransform calls return ErrClosed.
func (c *SrtpContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.keys.scrub()
	c.closed = true
}

// Stats returns best-effort accept/reject counters for diagnostics. Never
// consulted for correctness decisions.
func (c *SrtpContext) Stats() (accepted, rejected uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.packetsAccepted, c.packetsRejected
}
