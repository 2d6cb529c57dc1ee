package srtp

import (
	"strconv"

	"github.com/lanikai/srtpguard/internal/logging"
)

// RTPTransformer applies SRTP transform/reverse-transform to packets
// belonging to any number of SSRCs, deriving one SrtpContext per SSRC the
// first time it is seen. A transformer is safe for concurrent use by
// multiple callers handling distinct SSRCs; callers sharing one SSRC across
// goroutines must still serialize, since the underlying context's replay
// state is a critical section — the per-context mutex enforces this,
// but interleaved calls for one SSRC will simply queue rather than race.
//
// No scratch buffer is cached on the transformer: every context method
// allocates its own working slices, so there is nothing here that a
// re-entrant call for a second SSRC could contend over.
type RTPTransformer struct {
	policy   Policy
	template MasterKeyMaterial

	contexts *contextCache
	log      *logging.Logger
}

func newRTPTransformer(policy Policy, template MasterKeyMaterial) *RTPTransformer {
	return &RTPTransformer{
		policy:   policy,
		template: template,
		contexts: newContextCache(),
		log:      srtpLog,
	}
}

// contextFor returns the SrtpContext for ssrc, deriving and inserting one
// from the transformer's template if this is the first packet seen for it.
// Concurrent callers racing on the same new SSRC converge on exactly one
// derivation via singleflight.
func (t *RTPTransformer) contextFor(ssrc uint32) (*SrtpContext, error) {
	if c := t.contexts.get(ssrc); c != nil {
		return c.(*SrtpContext), nil
	}

	v, err := t.contexts.sf.Do(key(ssrc), func() (interface{}, error) {
		if c := t.contexts.get(ssrc); c != nil {
			return c, nil
		}
		c, err := newSrtpContext(ssrc, t.policy, t.template)
		if err != nil {
			return nil, err
		}
		t.contexts.put(ssrc, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SrtpContext), nil
}

// Transform encrypts and authenticates an outgoing RTP packet. Failures here
// (malformed header, policy violation, oversized payload) are real errors,
// not replay/auth drops, and are returned to the caller.
func (t *RTPTransformer) Transform(packet []byte) ([]byte, error) {
	hdr, err := parseRTPHeader(packet)
	if err != nil {
		return nil, err
	}
	ctx, err := t.contextFor(hdr.ssrc)
	if err != nil {
		return nil, err
	}
	return ctx.Transform(packet)
}

// ReverseTransform authenticates and decrypts an incoming SRTP packet. A
// rejected packet is silently dropped: this returns nil with no error, and
// the rejection reason is only visible via Debug logging.
func (t *RTPTransformer) ReverseTransform(packet []byte) []byte {
	hdr, err := parseRTPHeader(packet)
	if err != nil {
		t.log.Debug("rtp: dropping unparsable packet: %v", err)
		return nil
	}
	ctx, err := t.contextFor(hdr.ssrc)
	if err != nil {
		t.log.Debug("rtp: ssrc %d context derivation failed: %v", hdr.ssrc, err)
		return nil
	}
	out, err := ctx.ReverseTransform(packet)
	if err != nil {
		t.log.Debug("rtp: ssrc %d dropped: %v", hdr.ssrc, err)
		return nil
	}
	return out
}

// RTCPTransformer is the SRTCP analog of RTPTransformer.
type RTCPTransformer struct {
	policy   Policy
	template MasterKeyMaterial

	contexts *contextCache
	log      *logging.Logger
}

func newRTCPTransformer(policy Policy, template MasterKeyMaterial) *RTCPTransformer {
	return &RTCPTransformer{
		policy:   policy,
		template: template,
		contexts: newContextCache(),
		log:      srtcpLog,
	}
}

func (t *RTCPTransformer) contextFor(ssrc uint32) (*SrtcpContext, error) {
	if c := t.contexts.get(ssrc); c != nil {
		return c.(*SrtcpContext), nil
	}

	v, err := t.contexts.sf.Do(key(ssrc), func() (interface{}, error) {
		if c := t.contexts.get(ssrc); c != nil {
			return c, nil
		}
		c, err := newSrtcpContext(ssrc, t.policy, t.template)
		if err != nil {
			return nil, err
		}
		t.contexts.put(ssrc, c)
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SrtcpContext), nil
}

func (t *RTCPTransformer) Transform(packet []byte) ([]byte, error) {
	ssrc, err := rtcpSSRC(packet)
	if err != nil {
		return nil, err
	}
	ctx, err := t.contextFor(ssrc)
	if err != nil {
		return nil, err
	}
	return ctx.Transform(packet)
}

func (t *RTCPTransformer) ReverseTransform(packet []byte) []byte {
	ssrc, err := rtcpSSRC(packet)
	if err != nil {
		t.log.Debug("rtcp: dropping unparsable packet: %v", err)
		return nil
	}
	ctx, err := t.contextFor(ssrc)
	if err != nil {
		t.log.Debug("rtcp: ssrc %d context derivation failed: %v", ssrc, err)
		return nil
	}
	out, err := ctx.ReverseTransform(packet)
	if err != nil {
		t.log.Debug("rtcp: ssrc %d dropped: %v", ssrc, err)
		return nil
	}
	return out
}

func key(ssrc uint32) string {
	return strconv.FormatUint(uint64(ssrc), 10)
}
