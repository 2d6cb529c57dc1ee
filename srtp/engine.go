package srtp

// TransformEngine owns the master key material and policies for one
// negotiated crypto suite and hands out RTPTransformer/RTCPTransformer
// instances that derive per-SSRC contexts from it on demand.
type TransformEngine struct {
	srtpPolicy  Policy
	srtcpPolicy Policy

	srtpTemplate  MasterKeyMaterial
	srtcpTemplate MasterKeyMaterial

	closed bool
}

// NewEngine builds a TransformEngine from negotiated master key material and
// per-direction policies. masterKey/masterSalt are cloned; the caller may
// scrub or discard its own copies afterward.
func NewEngine(masterKey, masterSalt []byte, srtpPolicy, srtcpPolicy Policy) (*TransformEngine, error) {
	if err := srtpPolicy.Validate(); err != nil {
		return nil, err
	}
	if err := srtcpPolicy.Validate(); err != nil {
		return nil, err
	}

	m := MasterKeyMaterial{Key: masterKey, Salt: masterSalt}
	return &TransformEngine{
		srtpPolicy:    srtpPolicy,
		srtcpPolicy:   srtcpPolicy,
		srtpTemplate:  m.clone(),
		srtcpTemplate: m.clone(),
	}, nil
}

// RTPTransformer returns a new transformer for SRTP packets, sharing this
// engine's master material and policy. Distinct transformers derive
// independent per-SSRC contexts even for the same SSRC; pair one
// RTPTransformer for sending with another for receiving.
func (e *TransformEngine) RTPTransformer() *RTPTransformer {
	return newRTPTransformer(e.srtpPolicy, e.srtpTemplate)
}

// RTCPTransformer returns a new transformer for SRTCP packets.
func (e *TransformEngine) RTCPTransformer() *RTCPTransformer {
	return newRTCPTransformer(e.srtcpPolicy, e.srtcpTemplate)
}

// Close scrubs the engine's template master material. Contexts that
// transformers have already derived keep their own session keys;
// transformers have no Close of their own.
func (e *TransformEngine) Close() {
	if e.closed {
		return
	}
	e.srtpTemplate.scrub()
	e.srtcpTemplate.scrub()
	e.closed = true
}
