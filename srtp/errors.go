package srtp

import "errors"

// Sentinel errors a caller can branch on with errors.Is. These correspond to
// the rejection reasons a reverse-transform can report; per RFC 3711 §9.1 a
// rejected packet on the receive path is a normal outcome, not a fault, so
// transformers turn these into a dropped (empty) result rather than
// propagating them to whatever reads the socket.
var (
	ErrShortPacket     = errors.New("srtp: packet shorter than required header/trailer")
	ErrReplayOld       = errors.New("srtp: packet index older than replay window")
	ErrReplayDup       = errors.New("srtp: packet index already seen")
	ErrAuthFailed      = errors.New("srtp: authentication tag mismatch")
	ErrPayloadTooLarge = errors.New("srtp: payload too large for keystream counter")
	ErrClosed          = errors.New("srtp: use of context after Close")
)
