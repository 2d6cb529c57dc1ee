package srtp

import errors "golang.org/x/xerrors"

const rtcpFixedHeaderSize = 8

// rtcpSSRC reads the RTCP SSRC field at byte offset 4. The
// rest of the RTCP compound packet (sub-report types, lengths) is opaque to
// SRTCP: only the first 8 bytes are excluded from encryption.
func rtcpSSRC(buf []byte) (uint32, error) {
	if len(buf) < rtcpFixedHeaderSize {
		return 0, errors.Errorf("%w: RTCP header", ErrShortPacket)
	}
	return uint32(buf[4])<<24 | uint32(buf[5])<<16 | uint32(buf[6])<<8 | uint32(buf[7]), nil
}

// rtcpHeaderPrefix8 copies the first 8 bytes of buf, for use as the f8 IV
// seed.
func rtcpHeaderPrefix8(buf []byte) [8]byte {
	var prefix [8]byte
	copy(prefix[:], buf[:8])
	return prefix
}
