package srtp

import (
	"github.com/lanikai/srtpguard/internal/wire"
	errors "golang.org/x/xerrors"
)

const rtpVersion = 2
const rtpFixedHeaderSize = 12

// rtpHeader holds the fields of an RTP fixed header (RFC 3550 §5.1) needed
// to locate the payload and drive the crypto transform. Everything from byte
// 0 through the end of any extension header is left untouched by SRTP; only
// headerLength is used to find where the payload starts.
type rtpHeader struct {
	extension   bool
	marker      bool
	payloadType byte
	sequence    uint16
	timestamp   uint32
	ssrc        uint32
	csrcCount   int
	extWords    int // extension length, in 32-bit words, when extension is set
}

// headerLength returns the byte offset of the payload:
// 12 + 4*CSRC_count + (X ? 4 + 4*ext_len : 0).
func (h *rtpHeader) headerLength() int {
	n := rtpFixedHeaderSize + 4*h.csrcCount
	if h.extension {
		n += 4 + 4*h.extWords
	}
	return n
}

// parseRTPHeader reads the fields of buf's RTP header without copying the
// payload. It does not validate the SRTP/SRTCP auth trailer; callers check
// overall packet length separately.
func parseRTPHeader(buf []byte) (rtpHeader, error) {
	var h rtpHeader
	r := wire.NewReader(buf)
	if err := r.CheckRemaining(rtpFixedHeaderSize); err != nil {
		return h, errors.Errorf("%w: %v", ErrShortPacket, err)
	}

	first := r.ReadByte()
	version := first >> 6
	if version != rtpVersion {
		return h, errors.Errorf("srtp: unsupported RTP version %d", version)
	}
	h.extension = (first>>4)&0x1 == 1
	h.csrcCount = int(first & 0x0f)

	second := r.ReadByte()
	h.marker = second&0x80 != 0
	h.payloadType = second & 0x7f

	h.sequence = r.ReadUint16()
	h.timestamp = r.ReadUint32()
	h.ssrc = r.ReadUint32()

	if err := r.CheckRemaining(4 * h.csrcCount); err != nil {
		return h, errors.Errorf("%w: %v", ErrShortPacket, err)
	}
	r.Skip(4 * h.csrcCount)

	if h.extension {
		if err := r.CheckRemaining(4); err != nil {
			return h, errors.Errorf("%w: %v", ErrShortPacket, err)
		}
		r.Skip(2) // profile-specific extension id
		h.extWords = int(r.ReadUint16())
	}

	return h, nil
}

// rtpHeaderPrefix12 copies the first 12 bytes of buf, for use as the f8 IV
// seed (byte 0 is zeroed by the caller per RFC 3711 §4.1.2).
func rtpHeaderPrefix12(buf []byte) [12]byte {
	var prefix [12]byte
	copy(prefix[:], buf[:12])
	return prefix
}
