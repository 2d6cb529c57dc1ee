package main

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/lanikai/srtpguard/internal/logging"
	"github.com/lanikai/srtpguard/srtp"
)

var log = logging.DefaultLogger.WithTag("srtpguard")

func main() {
	flag.Parse()

	if flagHelp {
		fmt.Print(helpString)
		os.Exit(0)
	}

	srtpPolicy, srtcpPolicy, err := policiesForProfile(flagProfile)
	if err != nil {
		log.Fatalf("%v", err)
	}

	masterKey := make([]byte, 16)
	masterSalt := make([]byte, 14)
	if _, err := rand.Read(masterKey); err != nil {
		log.Fatalf("generating master key: %v", err)
	}
	if _, err := rand.Read(masterSalt); err != nil {
		log.Fatalf("generating master salt: %v", err)
	}

	engine, err := srtp.NewEngine(masterKey, masterSalt, srtpPolicy, srtcpPolicy)
	if err != nil {
		log.Fatalf("building transform engine: %v", err)
	}
	defer engine.Close()

	sender := engine.RTPTransformer()
	receiver := engine.RTPTransformer()

	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	var sent [][]byte
	for i := 0; i < flagPackets; i++ {
		packet := syntheticRTPPacket(flagSSRC, uint16(i), uint32(i)*160)
		out, err := sender.Transform(packet)
		if err != nil {
			bad.Printf("send #%d failed: %v\n", i, err)
			os.Exit(1)
		}
		sent = append(sent, out)
	}

	for i, packet := range sent {
		plaintext := receiver.ReverseTransform(packet)
		if plaintext == nil {
			bad.Printf("recv #%d rejected\n", i)
			continue
		}
		ok.Printf("recv #%d accepted, %d bytes\n", i, len(plaintext))
	}

	// Replay the first packet again; it must now be silently dropped.
	if len(sent) > 0 {
		if replay := receiver.ReverseTransform(sent[0]); replay != nil {
			bad.Println("replay of packet #0 was NOT rejected")
			os.Exit(1)
		}
		ok.Println("replay of packet #0 correctly rejected")
	}

	rtcpSender := engine.RTCPTransformer()
	rtcpReceiver := engine.RTCPTransformer()

	report := syntheticRTCPPacket(flagSSRC)
	out, err := rtcpSender.Transform(report)
	if err != nil {
		bad.Printf("rtcp send failed: %v\n", err)
		os.Exit(1)
	}
	if plaintext := rtcpReceiver.ReverseTransform(out); plaintext == nil {
		bad.Println("rtcp round-trip rejected")
		os.Exit(1)
	}
	ok.Println("rtcp round-trip accepted")
}

func policiesForProfile(name string) (srtp.Policy, srtp.Policy, error) {
	switch name {
	case "default":
		return srtp.DefaultPolicy(), srtp.DefaultPolicy(), nil
	case "f8":
		p := srtp.DefaultPolicy()
		p.EncType = srtp.EncAESF8
		return p, p, nil
	case "twofish":
		p := srtp.DefaultPolicy()
		p.EncType = srtp.EncTwofishCM
		return p, p, nil
	case "null":
		p := srtp.Policy{EncType: srtp.EncNone, AuthType: srtp.AuthHMACSHA1, AuthKeyLen: 20, AuthTagLen: 10}
		return p, p, nil
	default:
		return srtp.Policy{}, srtp.Policy{}, fmt.Errorf("unknown profile %q", name)
	}
}

// syntheticRTPPacket builds a minimal valid RTP packet (12-byte header, no
// CSRC, no extension) with a fixed-size payload, leaving room at the end of
// the backing array for the SRTP auth tag to be appended without a copy.
func syntheticRTPPacket(ssrc uint32, seq uint16, timestamp uint32) []byte {
	const payloadLen = 160
	const maxTagLen = 20
	buf := make([]byte, 12+payloadLen, 12+payloadLen+maxTagLen)
	buf[0] = 0x80 // version 2, no padding, no extension, CSRC count 0
	buf[1] = 0x00 // no marker, payload type 0
	binary.BigEndian.PutUint16(buf[2:4], seq)
	binary.BigEndian.PutUint32(buf[4:8], timestamp)
	binary.BigEndian.PutUint32(buf[8:12], ssrc)
	for i := 0; i < payloadLen; i++ {
		buf[12+i] = byte(i)
	}
	return buf
}

// syntheticRTCPPacket builds a minimal RTCP sender-report header (RFC 3550
// §6.4.1) followed by filler bytes standing in for the report body, which
// SRTCP treats as opaque (§3).
func syntheticRTCPPacket(ssrc uint32) []byte {
	const bodyLen = 20
	const maxOverhead = 4 + 20 // SRTCP trailer + max auth tag
	buf := make([]byte, 8+bodyLen, 8+bodyLen+maxOverhead)
	buf[0] = 0x80       // version 2, no padding, no report count
	buf[1] = 200        // SR packet type
	binary.BigEndian.PutUint16(buf[2:4], uint16((8+bodyLen)/4-1))
	binary.BigEndian.PutUint32(buf[4:8], ssrc)
	for i := 0; i < bodyLen; i++ {
		buf[8+i] = byte(0xA0 + i)
	}
	return buf
}
