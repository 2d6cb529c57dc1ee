package main

import (
	flag "github.com/spf13/pflag"
)

var (
	flagSSRC    uint32
	flagPackets int
	flagProfile string
	flagHelp    bool
)

func init() {
	flag.Uint32VarP(&flagSSRC, "ssrc", "s", 0x11223344, "Synthetic stream SSRC")
	flag.IntVarP(&flagPackets, "packets", "n", 8, "Number of synthetic packets to round-trip")
	flag.StringVarP(&flagProfile, "profile", "p", "default", "Crypto profile: default, f8, twofish, null")
	flag.BoolVarP(&flagHelp, "help", "h", false, "Print usage information and exit")
}

const helpString = `srtpguard - exercise an SRTP/SRTCP transform engine against synthetic traffic

Usage: srtpguard [OPTION]...

  -s, --ssrc=NUM      Synthetic stream SSRC (default: 0x11223344)
  -n, --packets=NUM   Number of synthetic packets to round-trip (default: 8)
  -p, --profile=NAME  Crypto profile: default, f8, twofish, null (default: default)
  -h, --help          Print this message and exit
`
