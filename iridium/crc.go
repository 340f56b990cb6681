package iridium

import "github.com/sigurn/crc16"

// CRC-16/CCITT-FALSE
var fingerprintParams = crc16.Params{
	Poly: 0x1021,
	Init: 0xffff,
	Name: "CCITT-FALSE",
}

var fingerprintTable = crc16.MakeTable(fingerprintParams)

// Fingerprint identifies a burst by the CRC of its packed bits, so repeated
// captures of the same burst can be dropped.
func Fingerprint(bits string) uint16 {
	return crc16.Checksum(packBits(bits), fingerprintTable)
}
