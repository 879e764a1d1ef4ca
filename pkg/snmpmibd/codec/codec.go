// Package codec implements the SNMPv1 wire format: decoding an incoming
// UDP datagram into a request PDU, and encoding the agent's answer back
// into one.
//
// gosnmp already ships a full BER encoder/decoder for SNMP messages
// (UnmarshalMessage / SnmpPacket.MarshalMsg) — the strongest corpus
// precedent is NickBorgers-util's outputs/snmp.go, a hand-rolled UDP SNMP
// agent that uses exactly these two calls rather than a separate ASN.1
// library. Reusing them here means the agent never needs its own BER
// implementation. See DESIGN.md "pkg/snmpmibd/codec".
package codec

import (
	"fmt"

	"github.com/gosnmp/gosnmp"
)

// DecodeRequest parses a raw UDP datagram into an SNMP packet.
func DecodeRequest(data []byte) (*gosnmp.SnmpPacket, error) {
	packet, err := gosnmp.UnmarshalMessage(data)
	if err != nil {
		return nil, fmt.Errorf("codec: malformed message: %w", err)
	}
	return packet, nil
}

// EncodeResponse serialises a GetResponse packet back to wire bytes.
func EncodeResponse(packet *gosnmp.SnmpPacket) ([]byte, error) {
	data, err := packet.MarshalMsg()
	if err != nil {
		return nil, fmt.Errorf("codec: marshal response: %w", err)
	}
	return data, nil
}

// NewResponse builds the GetResponse envelope matching an incoming
// request's version/community/request-id, with vars as its payload.
func NewResponse(req *gosnmp.SnmpPacket, vars []gosnmp.SnmpPDU) *gosnmp.SnmpPacket {
	return &gosnmp.SnmpPacket{
		Version:   req.Version,
		Community: req.Community,
		PDUType:   gosnmp.GetResponse,
		RequestID: req.RequestID,
		Variables: vars,
	}
}
