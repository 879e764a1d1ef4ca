package mib

import (
	"fmt"

	"github.com/gosnmp/gosnmp"
)

// Value is a typed SNMP scalar value, directly reusing gosnmp's wire
// vocabulary (Asn1BER tag + untyped payload) rather than inventing a
// parallel type — grounded on krisarmstrong-niac-go's Agent, which stores
// MIB scalars as {Type gosnmp.Asn1BER; Value interface{}} and passes
// sentinels through the same field. See DESIGN.md "mib.Value".
type Value struct {
	Type gosnmp.Asn1BER
	Data interface{}
}

// sentinel identities. Comparisons must use these values (never construct a
// fresh Value{Type: gosnmp.NoSuchObject}), so that == and reflect.DeepEqual
// both agree a lookup returned "the" sentinel.
var (
	// NoSuchObject means there is no scalar value at the requested OID —
	// either nothing is registered there, or the OID names an interior
	// subtree rather than a leaf.
	NoSuchObject = Value{Type: gosnmp.NoSuchObject}

	// EndOfMibView means no lexicographic successor exists.
	EndOfMibView = Value{Type: gosnmp.EndOfMibView}
)

// IsSentinel reports whether v is NoSuchObject or EndOfMibView.
func (v Value) IsSentinel() bool {
	return v.Type == gosnmp.NoSuchObject || v.Type == gosnmp.EndOfMibView
}

// TypeValue maps a raw producer/scalar result to a typed SNMP Value, per
// spec.md §4.8:
//
//	integer                       -> INTEGER
//	text string                   -> OCTET STRING
//	already a Value               -> passed through unchanged
//	nil / subtree marker          -> NoSuchObject (handled by the caller,
//	                                 not here — TypeValue only ever sees
//	                                 raw scalars)
//	anything else                 -> OCTET STRING of its textual rendering
func TypeValue(raw interface{}) Value {
	switch v := raw.(type) {
	case Value:
		return v
	case int:
		return Value{Type: gosnmp.Integer, Data: v}
	case int32:
		return Value{Type: gosnmp.Integer, Data: int(v)}
	case int64:
		return Value{Type: gosnmp.Integer, Data: int(v)}
	case uint:
		return Value{Type: gosnmp.Integer, Data: int(v)}
	case uint32:
		return Value{Type: gosnmp.Integer, Data: int(v)}
	case uint64:
		return Value{Type: gosnmp.Integer, Data: int(v)}
	case string:
		return Value{Type: gosnmp.OctetString, Data: []byte(v)}
	case []byte:
		return Value{Type: gosnmp.OctetString, Data: v}
	default:
		return Value{Type: gosnmp.OctetString, Data: []byte(fmt.Sprintf("%v", v))}
	}
}
