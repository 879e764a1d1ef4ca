// Package mib implements the MIB tree engine: a sparse tree of object
// identifiers serving SNMPv1 Get and GetNext requests out of user-registered
// plugins and proxies.
package mib

import (
	"fmt"
	"strconv"
	"strings"
)

// ObjectId is an immutable ordered sequence of non-negative integer
// components, e.g. 1.3.6.1.2.1.1.5.0. All transforming operations return a
// new value; the receiver is never mutated, so a caller's OID is never
// observed changed by a lookup.
type ObjectId struct {
	components []uint64
}

// Empty is the zero-length OID, the root of the tree.
var Empty = ObjectId{}

// ParseOid parses a dotted-decimal OID such as "1.3.6.1.2.1" or ".1.3.6.1".
// A single leading dot is stripped. An empty string parses to Empty.
func ParseOid(text string) (ObjectId, error) {
	text = strings.TrimPrefix(text, ".")
	if text == "" {
		return Empty, nil
	}
	parts := strings.Split(text, ".")
	comps := make([]uint64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Empty, fmt.Errorf("%w: component %q in %q", ErrMalformedOid, p, text)
		}
		comps[i] = n
	}
	return ObjectId{components: comps}, nil
}

// MustParseOid is ParseOid but panics on error. Intended for constant OIDs
// known at compile time (e.g. the system-group base).
func MustParseOid(text string) ObjectId {
	oid, err := ParseOid(text)
	if err != nil {
		panic(err)
	}
	return oid
}

// FromComponents builds an ObjectId from a sequence of non-negative
// integers. The slice is copied; later mutation of seq does not affect the
// returned value.
func FromComponents(seq []uint64) ObjectId {
	comps := make([]uint64, len(seq))
	copy(comps, seq)
	return ObjectId{components: comps}
}

// Len returns the number of components.
func (o ObjectId) Len() int { return len(o.components) }

// At returns the component at index i. It panics if i is out of range,
// matching slice semantics.
func (o ObjectId) At(i int) uint64 { return o.components[i] }

// Slice returns the sub-OID spanning [i, j).
func (o ObjectId) Slice(i, j int) ObjectId {
	return FromComponents(o.components[i:j])
}

// Concat returns a new OID with other's components appended after o's.
func (o ObjectId) Concat(other ObjectId) ObjectId {
	out := make([]uint64, 0, len(o.components)+len(other.components))
	out = append(out, o.components...)
	out = append(out, other.components...)
	return ObjectId{components: out}
}

// Append returns a new OID with a single extra trailing component.
func (o ObjectId) Append(n uint64) ObjectId {
	out := make([]uint64, len(o.components)+1)
	copy(out, o.components)
	out[len(o.components)] = n
	return ObjectId{components: out}
}

// Compare orders OIDs lexicographically by component; a strict prefix
// compares less than its extension. It returns -1, 0, or 1.
func (o ObjectId) Compare(other ObjectId) int {
	n := len(o.components)
	if len(other.components) < n {
		n = len(other.components)
	}
	for i := 0; i < n; i++ {
		if o.components[i] < other.components[i] {
			return -1
		}
		if o.components[i] > other.components[i] {
			return 1
		}
	}
	switch {
	case len(o.components) < len(other.components):
		return -1
	case len(o.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// Less reports whether o sorts strictly before other.
func (o ObjectId) Less(other ObjectId) bool { return o.Compare(other) < 0 }

// Equal reports whether o and other have identical components.
func (o ObjectId) Equal(other ObjectId) bool { return o.Compare(other) == 0 }

// String renders the OID as dot-joined components; the empty OID renders
// as "".
func (o ObjectId) String() string {
	if len(o.components) == 0 {
		return ""
	}
	parts := make([]string, len(o.components))
	for i, c := range o.components {
		parts[i] = strconv.FormatUint(c, 10)
	}
	return strings.Join(parts, ".")
}

// Components returns a defensive copy of the underlying slice.
func (o ObjectId) Components() []uint64 {
	out := make([]uint64, len(o.components))
	copy(out, o.components)
	return out
}
