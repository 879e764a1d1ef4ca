package mib

import "errors"

// Registration and lookup errors. These are sentinel values so callers can
// compare with errors.Is rather than parsing messages.
var (
	// ErrMalformedOid is returned when an OID cannot be parsed: a
	// component is negative, non-integer, or the text is otherwise
	// ill-formed.
	ErrMalformedOid = errors.New("mib: malformed oid")

	// ErrOccupied is returned by setChild (and so by AddPlugin/AddProxy)
	// when the target OID already maps to a subtree or a leaf, and by
	// AddPlugin/AddProxy for the empty OID.
	ErrOccupied = errors.New("mib: oid already occupied")

	// ErrEncroachesOnPlugin is returned when a registration's OID sits
	// beneath an ancestor that is already a plugin or a scalar leaf. A
	// proxy ancestor yields ErrCannotNestInProxy instead.
	ErrEncroachesOnPlugin = errors.New("mib: oid encroaches on an existing plugin or proxy")

	// ErrCannotNestInProxy is returned by Proxy.AddChild: proxies own
	// their entire subtree opaquely and accept no children.
	ErrCannotNestInProxy = errors.New("mib: cannot register a child inside a proxy subtree")

	// ErrBadPluginShape is returned by shape coercion when a mapping key
	// is not a non-negative integer.
	ErrBadPluginShape = errors.New("mib: plugin returned a shape with a non-integer key")
)
