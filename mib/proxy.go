package mib

import "log/slog"

// Proxy wraps an upstream ManagerClient and delegates every lookup and
// successor search beneath its registration point to that upstream agent,
// per spec.md §4.4. A Proxy owns its entire subtree opaquely: unlike a
// Plugin it never materialises into a local MibNode, and it rejects any
// attempt to register a child beneath it.
//
// Grounded on the teacher's poller/pool.go and poller/session.go (a pooled
// handle to a remote SNMP-speaking device), generalised from "poll a device
// on a schedule" to "delegate a single request on demand".
type Proxy struct {
	baseOid ObjectId
	client  ManagerClient
	logger  *slog.Logger
}

// NewProxy wraps client, delegating for everything beneath baseOid. logger
// may be nil (noop), matching Plugin's convention.
func NewProxy(baseOid ObjectId, client ManagerClient, logger *slog.Logger) *Proxy {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Proxy{baseOid: baseOid, client: client, logger: logger}
}

// lookup fetches the value at remainder (the OID past the proxy's
// registration point) from the upstream agent, per spec.md §4.4: issue an
// upstream Get with baseOid ++ remainder. Any transport error or an
// upstream NoSuchObject/EndOfMibView response is treated as absent.
func (p *Proxy) lookup(remainder ObjectId) (Value, bool) {
	vs, err := p.client.Get([]ObjectId{p.baseOid.Concat(remainder)})
	if err != nil {
		p.logger.Warn("mib: proxy upstream get failed", "error", err.Error())
		return Value{}, false
	}
	if len(vs) != 1 || vs[0].IsSentinel() {
		return Value{}, false
	}
	return vs[0], true
}

// successor fetches the upstream successor of remainder, per spec.md §4.4
// and §4.6's proxy-delegation step: issue an upstream GetNext with
// baseOid ++ remainder, then strip baseOid back off the absolute OID it
// returns. The returned OID is relative to the proxy's own registration
// point, matching remainder's frame — the caller (MibNode.successorFrom)
// is responsible for prefixing the proxy's own registration OID on top of
// that. A successor outside baseOid's subtree (an upstream agent that
// wrapped around past its own MIB) is treated as no successor at all.
func (p *Proxy) successor(remainder ObjectId) (ObjectId, bool) {
	oids, vs, err := p.client.GetNext([]ObjectId{p.baseOid.Concat(remainder)})
	if err != nil {
		p.logger.Warn("mib: proxy upstream getnext failed", "error", err.Error())
		return Empty, false
	}
	if len(oids) != 1 || len(vs) != 1 || vs[0].IsSentinel() {
		return Empty, false
	}
	return stripPrefix(oids[0], p.baseOid)
}

// stripPrefix returns oid with base's components removed from the front,
// and whether oid actually lies within base's subtree.
func stripPrefix(oid, base ObjectId) (ObjectId, bool) {
	if oid.Len() < base.Len() {
		return Empty, false
	}
	if !oid.Slice(0, base.Len()).Equal(base) {
		return Empty, false
	}
	return oid.Slice(base.Len(), oid.Len()), true
}

// AddChild always fails: spec.md §4.4 says a proxy owns its entire subtree
// opaquely and accepts no local children.
func (p *Proxy) AddChild() error {
	return ErrCannotNestInProxy
}
