package mib

import (
	"log/slog"
	"sync"
	"time"
)

// Producer is a plugin's value-producing function. It receives the
// requesting PDU's community string (spec.md §8 scenario 7 — a producer
// may use it as an ordinary parameter, e.g. to echo it back) and returns a
// Shape (see shape.go) or an error; a returned error is treated as a
// raised exception per spec.md §4.3 — that materialisation reports absent
// and the failure is logged, never propagated to the caller. Nothing is
// cached for a failure: the next materialisation invokes the producer
// again.
//
// Grounded on krisarmstrong-niac-go's Agent.mib.SetDynamic(oid, func()
// *OIDValue) pattern (a deferred producer registered at an OID, invoked on
// demand), generalised here with the cache/TTL/exception-isolation wrapper
// spec.md §4.3 requires.
type Producer func(community string) (Shape, error)

// Plugin wraps a Producer with a cached last result and an expiry. The
// first call always materialises (expiry initialised to the zero time, in
// the past). A mutex serialises materialisation so a producer runs at most
// once per cache miss even under concurrent callers (spec.md §5).
type Plugin struct {
	producer Producer
	logger   *slog.Logger

	mu       sync.Mutex
	haveLast bool
	last     child // cached materialised view (scalar or subtree)
	expiry   time.Time

	now func() time.Time // injectable for tests
}

// NewPlugin wraps producer. logger may be nil, in which case diagnostics
// are discarded (matching the teacher's nil-logger-defaults-to-noop
// convention used throughout pkg/snmpcollector).
func NewPlugin(producer Producer, logger *slog.Logger) *Plugin {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	return &Plugin{
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// materialise returns the plugin's current view, invoking the producer if
// the cache has expired. The bool is false when this call invoked the
// producer and it raised — the caller treats that as absent,
// never as a subtree or scalar. community is passed through to the
// producer untouched; it plays no part in the cache key, so a cache hit
// serves the view materialised for whichever community triggered it.
func (p *Plugin) materialise(community string) (child, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.haveLast && p.now().Before(p.expiry) {
		return p.last, true
	}

	raw, err := p.producer(community)
	if err != nil {
		p.logger.Warn("mib: plugin producer failed", "error", err.Error())
		p.haveLast = false
		return child{}, false
	}

	ttlSeconds := 0
	if cached, ok := raw.(Cached); ok {
		ttlSeconds = cached.TTLSeconds
		raw = cached.Value
	}

	c, err := coerce(raw)
	if err != nil {
		// BadPluginShape: treat as empty, per the error table in
		// spec.md §7, not as a hard failure.
		p.logger.Warn("mib: plugin returned an unusable shape — treating as empty", "error", err.Error())
		c = subtreeChild(NewMibNode())
	}

	p.last = c
	p.haveLast = true
	p.expiry = p.now().Add(time.Duration(ttlSeconds) * time.Second)
	return p.last, true
}

// lookupRemainder materialises the plugin and looks up oid (everything past
// the plugin's own position) against the resulting view. This is
// MibNode.lookup's kindPlugin case: once a plugin is found mid-walk, the
// rest of the OID is resolved against its materialised view in one call
// rather than continuing the outer loop over it.
func (p *Plugin) lookupRemainder(community string, oid ObjectId) (Value, bool) {
	view, ok := p.materialise(community)
	if !ok {
		return Value{}, false
	}
	if view.kind == kindScalar {
		if oid.Len() != 0 {
			return Value{}, false
		}
		return view.scalar, true
	}
	res, err := view.subtree.lookup(oid, community)
	if err != nil || res.kind != lookupScalar {
		return Value{}, false
	}
	return res.scalar, true
}

// successor materialises the plugin and finds the lexicographic successor
// of oid within its view, per spec.md §4.6 step 2's plugin delegation.
func (p *Plugin) successor(community string, oid ObjectId) (ObjectId, bool) {
	view, ok := p.materialise(community)
	if !ok {
		return Empty, false
	}
	if view.kind == kindScalar {
		// A bare-scalar plugin has no descendants to search — whether
		// oid names the plugin's own position or something beneath it,
		// there is nothing here strictly greater. The caller ascends
		// and tries the next sibling.
		return Empty, false
	}
	return view.subtree.successorFrom(oid, community)
}

type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }
