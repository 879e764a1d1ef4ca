package mib

import (
	"log/slog"
	"time"

	"github.com/gosnmp/gosnmp"
)

// SystemInfo carries the handful of free-text values an operator supplies
// about this agent, mirrored into the standard system group at
// 1.3.6.1.2.1.1 on startup, per spec.md §6.
type SystemInfo struct {
	Descr    string
	Contact  string
	Name     string
	Location string
}

// Agent is the MIB tree engine's façade: it owns the root MibNode, enforces
// the registration rules of spec.md §4.2/§4.7, and serves GetRequest and
// GetNextRequest PDUs against the composite tree.
//
// Grounded on krisarmstrong-niac-go's Agent{device, mib, community,
// startTime} together with its initializeSystemMIB/ProcessPDU methods — the
// closest corpus analogue to "a tree plus a clock plus a request entry
// point". See DESIGN.md "mib.Agent".
type Agent struct {
	root      *MibNode
	logger    *slog.Logger
	startTime time.Time
}

var systemGroupBase = MustParseOid("1.3.6.1.2.1.1")

// NewAgent returns an Agent with the standard system group
// (sysDescr/sysUpTime/sysContact/sysName/sysLocation) already registered at
// 1.3.6.1.2.1.1, per spec.md §6's "standard MIB startup values".
func NewAgent(info SystemInfo, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}
	a := &Agent{
		root:      NewMibNode(),
		logger:    logger,
		startTime: time.Now(),
	}
	a.registerSystemGroup(info)
	return a
}

func (a *Agent) registerSystemGroup(info SystemInfo) {
	scalars := []struct {
		sub uint64
		val Producer
	}{
		{1, constString(info.Descr)},
		{3, func(string) (Shape, error) {
			return Value{Type: gosnmp.TimeTicks, Data: uint32(time.Since(a.startTime) / (10 * time.Millisecond))}, nil
		}},
		{4, constString(info.Contact)},
		{5, constString(info.Name)},
		{6, constString(info.Location)},
	}
	for _, s := range scalars {
		oid := systemGroupBase.Append(s.sub).Append(0)
		if err := a.AddPlugin(oid, s.val); err != nil {
			a.logger.Warn("mib: failed to register system group scalar", "oid", oid.String(), "error", err.Error())
		}
	}
}

func constString(s string) Producer {
	return func(string) (Shape, error) { return s, nil }
}

// resolveParent walks prefix from n, creating empty subtrees for any
// missing component (spec.md §4.2's create_missing mode), and fails with
// ErrEncroachesOnPlugin (or ErrCannotNestInProxy for a proxy ancestor) if
// the walk would pass through an existing plugin, proxy, or scalar leaf —
// none of those can have children added beneath them later.
//
// This is registration's own traversal, deliberately separate from
// MibNode.lookup: lookup's job is to resolve a read against materialised
// plugin/proxy views (invoking producers, issuing upstream Gets), which is
// wrong during registration — a config-time prefix walk must reject on
// *sight* of a plugin/proxy ancestor without auto-creating anything past
// it or contacting an upstream agent, and must distinguish
// ErrCannotNestInProxy from ErrEncroachesOnPlugin, neither of which
// lookup's read-path result type expresses.
func (n *MibNode) resolveParent(prefix ObjectId) (*MibNode, error) {
	node := n
	for i := 0; i < prefix.Len(); i++ {
		sub := prefix.At(i)
		c, ok := node.getChild(sub)
		if !ok {
			fresh := NewMibNode()
			_ = node.setChild(sub, subtreeChild(fresh))
			node = fresh
			continue
		}
		if c.kind == kindProxy {
			return nil, c.proxy.AddChild()
		}
		if c.kind != kindSubtree {
			return nil, ErrEncroachesOnPlugin
		}
		node = c.subtree
	}
	return node, nil
}

// AddPlugin registers producer at oid, per spec.md §4.3/§4.7. oid must be
// non-empty; registering at the root is not meaningful.
func (a *Agent) AddPlugin(oid ObjectId, producer Producer) error {
	return a.register(oid, func() child { return pluginChild(NewPlugin(producer, a.logger)) })
}

// AddProxy registers client to serve everything beneath oid, delegating
// every lookup and successor search past that point, per spec.md §4.4/§4.7.
func (a *Agent) AddProxy(oid ObjectId, client ManagerClient) error {
	return a.register(oid, func() child { return proxyChild(NewProxy(oid, client, a.logger)) })
}

func (a *Agent) register(oid ObjectId, makeChild func() child) error {
	if oid.Len() == 0 {
		return ErrOccupied
	}
	parent, err := a.root.resolveParent(oid.Slice(0, oid.Len()-1))
	if err != nil {
		return err
	}
	return parent.setChild(oid.At(oid.Len()-1), makeChild())
}

// ProcessGetRequest resolves one scalar value per requested OID, in order,
// per spec.md §4.7/§6. An OID with no registered scalar resolves to
// NoSuchObject rather than erroring — malformed requests at the wire layer
// are the codec's concern, not the engine's. community is the requesting
// PDU's community string, passed through to any plugin producer consulted
// (spec.md §8 scenario 7).
func (a *Agent) ProcessGetRequest(oids []ObjectId, community string) []Value {
	out := make([]Value, len(oids))
	for i, oid := range oids {
		res, err := a.root.lookup(oid, community)
		if err != nil || res.kind != lookupScalar {
			out[i] = NoSuchObject
			continue
		}
		out[i] = res.scalar
	}
	return out
}

// ProcessGetNextRequest resolves the lexicographic successor OID and value
// for each requested OID, in order, per spec.md §4.6/§4.7/§6. An OID with
// no successor resolves to (the original oid, EndOfMibView) so the caller
// always has an OID to echo back on the wire. community is passed through
// to plugin producers as in ProcessGetRequest.
func (a *Agent) ProcessGetNextRequest(oids []ObjectId, community string) ([]ObjectId, []Value) {
	outOids := make([]ObjectId, len(oids))
	outVals := make([]Value, len(oids))
	for i, oid := range oids {
		next, ok := a.root.successorFrom(oid, community)
		if !ok {
			outOids[i] = oid
			outVals[i] = EndOfMibView
			continue
		}
		res, err := a.root.lookup(next, community)
		if err != nil || res.kind != lookupScalar {
			// The successor search and a plain lookup of its own result
			// should never disagree; treat disagreement defensively as
			// EndOfMibView rather than serving a wrong value.
			outOids[i] = oid
			outVals[i] = EndOfMibView
			continue
		}
		outOids[i] = next
		outVals[i] = res.scalar
	}
	return outOids, outVals
}
