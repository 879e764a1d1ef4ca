package mib

// childKind tags the variant held by a single entry in a MibNode's
// children map. Go has no native sum type; this is the tagged union
// spec.md's Design Notes (§9) call for — dispatch happens once, in
// MibNode.lookup and MibNode.successorFrom, rather than through an
// interface's dynamic dispatch at every level of the tree.
type childKind int

const (
	kindSubtree childKind = iota
	kindScalar
	kindPlugin
	kindProxy
)

// child is one entry in a MibNode's sparse map: exactly one of subtree,
// scalar, plugin, proxy is meaningful, selected by kind.
type child struct {
	kind    childKind
	subtree *MibNode
	scalar  Value
	plugin  *Plugin
	proxy   *Proxy
}

func subtreeChild(n *MibNode) child { return child{kind: kindSubtree, subtree: n} }
func scalarChild(v Value) child     { return child{kind: kindScalar, scalar: v} }
func pluginChild(p *Plugin) child   { return child{kind: kindPlugin, plugin: p} }
func proxyChild(p *Proxy) child     { return child{kind: kindProxy, proxy: p} }

// MibNode is a sparse subtree: a mapping from non-negative sub-id to child
// variant. The zero value is not useful; use NewMibNode.
type MibNode struct {
	children map[uint64]child
}

// NewMibNode returns an empty subtree node.
func NewMibNode() *MibNode {
	return &MibNode{children: make(map[uint64]child)}
}

// getChild returns the child at subID and whether it is present.
func (n *MibNode) getChild(subID uint64) (child, bool) {
	c, ok := n.children[subID]
	return c, ok
}

// setChild registers a new child at subID. It fails with ErrOccupied if a
// child is already present there — set_child never overwrites.
func (n *MibNode) setChild(subID uint64, c child) error {
	if _, exists := n.children[subID]; exists {
		return ErrOccupied
	}
	n.children[subID] = c
	return nil
}

// keysAscending returns the present sub-ids in ascending numeric order.
func (n *MibNode) keysAscending() []uint64 {
	keys := make([]uint64, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	// Small trees (MIB fan-out is rarely more than a few dozen siblings);
	// insertion sort keeps this allocation-free versus sort.Slice's
	// closure, and the data is already nearly sorted in the common case
	// of sequential registration.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// smallestKeyGreaterThan returns the smallest present key strictly greater
// than s, and whether one exists. When hasFloor is false, s is ignored and
// the smallest present key is returned.
func (n *MibNode) smallestKeyGreaterThan(s uint64, hasFloor bool) (uint64, bool) {
	found := false
	var best uint64
	for k := range n.children {
		if hasFloor && k <= s {
			continue
		}
		if !found || k < best {
			best = k
			found = true
		}
	}
	return best, found
}

// lookupResultKind classifies what MibNode.lookup found.
type lookupResultKind int

const (
	lookupAbsent lookupResultKind = iota
	lookupScalar
	lookupSubtree
)

type lookupResult struct {
	kind    lookupResultKind
	scalar  Value
	subtree *MibNode
}

var absentResult = lookupResult{kind: lookupAbsent}

// lookup implements spec.md §4.2's read-path lookup algorithm: consume
// oid's components one at a time, descending through subtrees and through
// materialised plugins and delegating proxies, until the OID is exhausted
// or no child exists.
//
// Registration's own prefix walk (create missing subtrees, reject walking
// through an existing plugin/proxy/scalar) is a different traversal with
// different failure semantics — MibNode.resolveParent implements that one
// directly rather than through this function; see its doc comment.
func (n *MibNode) lookup(oid ObjectId, community string) (lookupResult, error) {
	node := n
	for i := 0; i < oid.Len(); i++ {
		sub := oid.At(i)
		c, ok := node.getChild(sub)
		if !ok {
			return absentResult, nil
		}

		switch c.kind {
		case kindSubtree:
			node = c.subtree
		case kindPlugin:
			remainder := oid.Slice(i+1, oid.Len())
			v, ok := c.plugin.lookupRemainder(community, remainder)
			if !ok {
				return absentResult, nil
			}
			return lookupResult{kind: lookupScalar, scalar: v}, nil
		case kindProxy:
			remainder := oid.Slice(i+1, oid.Len())
			v, ok := c.proxy.lookup(remainder)
			if !ok {
				return absentResult, nil
			}
			return lookupResult{kind: lookupScalar, scalar: v}, nil
		case kindScalar:
			if i+1 < oid.Len() {
				return absentResult, nil
			}
			return lookupResult{kind: lookupScalar, scalar: c.scalar}, nil
		}
	}
	return lookupResult{kind: lookupSubtree, subtree: node}, nil
}

// leftmostPath returns the ordered sub-id sequence reached by repeatedly
// descending into the smallest present key until a scalar (or an emptied
// plugin/proxy view) is reached. It returns an empty sequence if the node
// is empty or every branch bottoms out without a scalar.
func (n *MibNode) leftmostPath(community string) ([]uint64, bool) {
	for _, k := range n.keysAscending() {
		c := n.children[k]
		switch c.kind {
		case kindSubtree:
			if sub, ok := c.subtree.leftmostPath(community); ok {
				return append([]uint64{k}, sub...), true
			}
		case kindScalar:
			return []uint64{k}, true
		case kindPlugin:
			view, ok := c.plugin.materialise(community)
			if !ok {
				continue
			}
			if view.kind == kindScalar {
				return []uint64{k}, true
			}
			if sub, ok := view.subtree.leftmostPath(community); ok {
				return append([]uint64{k}, sub...), true
			}
		case kindProxy:
			if rest, ok := c.proxy.successor(Empty); ok {
				return append([]uint64{k}, rest.Components()...), true
			}
		}
	}
	return nil, false
}
