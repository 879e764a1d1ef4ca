package mib

import "reflect"

// Shape is the raw value a plugin producer returns. Per spec.md §3/§4.5 it
// is one of:
//
//   - a scalar (anything TypeValue accepts, including an already-typed
//     Value)
//   - an ordered sequence of Shapes (any Go slice kind: []int, []string,
//     []Shape, ...)
//   - a sparse mapping from non-negative integer to Shape (any Go map kind
//     whose key is an integer type: map[int]Shape, map[uint64]string, ...)
//   - nil
//   - a Cached, wrapping a TTL and another Shape — the "mapping that
//     additionally contains a cache key" from spec.md §3. Go map types
//     cannot mix an integer-keyed and a string-keyed entry, so the cache
//     hint is represented as this explicit wrapper type instead of a
//     magic map key; a producer that wants to set a cache TTL returns
//     Cached{TTLSeconds: n, Value: shape} as its top-level result.
type Shape = interface{}

// Cached wraps a plugin's top-level return value together with a cache TTL
// in seconds. See the Shape doc comment above for why this is a distinct
// type rather than a magic "cache" map key.
type Cached struct {
	TTLSeconds int
	Value      Shape
}

// coerce converts a raw producer Shape into a child variant (scalar or
// subtree), implementing spec.md §4.5. Coercion uses reflection so that
// producers may return any concrete slice or map kind, not just []Shape /
// map[uint64]Shape — Go producers naturally return []string, map[int]int64,
// and similar typed collections.
//
//	scalar                      -> scalar leaf
//	slice of length N           -> subtree with keys 0..N-1
//	map with an integer key type -> subtree with those keys (non-integer
//	                                 key types abort with ErrBadPluginShape)
//	nil                         -> empty subtree
//
// Coercion is shallow-by-reference: scalar values (including pointers to
// externally-typed SNMP value objects) are stored as-is, never copied.
func coerce(raw Shape) (child, error) {
	if raw == nil {
		return subtreeChild(NewMibNode()), nil
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		node := NewMibNode()
		for i := 0; i < rv.Len(); i++ {
			if err := coerceInto(node, uint64(i), rv.Index(i).Interface()); err != nil {
				return child{}, err
			}
		}
		return subtreeChild(node), nil

	case reflect.Map:
		if !isIntegerKind(rv.Type().Key().Kind()) {
			return child{}, ErrBadPluginShape
		}
		node := NewMibNode()
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			n, err := mapKeyToUint64(k)
			if err != nil {
				return child{}, err
			}
			if err := coerceInto(node, n, iter.Value().Interface()); err != nil {
				return child{}, err
			}
		}
		return subtreeChild(node), nil

	default:
		return scalarChild(TypeValue(raw)), nil
	}
}

// coerceInto coerces elem and installs it as child k of node, skipping nil
// slots per spec.md §4.5 ("nil in child position -> the child slot is
// absent").
func coerceInto(node *MibNode, k uint64, elem Shape) error {
	if elem == nil {
		return nil
	}
	c, err := coerce(elem)
	if err != nil {
		return err
	}
	return node.setChild(k, c)
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}

func mapKeyToUint64(k reflect.Value) (uint64, error) {
	switch {
	case k.CanInt():
		i := k.Int()
		if i < 0 {
			return 0, ErrBadPluginShape
		}
		return uint64(i), nil
	case k.CanUint():
		return k.Uint(), nil
	default:
		return 0, ErrBadPluginShape
	}
}
