package types

// Equal is structural equality over the closed Type union. Two
// Unknown values are equal only if their provenance kinds match (spec
// §3: "two holes differing only in provenance are not equal"); we
// compare by Kind() string since Provenance payloads (e.g. the types
// nested in ErrorInconsistent) are not meaningful to compare for this
// purpose.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case *Var:
		y, ok := b.(*Var)
		return ok && x.ID == y.ID
	case *Primitive:
		y, ok := b.(*Primitive)
		return ok && x.Name == y.Name
	case *Func:
		y, ok := b.(*Func)
		return ok && Equal(x.From, y.From) && Equal(x.To, y.To)
	case *Tuple:
		y, ok := b.(*Tuple)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Length == y.Length && Equal(x.Element, y.Element)
	case *Record:
		y, ok := b.(*Record)
		if !ok || len(x.Fields) != len(y.Fields) {
			return false
		}
		for k, v := range x.Fields {
			ov, exists := y.Fields[k]
			if !exists || !Equal(v, ov) {
				return false
			}
		}
		return true
	case *Constructor:
		y, ok := b.(*Constructor)
		if !ok || x.Name != y.Name || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *EffectRow:
		y, ok := b.(*EffectRow)
		if !ok || len(x.Cases) != len(y.Cases) {
			return false
		}
		for k, v := range x.Cases {
			ov, exists := y.Cases[k]
			if !exists {
				return false
			}
			if v == nil || ov == nil {
				if v != nil || ov != nil {
					return false
				}
				continue
			}
			if !Equal(v, ov) {
				return false
			}
		}
		if (x.Tail == nil) != (y.Tail == nil) {
			return false
		}
		if x.Tail != nil && x.Tail.ID != y.Tail.ID {
			return false
		}
		return true
	case *Unknown:
		y, ok := b.(*Unknown)
		return ok && x.Provenance.Kind() == y.Provenance.Kind()
	}
	return false
}
