package types

// ADTInfo is the per-type-name record in the ADT environment (spec
// §3). Grounded on the teacher's ADT registration in
// typechecker_data.go, generalized to the spec's exact shape.
type ADTInfo struct {
	Name         string
	Parameters   []VarID
	Constructors []ConstructorInfo
	Alias        Type   // non-nil iff this name is a transparent alias
	RecordFields []string // non-nil iff a record-sugar arity is declared (§4.1(c))
}

// ConstructorInfo names a constructor, its arity, and its generalized
// scheme, whose return shape is always Constructor(typeName,
// parameterVars) (spec §3).
type ConstructorInfo struct {
	Name   string
	Arity  int
	Scheme *Scheme
}

// ADTEnv maps type names to their ADT info. Mutated only during the
// two-pass registration in internal/infer (C5); read-only afterwards.
type ADTEnv struct {
	byName map[string]*ADTInfo
}

func NewADTEnv() *ADTEnv {
	return &ADTEnv{byName: make(map[string]*ADTInfo)}
}

func (e *ADTEnv) Get(name string) (*ADTInfo, bool) {
	info, ok := e.byName[name]
	return info, ok
}

func (e *ADTEnv) Set(name string, info *ADTInfo) {
	e.byName[name] = info
}

func (e *ADTEnv) Delete(name string) {
	delete(e.byName, name)
}

// FindConstructor looks up a constructor by name across every
// registered ADT, returning its owning type name too.
func (e *ADTEnv) FindConstructor(ctorName string) (typeName string, ci ConstructorInfo, ok bool) {
	for tn, info := range e.byName {
		for _, c := range info.Constructors {
			if c.Name == ctorName {
				return tn, c, true
			}
		}
	}
	return "", ConstructorInfo{}, false
}

// ResolveAlias expands an alias constructor by substituting its
// declared parameters with the given arguments, returning the expanded
// type and true, or (nil, false) if name is not a registered alias.
func (e *ADTEnv) ResolveAlias(name string, args []Type) (Type, bool) {
	info, ok := e.byName[name]
	if !ok || info.Alias == nil {
		return nil, false
	}
	sub := make(Subst, len(info.Parameters))
	for i, p := range info.Parameters {
		if i < len(args) {
			sub[p] = args[i]
		}
	}
	return Apply(sub, info.Alias), true
}

// HasRecordArity reports whether the ADT named typeName declares
// record fields of exactly the given arity, enabling bare vs. record
// form unification (spec §4.1(c)).
func (e *ADTEnv) HasRecordArity(typeName string, arity int) bool {
	info, ok := e.byName[typeName]
	if !ok {
		return false
	}
	return len(info.RecordFields) == arity
}
