package domain

// TargetMode distinguishes the three accepted target-set shapes.
type TargetMode int

const (
	TargetSingle TargetMode = iota
	TargetMany
	TargetAll
)

// TargetSet names the entities a batch operation applies to: one identifier,
// a non-empty list of identifiers, or every entity of the kind.
type TargetSet struct {
	mode TargetMode
	ids  []string
}

// Single targets exactly one identifier.
func Single(id string) TargetSet {
	return TargetSet{mode: TargetSingle, ids: []string{id}}
}

// Many targets the identifiers in order. Duplicates are kept so repeated
// mistakes stay visible in the results.
func Many(ids ...string) TargetSet {
	return TargetSet{mode: TargetMany, ids: append([]string(nil), ids...)}
}

// All targets every entity of the kind.
func All() TargetSet {
	return TargetSet{mode: TargetAll}
}

// Mode returns the shape of the set.
func (t TargetSet) Mode() TargetMode {
	return t.mode
}

// IsAll reports whether the set expands to every entity.
func (t TargetSet) IsAll() bool {
	return t.mode == TargetAll
}

// Targets returns the explicit identifiers in request order. It is empty for All.
func (t TargetSet) Targets() []string {
	return append([]string(nil), t.ids...)
}
