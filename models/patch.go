package models

// Patch is a partial record sent to the record store on update, keyed by
// column name.
type Patch map[string]any

// Only returns a copy of p restricted to the given columns.
func (p Patch) Only(columns ...string) Patch {
	out := make(Patch, len(columns))
	for _, c := range columns {
		if v, ok := p[c]; ok {
			out[c] = v
		}
	}
	return out
}

func (p Patch) Clone() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
