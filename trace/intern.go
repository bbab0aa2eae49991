package trace

// StringID is a stable handle to an interned string.
type StringID uint32

// Interner deduplicates strings. Handles stay valid for the lifetime of the
// implementation.
type Interner interface {
	Intern(s string) StringID
}

// StringPool is an append-only Interner. The zero value is ready for use.
// It is not safe for concurrent use.
type StringPool struct {
	ids  map[string]StringID
	strs []string
}

var _ Interner = (*StringPool)(nil)

// Intern returns the handle for s, adding it to the pool if necessary.
func (p *StringPool) Intern(s string) StringID {
	if id, ok := p.ids[s]; ok {
		return id
	}
	if p.ids == nil {
		p.ids = make(map[string]StringID)
	}
	id := StringID(len(p.strs))
	p.strs = append(p.strs, s)
	p.ids[s] = id
	return id
}

// Lookup returns the string that id was issued for.
func (p *StringPool) Lookup(id StringID) string {
	return p.strs[id]
}

// Len returns the number of distinct strings in the pool.
func (p *StringPool) Len() int {
	return len(p.strs)
}
