package bitcode

// StringTable interns register/region names into a per-function table.
// Index 0 is always the empty string, reserved as the "absent" sentinel
// used to pad Phi statements (see sentinelVariable in value.go); entries
// are never deleted within a function's lifetime.
type StringTable struct {
	strs []string
	idx  map[string]uint64
}

// NewStringTable returns a table with the empty-string sentinel
// pre-interned at index 0.
func NewStringTable() *StringTable {
	t := &StringTable{idx: make(map[string]uint64)}
	t.intern("")
	return t
}

func (t *StringTable) intern(s string) uint64 {
	if i, ok := t.idx[s]; ok {
		return i
	}
	i := uint64(len(t.strs))
	t.strs = append(t.strs, s)
	t.idx[s] = i
	return i
}

// Intern returns s's stable index, inserting it if new.
func (t *StringTable) Intern(s string) uint64 { return t.intern(s) }

// String returns the string at index i.
func (t *StringTable) String(i uint64) (string, bool) {
	if i >= uint64(len(t.strs)) {
		return "", false
	}
	return t.strs[i], true
}

// Len reports how many strings are interned, including the sentinel.
func (t *StringTable) Len() int { return len(t.strs) }
