// Package disasm implements a generic, table-driven bit-pattern matcher: a
// disassembler graph whose edges are Rules, supporting nested
// sub-disassemblers, bit-level capture groups, optional pattern elements
// and a longest-match rule.
package disasm

import "github.com/gridforge/rreil/token"

// CaptureGroup names a run of bits a Terminal rule extracts from a matched
// token and makes available to the semantic action under Name.
type CaptureGroup struct {
	Name string
	Mask token.Token
}

// Rule is one edge label in the disassembler graph: Terminal | SubDisassembler
// | Optional. Optional belongs in a path handed to AddOptionalPath, which
// expands it away via Expand before calling AddPath; AddPath itself does
// not expand it.
type Rule interface {
	isRule()
}

// Terminal matches a single token t iff t&Mask == Pattern, extracting
// Groups on success.
type Terminal struct {
	Mask    token.Token
	Pattern token.Token
	Groups  []CaptureGroup
}

func (Terminal) isRule() {}

// Equal reports whether two terminals have identical mask, pattern and
// capture groups — the equality AddPath uses to decide whether two
// rule-sequences can share a graph edge.
func (t Terminal) Equal(o Terminal) bool {
	if t.Mask != o.Mask || t.Pattern != o.Pattern || len(t.Groups) != len(o.Groups) {
		return false
	}
	for i := range t.Groups {
		if t.Groups[i] != o.Groups[i] {
			return false
		}
	}
	return true
}

// SubDisassembler delegates matching of the next token(s) to another
// disassembler graph. Two SubDisassembler rules are equal only if they
// share the same underlying graph (pointer identity): a nested graph is
// shared by reference, never copied.
type SubDisassembler struct {
	Graph *Disassembler
}

func (SubDisassembler) isRule() {}

// Equal reports pointer identity of the wrapped graph.
func (s SubDisassembler) Equal(o SubDisassembler) bool { return s.Graph == o.Graph }

// Optional marks Inner as an optional rule element. It is never inserted
// into the graph directly: Expand turns a path containing Optional entries
// into every combination of presence/absence.
type Optional struct {
	Inner Rule
}

func (Optional) isRule() {}

// Expand returns every concrete rule-sequence obtainable from path by
// choosing, independently, to keep or drop each Optional element.
func Expand(path []Rule) [][]Rule {
	if len(path) == 0 {
		return [][]Rule{{}}
	}
	head, tail := path[0], path[1:]
	rest := Expand(tail)
	opt, isOpt := head.(Optional)
	if !isOpt {
		out := make([][]Rule, 0, len(rest))
		for _, r := range rest {
			out = append(out, append([]Rule{head}, r...))
		}
		return out
	}
	out := make([][]Rule, 0, 2*len(rest))
	for _, r := range rest {
		out = append(out, append([]Rule{}, r...))                    // dropped
		out = append(out, append([]Rule{opt.Inner}, append([]Rule{}, r...)...)) // kept
	}
	return out
}

func ruleEqual(a, b Rule) bool {
	switch av := a.(type) {
	case Terminal:
		bv, ok := b.(Terminal)
		return ok && av.Equal(bv)
	case SubDisassembler:
		bv, ok := b.(SubDisassembler)
		return ok && av.Equal(bv)
	default:
		return false
	}
}
