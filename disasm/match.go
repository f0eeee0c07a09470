package disasm

import (
	"github.com/gridforge/rreil/region"
	"github.com/gridforge/rreil/token"
)

// candidate is a successful accepting run through the graph.
type candidate struct {
	state    *State
	consumed int // number of tokens consumed, for the longest-match rule
	seq      int // visitation order, for the "first to accept wins" tiebreak
}

// TryMatch attempts every path from the start vertex concurrently
// (BFS-style), running accepting actions as they're reached, and returns
// the longest-consuming successful match. Ties are broken by whichever
// candidate was produced first. If nothing accepts and a default action is
// set, it is tried against a single-token State. Returns nil, nil if
// nothing matches at all — a runtime match failure is never an error, only
// the absence of one.
func (d *Disassembler) TryMatch(reg region.Region, offset uint64, reader *token.Reader, cfg any) (*State, error) {
	start := newState(offset, cfg)
	var candidates []candidate
	seq := 0

	type item struct {
		v        int
		st       *State
		consumed int
	}
	queue := []item{{v: 0, st: start, consumed: 0}}
	for len(queue) > 0 {
		v, st, consumed := queue[0].v, queue[0].st, queue[0].consumed
		queue = queue[1:]
		if action, ok := d.isAccepting(v); ok {
			trial := st.clone()
			if action(trial) {
				candidates = append(candidates, candidate{state: trial, consumed: consumed, seq: seq})
				seq++
			}
		}
		for _, e := range d.edges[v] {
			switch r := e.rule.(type) {
			case Terminal:
				tok, err := reader.Read(reg, offset+uint64(consumed)*uint64(reader.Width))
				if err != nil {
					continue // out-of-range / undefined: this alternative dies quietly
				}
				if tok&r.Mask != r.Pattern {
					continue
				}
				next := st.clone()
				next.Tokens = append(next.Tokens, tok)
				for _, g := range r.Groups {
					extracted := extractBits(tok, g.Mask)
					if prior, ok := next.Groups[g.Name]; ok {
						next.Groups[g.Name] = prior<<popcount(g.Mask) | extracted
					} else {
						next.Groups[g.Name] = extracted
					}
				}
				queue = append(queue, item{v: e.to, st: next, consumed: consumed + 1})
			case SubDisassembler:
				subState, err := r.Graph.TryMatch(reg, offset+uint64(consumed)*uint64(reader.Width), reader, st.Configuration)
				if err != nil || subState == nil {
					continue
				}
				next := st.clone()
				next.Tokens = append(next.Tokens, subState.Tokens...)
				// A sub-disassembler's own capture groups are scoped to its
				// graph; the shift-and-OR accumulation only applies within a
				// single graph's terminals, so a name reused across the
				// parent/child boundary simply takes the child's value
				// rather than guessing a shift width.
				for name, v := range subState.Groups {
					next.Groups[name] = v
				}
				queue = append(queue, item{v: e.to, st: next, consumed: consumed + len(subState.Tokens)})
			}
		}
	}

	if len(candidates) == 0 {
		if d.def == nil {
			return nil, nil
		}
		tok, err := reader.Read(reg, offset)
		if err != nil {
			return nil, nil
		}
		trial := start.clone()
		trial.Tokens = append(trial.Tokens, tok)
		if d.def(trial) {
			return trial, nil
		}
		return nil, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.consumed > best.consumed {
			best = c
		}
	}
	return best.state, nil
}

func extractBits(t token.Token, mask token.Token) uint64 {
	var out uint64
	for bit := 63; bit >= 0; bit-- {
		m := token.Token(1) << uint(bit)
		if mask&m != 0 {
			out <<= 1
			if t&m != 0 {
				out |= 1
			}
		}
	}
	return out
}

func popcount(mask token.Token) uint {
	n := uint(0)
	for mask != 0 {
		mask &= mask - 1
		n++
	}
	return n
}
