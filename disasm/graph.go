package disasm

import "github.com/pkg/errors"

// Action is a semantic action: a closure over State run when an accepting
// vertex is reached. It returns true to accept the match, false to reject
// this alternative. Actions may be invoked multiple times per match attempt
// against different capture-group bindings, so they must not perform I/O
// or own non-copyable resources.
type Action func(*State) bool

type edge struct {
	rule Rule
	to   int
}

// Disassembler is a directed graph with a distinguished start vertex
// (index 0); edges carry Rules. Some vertices are accepting and carry an
// Action. Graphs are immutable after construction and may be shared
// read-only across builders.
type Disassembler struct {
	edges     [][]edge // edges[v] = outgoing edges of vertex v
	accept    map[int]Action
	def       Action
	tokenBits int
}

// New returns an empty disassembler graph for tokens of tokenBits width,
// with an optional default action run when no accepting path matches.
func New(tokenBits int, def Action) *Disassembler {
	return &Disassembler{
		edges:     [][]edge{nil}, // vertex 0 = start
		accept:    make(map[int]Action),
		def:       def,
		tokenBits: tokenBits,
	}
}

// AddPath walks rules from the start vertex, reusing edges whose label
// equals an existing edge's label, creating new vertices where the path
// diverges. The terminal vertex of the walk is marked accepting with
// action. Pattern-compile errors bubble up before this is called; AddPath
// itself only fails on structural misuse (e.g. re-registering the same
// path with a different action is allowed — last write wins — but nil
// rules are rejected).
func (d *Disassembler) AddPath(rules []Rule, action Action) error {
	if action == nil {
		return errors.New("disasm: AddPath requires a non-nil action")
	}
	v := 0
	for _, r := range rules {
		if r == nil {
			return errors.New("disasm: AddPath: nil rule in path")
		}
		found := -1
		for _, e := range d.edges[v] {
			if ruleEqual(e.rule, r) {
				found = e.to
				break
			}
		}
		if found < 0 {
			found = len(d.edges)
			d.edges = append(d.edges, nil)
			d.edges[v] = append(d.edges[v], edge{rule: r, to: found})
		}
		v = found
	}
	d.accept[v] = action
	return nil
}

// AddOptionalPath expands any Optional rules in path and registers every
// resulting concrete path with action.
func (d *Disassembler) AddOptionalPath(path []Rule, action Action) error {
	for _, concrete := range Expand(path) {
		if err := d.AddPath(concrete, action); err != nil {
			return err
		}
	}
	return nil
}

func (d *Disassembler) isAccepting(v int) (Action, bool) {
	a, ok := d.accept[v]
	return a, ok
}
