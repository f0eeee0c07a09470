package function

import (
	"github.com/gridforge/rreil/arch"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/region"
)

// ResolveIndirectJump replaces every CFG target labelled with variable v
// by the constant c, in both the current CFG and the recorded transfers
// Extend will rebuild from. Returns whether any replacement occurred.
func (f *Function) ResolveIndirectJump(v il.Variable, c il.Constant) bool {
	replaced := false
	for i := range f.CFG.Nodes {
		n := &f.CFG.Nodes[i]
		if n.IsBlock {
			continue
		}
		if vv, ok := il.IsVariable(n.Unresolved); ok && vv.Equal(v) {
			n.Unresolved = c
			replaced = true
		}
	}
	if !replaced {
		return false
	}
	for origin, ts := range f.bySource {
		for i, t := range ts {
			vv, ok := il.IsVariable(t.Target)
			if !ok || !vv.Equal(v) {
				continue
			}
			ts[i].Target = c
			f.byDest[c.Value] = append(f.byDest[c.Value], transfer{Origin: origin, Target: c, Guard: t.Guard})
		}
		f.bySource[origin] = ts
	}
	return true
}

// Extend re-enumerates known transfers, seeds the worklist with targets
// that are now constant but not yet disassembled, and reruns assembly
// from the function's original entry point.
func (f *Function) Extend(a arch.Architecture, reg region.Region, config any) error {
	var worklist []uint64
	for addr := range f.byDest {
		if f.mnemonicAt(addr) < 0 {
			worklist = append(worklist, addr)
		}
	}
	f.disassemble(a, reg, config, worklist)
	return f.assemble()
}
