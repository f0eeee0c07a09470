package function

import (
	"sort"

	"github.com/google/uuid"
	"github.com/gridforge/rreil/arch"
	"github.com/gridforge/rreil/bitcode"
	"github.com/gridforge/rreil/cfg"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/region"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Option configures New.
type Option func(*options)

type options struct {
	name   string
	logger *zap.Logger
}

// WithName sets the function's display name (default: empty).
func WithName(name string) Option { return func(o *options) { o.name = name } }

// WithLogger overrides the logger used to report decode failures
// (default: a no-op logger, matching the ambient stack's convention of
// never panicking on expected, recoverable conditions).
func WithLogger(l *zap.Logger) Option { return func(o *options) { o.logger = l } }

// New drives architecture a's decoder from entryAddr over reg until the
// worklist of discovered addresses drains, then assembles the result
// into basic blocks and a CFG.
func New(a arch.Architecture, entryAddr uint64, reg region.Region, config any, opts ...Option) (*Function, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	f := &Function{
		Name:      o.name,
		UUID:      uuid.New(),
		entryAddr: entryAddr,
		bySource:  make(map[uint64][]transfer),
		byDest:    make(map[uint64][]transfer),
		logger:    o.logger,
	}

	f.disassemble(a, reg, config, []uint64{entryAddr})

	if err := f.assemble(); err != nil {
		return nil, err
	}
	return f, nil
}

// disassemble drains worklist, decoding each not-yet-visited address via
// a and recording its mnemonics and outgoing transfers. It is shared by
// New and Extend.
func (f *Function) disassemble(a arch.Architecture, reg region.Region, config any, worklist []uint64) {
	visited := make(map[uint64]bool)
	for _, m := range f.Mnemonics {
		visited[m.AreaStart] = true
	}

	for len(worklist) > 0 {
		a0 := worklist[0]
		worklist = worklist[1:]

		if visited[a0] {
			continue
		}
		if idx := f.mnemonicAt(a0); idx >= 0 {
			continue
		}
		if idx := f.mnemonicContaining(a0); idx >= 0 {
			f.logger.Warn("misaligned jump target", zap.Uint64("address", a0), zap.Uint64("mnemonic_start", f.Mnemonics[idx].AreaStart))
			continue
		}
		visited[a0] = true

		st, err := a.Decode(reg, a0, config)
		if err != nil || st == nil {
			f.logger.Warn("decode failed", zap.Uint64("address", a0), zap.Error(err))
			continue
		}

		for _, m := range st.Mnemonics {
			f.insertMnemonic(Mnemonic{
				AreaStart:  m.AreaStart,
				AreaEnd:    m.AreaEnd,
				Opcode:     m.Opcode,
				Format:     m.Format,
				Operands:   m.Operands,
				Statements: m.Statements,
			})
		}
		for _, j := range st.Jumps {
			t := transfer{Origin: j.Origin, Target: j.Target, Guard: j.Guard}
			f.bySource[j.Origin] = append(f.bySource[j.Origin], t)
			if c, ok := il.IsConstant(j.Target); ok {
				f.byDest[c.Value] = append(f.byDest[c.Value], t)
				worklist = append(worklist, c.Value)
			}
		}
	}
}

// assemble partitions the mnemonic list into basic blocks, builds the
// CFG, reverse-post-orders it, emits bitcode, and reorders the
// basic-block array to match.
func (f *Function) assemble() error {
	blocks := f.partition()

	startIdx := make(map[uint64]int, len(blocks))
	for i, b := range blocks {
		startIdx[b.AreaStart] = i
	}

	g := cfg.New()
	nodeOf := make([]cfg.NodeIndex, len(blocks))
	for i := range blocks {
		nodeOf[i] = g.AddBlockNode(i)
	}
	unresolved := make(map[string]cfg.NodeIndex)

	for i, b := range blocks {
		last := f.Mnemonics[b.MneEnd-1]
		for _, t := range f.bySource[last.AreaEnd] {
			if c, ok := il.IsConstant(t.Target); ok {
				if dst, ok := startIdx[c.Value]; ok {
					g.AddEdge(nodeOf[i], nodeOf[dst], t.Guard)
					continue
				}
			}
			key := valueKey(t.Target)
			n, ok := unresolved[key]
			if !ok {
				n = g.AddUnresolvedNode(t.Target)
				unresolved[key] = n
			}
			g.AddEdge(nodeOf[i], n, t.Guard)
		}
	}

	entryBlockIdx, ok := startIdx[f.entryAddr]
	if !ok {
		return errors.Errorf("function: no basic block starts at entry address %#x", f.entryAddr)
	}
	order, err := g.ReversePostOrder(nodeOf[entryBlockIdx])
	if err != nil {
		return errors.Wrap(err, "function: reverse post-order")
	}

	bc := bitcode.New(nil)
	newBlocks := make([]BasicBlock, 0, len(blocks))
	oldToNew := make(map[int]int, len(blocks))

	for _, n := range order {
		node := g.Nodes[n]
		if !node.IsBlock {
			continue
		}
		oldIdx := node.Block
		b := blocks[oldIdx]
		stmtStart := len(bc.Buf)
		for mi := b.MneStart; mi < b.MneEnd; mi++ {
			r := bc.Append(f.Mnemonics[mi].Statements)
			f.Mnemonics[mi].StmtRange = r
		}
		b.StmtRange = bitcode.Range{Start: stmtStart, End: len(bc.Buf)}
		newIdx := len(newBlocks)
		oldToNew[oldIdx] = newIdx
		newBlocks = append(newBlocks, b)
	}
	for i := range g.Nodes {
		if g.Nodes[i].IsBlock {
			g.Nodes[i].Block = oldToNew[g.Nodes[i].Block]
		}
	}
	for i := range newBlocks {
		newBlocks[i].CFGNode = cfg.NodeIndex(indexOfNode(g, i))
	}

	f.Bitcode = bc
	f.BasicBlocks = newBlocks
	f.CFG = g
	f.EntryPoint = oldToNew[entryBlockIdx]
	return nil
}

// indexOfNode finds the NodeIndex of the block node whose Block field
// equals blockIdx.
func indexOfNode(g *cfg.Graph, blockIdx int) cfg.NodeIndex {
	n, _ := g.BlockNodeOf(blockIdx)
	return n
}

// partition splits the sorted mnemonic list into basic blocks at byte
// gaps, mismatched control transfers, and the entry address.
func (f *Function) partition() []BasicBlock {
	if len(f.Mnemonics) == 0 {
		return nil
	}
	var blocks []BasicBlock
	start := 0
	for i := 1; i <= len(f.Mnemonics); i++ {
		boundary := i == len(f.Mnemonics)
		if !boundary {
			a, b := f.Mnemonics[i-1], f.Mnemonics[i]
			if a.AreaEnd != b.AreaStart {
				boundary = true
			}
			if !boundary {
				for _, t := range f.bySource[a.AreaEnd] {
					if c, ok := il.IsConstant(t.Target); ok && c.Value != b.AreaStart {
						boundary = true
						break
					}
				}
			}
			if !boundary {
				for _, t := range f.byDest[b.AreaStart] {
					if t.Origin != a.AreaEnd {
						boundary = true
						break
					}
				}
			}
			if !boundary && b.AreaStart == f.entryAddr {
				boundary = true
			}
		}
		if boundary {
			blocks = append(blocks, BasicBlock{
				AreaStart: f.Mnemonics[start].AreaStart,
				AreaEnd:   f.Mnemonics[i-1].AreaEnd,
				MneStart:  start,
				MneEnd:    i,
			})
			start = i
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].AreaStart < blocks[j].AreaStart })
	return blocks
}
