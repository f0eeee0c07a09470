// Package arch defines the single extension point through which an
// ISA plugs into the core: a token width, a CPU-mode configuration
// type, entry-point discovery, and per-address decoding.
// Concrete ISAs (decode tables, loaders) are deliberately out of scope
// of this module; archdemo provides a minimal fixture implementation
// used by the function package's own tests.
package arch

import (
	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/region"
	"github.com/gridforge/rreil/token"
)

// EntryPoint is one discovered starting address for disassembly,
// produced by Architecture.Prepare.
type EntryPoint struct {
	Name    string
	Address uint64
	Comment string
}

// Architecture is the adapter trait an ISA implements. Configuration is
// opaque to the core — it is threaded through disasm.State.Configuration
// and type-asserted by the architecture's own semantic actions.
type Architecture interface {
	// TokenWidth is the byte width of one token for this ISA (1, 2, 4, ...).
	TokenWidth() int

	// Endian is the byte order tokens are assembled in.
	Endian() token.Endian

	// Prepare discovers entry points in reg under the given initial
	// configuration, e.g. by reading a format-specific header. Binary
	// format loaders themselves are out of scope; an Architecture may
	// return a single synthetic entry point if that's all it needs.
	Prepare(reg region.Region, config any) ([]EntryPoint, error)

	// Decode consumes one instruction's worth of tokens at address and
	// returns the resulting State, or nil if nothing matched.
	Decode(reg region.Region, address uint64, config any) (*disasm.State, error)
}
