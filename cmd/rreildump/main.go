// Command rreildump drives the core lifting pipeline (region -> architecture
// -> function) over a byte image and prints the resulting basic blocks and
// control-flow graph. The ISA is supplied by an arch.Architecture; until a
// real ISA plugin is wired in, archdemo.Demo stands in for one so the tool
// has something to lift.
package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/gridforge/rreil/archdemo"
	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/function"
	"github.com/gridforge/rreil/il"
	"github.com/gridforge/rreil/region"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Config is the TOML-loaded run configuration: where the image comes from,
// where to start disassembling, and what to name the lifted function.
// Real ISAs have more to configure here (ARM/Thumb mode, segment bases);
// the demo architecture only needs an entry address.
type Config struct {
	Input string `toml:"input"`
	Entry uint64 `toml:"entry"`
	Name  string `toml:"name"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rreildump",
		Short: "Lift a byte image into basic blocks and a control-flow graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := Config{Entry: 0, Name: "func_0"}
			if configPath != "" {
				if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
			}
			return run(cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML run configuration")
	return cmd
}

func run(cfg Config) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	reg, closeFn, err := openRegion(cfg.Input)
	if err != nil {
		return fmt.Errorf("opening region: %w", err)
	}
	defer closeFn()

	arch, err := demoArchitecture()
	if err != nil {
		return fmt.Errorf("building architecture: %w", err)
	}

	fn, err := function.New(arch, cfg.Entry, reg, nil, function.WithName(cfg.Name), function.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("building function: %w", err)
	}

	fmt.Print(fn.String())
	return nil
}

// openRegion maps path read-only, or falls back to a small built-in demo
// program when no input is given — enough to exercise the pipeline without
// requiring a real binary on disk.
func openRegion(path string) (region.Region, func(), error) {
	if path == "" {
		return region.NewBytes([]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}, 0), func() {}, nil
	}
	fr, err := region.OpenFile(path, 0)
	if err != nil {
		return nil, nil, err
	}
	return fr, func() { fr.Close() }, nil
}

// demoArchitecture builds the same six-mnemonic straight-line program used
// in the function package's own tests, standing in for a real decode table.
func demoArchitecture() (*archdemo.Demo, error) {
	instrs := make(map[byte]archdemo.InstrSpec)
	for b := byte(0); b < 6; b++ {
		instrs[b] = archdemo.InstrSpec{
			Opcode: fmt.Sprintf("op%d", b),
			Jumps: []archdemo.JumpSpec{{
				Target: il.Constant{Value: uint64(b) + 1, Width: 64},
				Guard:  disasm.AlwaysGuard,
			}},
		}
	}
	return archdemo.New(instrs, 0)
}
