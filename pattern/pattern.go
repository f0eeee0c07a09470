// Package pattern compiles a bit-pattern string syntax ("0", "1", ".",
// "name@bits…", whitespace) into disasm.Terminal rules. Compile errors
// are programmer errors: bad characters, unnamed capture groups, or a
// pattern that doesn't consume exactly the token's bit width.
package pattern

import (
	"strings"

	"github.com/gridforge/rreil/disasm"
	"github.com/gridforge/rreil/token"
	"github.com/pkg/errors"
)

// Compile parses pattern against a token of bitWidth bits (e.g. 8 for a
// one-byte ISA token, 16 for a two-byte one) and returns the equivalent
// Terminal rule.
func Compile(pattern string, bitWidth int) (disasm.Terminal, error) {
	bits, groupOf, err := scan(pattern)
	if err != nil {
		return disasm.Terminal{}, err
	}
	if len(bits) != bitWidth {
		return disasm.Terminal{}, errors.Errorf(
			"pattern: %q consumes %d bits, want %d", pattern, len(bits), bitWidth)
	}

	var mask, pat token.Token
	groupMasks := make(map[string]token.Token)
	var groupOrder []string
	for i, b := range bits {
		shift := uint(bitWidth-1-i)
		switch b {
		case '0':
			mask |= 1 << shift
		case '1':
			mask |= 1 << shift
			pat |= 1 << shift
		case '.':
			// don't-care: contributes to neither mask nor pattern.
		default:
			return disasm.Terminal{}, errors.Errorf("pattern: %q: unreachable bit char %q", pattern, b)
		}
		if g := groupOf[i]; g != "" {
			if _, ok := groupMasks[g]; !ok {
				groupOrder = append(groupOrder, g)
			}
			groupMasks[g] |= 1 << shift
		}
	}

	groups := make([]disasm.CaptureGroup, 0, len(groupOrder))
	for _, name := range groupOrder {
		groups = append(groups, disasm.CaptureGroup{Name: name, Mask: groupMasks[name]})
	}
	return disasm.Terminal{Mask: mask, Pattern: pat, Groups: groups}, nil
}

// scan tokenizes pattern into a slice of bit characters ('0','1','.') and a
// parallel slice naming, for each bit, the capture group it belongs to (""
// if none). Whitespace is a separator only; "name@" introduces a group that
// extends until the next whitespace or end of string.
func scan(pattern string) ([]byte, []string, error) {
	var bits []byte
	var groupOf []string

	fields := strings.Fields(pattern)
	for _, field := range fields {
		name := ""
		body := field
		if i := strings.IndexByte(field, '@'); i >= 0 {
			name = field[:i]
			body = field[i+1:]
			if name == "" {
				return nil, nil, errors.Errorf("pattern: %q: unnamed capture group", pattern)
			}
		}
		if strings.Count(body, "@") > 0 {
			return nil, nil, errors.Errorf("pattern: %q: misplaced '@' inside group body", pattern)
		}
		if body == "" {
			return nil, nil, errors.Errorf("pattern: %q: empty field", pattern)
		}
		for _, c := range []byte(body) {
			switch c {
			case '0', '1', '.':
				bits = append(bits, c)
				groupOf = append(groupOf, name)
			default:
				return nil, nil, errors.Errorf("pattern: %q: bad bit character %q", pattern, c)
			}
		}
	}
	return bits, groupOf, nil
}
