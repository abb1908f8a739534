// Package palette maps symbolic color roles to concrete colors.
//
// A [Palette] is built once from a role → hex table and is read-only
// afterwards. Drawing code never carries literal colors: every descriptor
// names a [Role], and the canvas resolves it through the palette at call
// time. Re-theming a diagram is therefore a matter of substituting the
// palette, not editing any drawing code.
//
// Resolving an undefined role is a caller error and always fails with
// [errors.ErrCodeUnknownRole]; there is no fallback color.
package palette

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/archdiagram/pkg/errors"
)

// Role is the symbolic name of a color, e.g. "panel-background".
type Role string

// Palette is an immutable role → color table.
type Palette struct {
	colors map[Role]color.NRGBA
	hex    map[Role]string
}

// New parses every entry and returns a frozen palette.
// Role names must satisfy [errors.ValidateRoleName] and values must be
// "#rgb", "#rrggbb" or "#rrggbbaa".
func New(entries map[Role]string) (*Palette, error) {
	p := &Palette{
		colors: make(map[Role]color.NRGBA, len(entries)),
		hex:    make(map[Role]string, len(entries)),
	}
	for _, role := range slices.Sorted(maps.Keys(entries)) {
		if err := errors.ValidateRoleName(string(role)); err != nil {
			return nil, err
		}
		value := entries[role]
		c, err := ParseHex(value)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "role %q", role)
		}
		p.colors[role] = c
		p.hex[role] = strings.ToLower(value)
	}
	return p, nil
}

// Resolve returns the color bound to role.
func (p *Palette) Resolve(role Role) (color.NRGBA, error) {
	c, ok := p.colors[role]
	if !ok {
		return color.NRGBA{}, errors.New(errors.ErrCodeUnknownRole, "undefined color role %q", role)
	}
	return c, nil
}

// MustResolve is like Resolve but panics on an undefined role.
func (p *Palette) MustResolve(role Role) color.NRGBA {
	c, err := p.Resolve(role)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether role is defined.
func (p *Palette) Has(role Role) bool {
	_, ok := p.colors[role]
	return ok
}

// Hex returns the hex string role was defined with.
func (p *Palette) Hex(role Role) (string, error) {
	h, ok := p.hex[role]
	if !ok {
		return "", errors.New(errors.ErrCodeUnknownRole, "undefined color role %q", role)
	}
	return h, nil
}

// Roles returns all defined roles in sorted order.
func (p *Palette) Roles() []Role {
	return slices.Sorted(maps.Keys(p.colors))
}

// Len returns the number of defined roles.
func (p *Palette) Len() int { return len(p.colors) }

// Entries returns a copy of the role → hex table.
func (p *Palette) Entries() map[Role]string {
	return maps.Clone(p.hex)
}

// Merge returns a new palette with overrides applied on top of p.
// The receiver is left untouched.
func (p *Palette) Merge(overrides map[Role]string) (*Palette, error) {
	entries := p.Entries()
	maps.Copy(entries, overrides)
	return New(entries)
}

// ParseHex parses "#rgb", "#rrggbb" or "#rrggbbaa" into a color.
func ParseHex(s string) (color.NRGBA, error) {
	if !strings.HasPrefix(s, "#") {
		return color.NRGBA{}, fmt.Errorf("color %q must start with '#'", s)
	}

	alpha := uint8(0xff)
	rgb := s
	switch len(s) {
	case 4, 7:
	case 9:
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("color %q: invalid alpha: %w", s, err)
		}
		alpha = uint8(a)
		rgb = s[:7]
	default:
		return color.NRGBA{}, fmt.Errorf("color %q must be #rgb, #rrggbb or #rrggbbaa", s)
	}

	c, err := colorful.Hex(rgb)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
