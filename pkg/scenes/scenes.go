// Package scenes embeds the built-in diagram documents.
package scenes

import (
	"embed"
	"path"
	"slices"
	"strings"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/scene"
)

// Default is the scene rendered when no scene file is given.
const Default = "price-alert"

//go:embed *.toml
var files embed.FS

// Names lists the built-in scenes in sorted order.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// Source returns the raw TOML of a built-in scene.
func Source(name string) ([]byte, error) {
	data, err := files.ReadFile(name + ".toml")
	if err != nil {
		return nil, errors.New(errors.ErrCodeUnknownScene, "unknown scene %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Load parses and validates a built-in scene.
func Load(name string) (*scene.Scene, error) {
	data, err := Source(name)
	if err != nil {
		return nil, err
	}
	s, err := scene.Parse(data, scene.FormatTOML)
	if err != nil {
		return nil, err
	}
	if err := scene.Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}
