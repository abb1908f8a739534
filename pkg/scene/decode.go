package scene

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/archdiagram/pkg/errors"
)

// Document formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported scene file %q (want .toml, .yaml or .yml)", path)
	}
}

// Load reads, parses and validates the scene at path.
func Load(path string) (*Scene, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scene %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "read scene %s", path)
	}
	s, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Parse decodes a scene document without validating it.
// Unknown keys are rejected in both formats.
func Parse(data []byte, format string) (*Scene, error) {
	switch format {
	case FormatTOML:
		return parseTOML(data)
	case FormatYAML:
		return parseYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported scene format %q", format)
	}
}

type tomlDocument struct {
	Title    string            `toml:"title"`
	Canvas   CanvasSpec        `toml:"canvas"`
	Palette  map[string]string `toml:"palette"`
	Elements []toml.Primitive  `toml:"element"`
}

type elementHead struct {
	Kind string `toml:"kind" yaml:"kind"`
	ID   string `toml:"id" yaml:"id"`
}

func parseTOML(data []byte) (*Scene, error) {
	var doc tomlDocument
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse toml")
	}

	s := &Scene{Title: doc.Title, Canvas: doc.Canvas, Palette: doc.Palette}
	for i, prim := range doc.Elements {
		var head elementHead
		if err := md.PrimitiveDecode(prim, &head); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "element[%d]", i)
		}
		el, body, err := newElement(head)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "element[%d]", i)
		}
		if err := md.PrimitiveDecode(prim, body); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "element[%d] (%s)", i, head.Kind)
		}
		s.Elements = append(s.Elements, el)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidScene, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return s, nil
}

func parseYAML(data []byte) (*Scene, error) {
	var s Scene
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if err == io.EOF {
			return nil, errors.New(errors.ErrCodeInvalidScene, "empty scene document")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "parse yaml")
	}
	return &s, nil
}

// UnmarshalYAML decodes the kind first and then the matching body,
// rejecting keys the body does not define.
func (e *Element) UnmarshalYAML(node *yaml.Node) error {
	var head elementHead
	if err := node.Decode(&head); err != nil {
		return err
	}
	el, body, err := newElement(head)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}

	if err := decodeStrict(node, body); err != nil {
		return fmt.Errorf("line %d: %s element: %w", node.Line, head.Kind, err)
	}
	*e = el
	return nil
}

// decodeStrict decodes node into body with the head keys removed, so any
// key the body does not define is an error.
func decodeStrict(node *yaml.Node, body any) error {
	stripped := *node
	if node.Kind == yaml.MappingNode {
		stripped.Content = make([]*yaml.Node, 0, len(node.Content))
		for i := 0; i+1 < len(node.Content); i += 2 {
			switch node.Content[i].Value {
			case "kind", "id":
				continue
			}
			stripped.Content = append(stripped.Content, node.Content[i], node.Content[i+1])
		}
	}
	raw, err := yaml.Marshal(&stripped)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(body)
}

// newElement allocates the body for head.Kind and returns the element
// together with a pointer to decode into.
func newElement(head elementHead) (Element, any, error) {
	el := Element{Kind: head.Kind, ID: head.ID}
	var body any
	switch head.Kind {
	case KindPanel:
		el.Panel = &PanelElement{}
		body = el.Panel
	case KindLabel:
		el.Label = &LabelElement{}
		body = el.Label
	case KindSection:
		el.Section = &SectionElement{}
		body = el.Section
	case KindConnector:
		el.Connector = &ConnectorElement{}
		body = el.Connector
	case KindCard:
		el.Card = &CardElement{}
		body = el.Card
	case KindService:
		el.Service = &ServiceElement{}
		body = el.Service
	case KindNode:
		el.Node = &NodeElement{}
		body = el.Node
	case KindMonitor:
		el.Monitor = &MonitorElement{}
		body = el.Monitor
	case KindTable:
		el.Table = &TableElement{}
		body = el.Table
	case KindKeys:
		el.Keys = &KeysElement{}
		body = el.Keys
	case KindList:
		el.List = &ListElement{}
		body = el.List
	case "":
		return el, nil, fmt.Errorf("missing element kind")
	default:
		return el, nil, fmt.Errorf("unknown element kind %q (want one of %s)", head.Kind, strings.Join(Kinds, ", "))
	}
	return el, body, nil
}

// LoadPalette reads a standalone palette override file. TOML files hold a
// [palette] table; YAML files a top-level "palette" mapping.
func LoadPalette(path string) (map[string]string, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "palette %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "read palette %s", path)
	}

	var doc struct {
		Palette map[string]string `toml:"palette" yaml:"palette"`
	}
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "parse palette %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidColor, "palette %s: unknown key %s", path, undecoded[0])
		}
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidColor, err, "parse palette %s", path)
		}
	}
	if err := validatePalette(doc.Palette); err != nil {
		return nil, err
	}
	return doc.Palette, nil
}
