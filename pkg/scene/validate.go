package scene

import (
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/archdiagram/pkg/errors"
	"github.com/matzehuels/archdiagram/pkg/palette"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	identPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return errors.ValidateRoleName(fl.Field().String()) == nil
		})

		_ = v.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
			return identPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("palettecolor", func(fl validator.FieldLevel) bool {
			_, err := palette.ParseHex(fl.Field().String())
			return err == nil
		})

		validateInst = v
	})

	return validateInst
}

// Validate checks a parsed scene: field constraints, element bodies, id
// references, and element order. It finishes with a dry-run assembly so
// that a scene which validates also builds.
func Validate(s *Scene) error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidScene, "scene is nil")
	}

	v := validatorInstance()
	if err := v.Struct(s); err != nil {
		return convertValidationError(err)
	}

	ids := make(map[string]int, len(s.Elements))
	for i, el := range s.Elements {
		if err := validateElement(el); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", fieldForElement(i, el.Kind))
		}
		if el.ID == "" {
			continue
		}
		if j, exists := ids[el.ID]; exists {
			return errors.New(errors.ErrCodeInvalidScene, "%s: duplicate id %q (first used by element[%d])", fieldForElement(i, el.Kind), el.ID, j)
		}
		ids[el.ID] = i
	}

	for i, el := range s.Elements {
		if el.Kind != KindConnector {
			continue
		}
		for _, ref := range []string{el.Connector.FromID, el.Connector.ToID} {
			if ref == "" {
				continue
			}
			j, ok := ids[ref]
			if !ok {
				return errors.New(errors.ErrCodeInvalidScene, "%s: references unknown id %q", fieldForElement(i, el.Kind), ref)
			}
			if s.Elements[j].Kind == KindConnector {
				return errors.New(errors.ErrCodeInvalidScene, "%s: id %q names another connector", fieldForElement(i, el.Kind), ref)
			}
		}
	}

	if err := checkOrder(s.Elements); err != nil {
		return err
	}

	if _, err := Build(s); err != nil {
		return err
	}
	return nil
}

// foreground kinds must never be covered by a section background.
var foreground = map[string]bool{
	KindConnector: true,
	KindCard:      true,
	KindService:   true,
	KindNode:      true,
	KindMonitor:   true,
}

func checkOrder(elements []Element) error {
	first := -1
	for i, el := range elements {
		if foreground[el.Kind] && first < 0 {
			first = i
		}
		if el.Kind == KindSection && first >= 0 {
			return errors.New(errors.ErrCodeInvalidScene,
				"%s: sections must come before cards and connectors (element[%d] is a %s)",
				fieldForElement(i, el.Kind), first, elements[first].Kind)
		}
	}
	return nil
}

// validateElement checks that the body matching Kind is present and that
// no other body is set.
func validateElement(el Element) error {
	bodies := map[string]bool{
		KindPanel:     el.Panel != nil,
		KindLabel:     el.Label != nil,
		KindSection:   el.Section != nil,
		KindConnector: el.Connector != nil,
		KindCard:      el.Card != nil,
		KindService:   el.Service != nil,
		KindNode:      el.Node != nil,
		KindMonitor:   el.Monitor != nil,
		KindTable:     el.Table != nil,
		KindKeys:      el.Keys != nil,
		KindList:      el.List != nil,
	}
	if !bodies[el.Kind] {
		return fmt.Errorf("%s configuration is required", el.Kind)
	}
	for _, kind := range slices.Sorted(maps.Keys(bodies)) {
		if bodies[kind] && kind != el.Kind {
			return fmt.Errorf("unexpected %s configuration on a %s element", kind, el.Kind)
		}
	}

	switch el.Kind {
	case KindLabel:
		if el.Label.Text != "" && len(el.Label.Lines) > 0 {
			return fmt.Errorf("text and lines are mutually exclusive")
		}
	case KindTable:
		for r, row := range el.Table.Rows {
			if len(row) != len(el.Table.Columns) {
				return fmt.Errorf("rows[%d] has %d cells, want %d", r, len(row), len(el.Table.Columns))
			}
		}
	}
	return nil
}

func validatePalette(entries map[string]string) error {
	for _, role := range slices.Sorted(maps.Keys(entries)) {
		if err := errors.ValidateRoleName(role); err != nil {
			return err
		}
		if _, err := palette.ParseHex(entries[role]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidColor, err, "role %q", role)
		}
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		if ve.Param() != "" {
			msg = fmt.Sprintf("%s failed validation for tag '%s=%s'", field, ve.Tag(), ve.Param())
		}
		return errors.Wrap(errors.ErrCodeInvalidScene, err, "%s", msg)
	}

	return errors.Wrap(errors.ErrCodeInvalidScene, err, "scene")
}

// yamlishFieldName turns "Scene.elements[3].Box.w" into "elements[3].w".
func yamlishFieldName(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	kept := make([]string, 0, len(parts))
	for i, part := range parts {
		if i == 0 && part == "Scene" {
			continue
		}
		switch part {
		case "Box", "Panel", "Label", "Section", "Connector", "Card",
			"Service", "Node", "Monitor", "Table", "Keys", "List":
			continue
		}
		kept = append(kept, strings.ToLower(part))
	}
	return strings.Join(kept, ".")
}

func fieldForElement(index int, kind string) string {
	return fmt.Sprintf("element[%d] (%s)", index, kind)
}
