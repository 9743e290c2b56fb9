package plugins

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/printdesk/pkg/domain"
)

// DecodeOptions decodes raw printing options into the printer's option struct.
// Each declared option is decoded on its own so errors are reported per field.
// Undeclared keys are ignored.
func DecodeOptions(p LabelPrinter, raw map[string]any) (any, error) {
	target := p.NewOptions()
	if target == nil {
		return nil, nil
	}
	fields := p.PrintingOptions()

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	verr := domain.NewValidationError()
	for _, name := range names {
		f := fields[name]
		v, ok := raw[name]
		if !ok || v == nil {
			if f.Required {
				verr.Add(name, "This field is required.")
				continue
			}
			if f.Default == nil {
				continue
			}
			v = f.Default
		}

		if err := decodeStrict(map[string]any{name: v}, target); err != nil {
			verr.Add(name, optionMessage(f.Type))
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return target, nil
}

func decodeStrict(input map[string]any, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "mapstructure",
		WeaklyTypedInput: false,
		DecodeHook:       mapstructure.DecodeHookFuncKind(rejectFraction),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// rejectFraction refuses floats with a fractional part for integer targets.
func rejectFraction(from, to reflect.Kind, data any) (any, error) {
	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	if from != reflect.Float32 && from != reflect.Float64 {
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not an integer", data)
	}
	return data, nil
}

func optionMessage(t domain.FieldType) string {
	switch t {
	case domain.FieldInteger:
		return "A valid integer is required."
	case domain.FieldBoolean:
		return "Must be a valid boolean."
	case domain.FieldString:
		return "Not a valid string."
	default:
		return fmt.Sprintf("Invalid value for %s field.", t)
	}
}
