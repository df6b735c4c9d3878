package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// parsers convert a raw env value into a field value, keyed by kind.
// time.Duration is matched by type before this table is consulted.
var parsers = map[reflect.Kind]func(raw string) (any, error){
	reflect.String: func(raw string) (any, error) { return raw, nil },
	reflect.Int: func(raw string) (any, error) {
		n, err := strconv.Atoi(raw)
		return n, err
	},
	reflect.Int64: func(raw string) (any, error) {
		return strconv.ParseInt(raw, 10, 64)
	},
	reflect.Bool: func(raw string) (any, error) {
		return strconv.ParseBool(raw)
	},
	reflect.Float64: func(raw string) (any, error) {
		return strconv.ParseFloat(raw, 64)
	},
}

// loadFromEnvironment walks the config tree and fills every field carrying
// an `env` tag, falling back to its `default` tag. All bad values are
// reported together.
func loadFromEnvironment(config *Config) error {
	return errors.Join(loadSection(reflect.ValueOf(config).Elem())...)
}

func loadSection(section reflect.Value) []error {
	var errs []error
	sectionType := section.Type()

	for i := range section.NumField() {
		field, meta := section.Field(i), sectionType.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != durationType {
			errs = append(errs, loadSection(field)...)
			continue
		}

		name := meta.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := os.LookupEnv(name)
		if !ok || raw == "" {
			raw = meta.Tag.Get("default")
		}
		if raw == "" {
			continue
		}
		if err := assign(field, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s=%q: %w", name, raw, err))
		}
	}
	return errs
}

func assign(field reflect.Value, raw string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("not a duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	parse, ok := parsers[field.Kind()]
	if !ok {
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	v, err := parse(raw)
	if err != nil {
		return fmt.Errorf("not a %s: %w", field.Kind(), err)
	}
	field.Set(reflect.ValueOf(v).Convert(field.Type()))
	return nil
}
