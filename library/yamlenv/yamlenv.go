package yamlenv

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

var regexEnv = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)(:-(.*))?\}$`)

// Env[T] — yaml-значение с подстановкой переменных окружения.
// Поддерживает формы: literal, ${VAR}, ${VAR:-default}.
type Env[T any] struct {
	Value T
}

func (e *Env[T]) UnmarshalYAML(node *yaml.Node) error {
	raw := node.Value

	if m := regexEnv.FindStringSubmatch(raw); m != nil {
		v, ok := os.LookupEnv(m[1])
		if !ok {
			if m[2] == "" {
				return fmt.Errorf("environment variable %s is not set", m[1])
			}
			v = m[3]
		}
		raw = v
	}

	return e.set(raw)
}

func (e *Env[T]) set(raw string) error {
	var out any = &e.Value

	switch p := out.(type) {
	case *string:
		*p = raw
	case *int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid int value %q: %w", raw, err)
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid bool value %q: %w", raw, err)
		}
		*p = v
	default:
		return yaml.Unmarshal([]byte(raw), &e.Value)
	}

	return nil
}
