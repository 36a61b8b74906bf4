package smcore

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultsConfigEnv names the environment variable pointing at a defaults
// configuration document.
const DefaultsConfigEnv = "SMCORE_DEFAULTS_CONFIG"

// GlobalDefaultsKey is the pseudo-resource under which service-wide defaults
// live in a defaults document.
const GlobalDefaultsKey = "GlobalDefaults"

// AttributeSchema describes one configurable attribute in the configuration
// schema: its scalar type, or its item type for list attributes.
type AttributeSchema struct {
	Type  string           `yaml:"type" json:"type"`
	Items *AttributeSchema `yaml:"items,omitempty" json:"items,omitempty"`
}

// ConfigurationSchema maps resource names to the attribute paths that may be
// filled from layered defaults. It is generated alongside the resource
// classes and bundled for runtime default-resolution.
type ConfigurationSchema map[string]map[string]AttributeSchema

// DefaultsConfig is a parsed defaults document: per-resource attribute
// defaults plus the GlobalDefaults section.
type DefaultsConfig struct {
	SchemaVersion string                    `yaml:"SchemaVersion"`
	Resources     map[string]map[string]any `yaml:"Resources"`
}

// LoadDefaultsConfig reads a defaults document (YAML, which includes JSON)
// from the given path, falling back to DefaultsConfigEnv when path is empty.
// A missing or unreadable source is not an error: resource construction must
// stay usable without a configuration source, so failures are reported to
// the caller only for logging and an empty config is returned alongside.
func LoadDefaultsConfig(path string) (*DefaultsConfig, error) {
	empty := &DefaultsConfig{Resources: map[string]map[string]any{}}
	if path == "" {
		path = os.Getenv(DefaultsConfigEnv)
	}
	if path == "" {
		return empty, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return empty, fmt.Errorf("read defaults config %s: %w", path, err)
	}
	var cfg DefaultsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return empty, fmt.Errorf("parse defaults config %s: %w", path, err)
	}
	if cfg.Resources == nil {
		cfg.Resources = map[string]map[string]any{}
	}
	return &cfg, nil
}

// DefaultsResolver applies layered configuration defaults to call arguments.
// Precedence, first non-nil wins: explicit call-time value, resource-scoped
// default, global default.
type DefaultsResolver struct {
	Config *DefaultsConfig
	Schema ConfigurationSchema
	Logger *slog.Logger
}

// NewDefaultsResolver builds a resolver over a loaded config and the
// generated configuration schema. A nil config behaves as empty.
func NewDefaultsResolver(cfg *DefaultsConfig, schema ConfigurationSchema, logger *slog.Logger) *DefaultsResolver {
	if cfg == nil {
		cfg = &DefaultsConfig{Resources: map[string]map[string]any{}}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultsResolver{Config: cfg, Schema: schema, Logger: logger}
}

// Value resolves a single attribute default for a resource: resource-scoped
// first, then global. The second return is false when neither source has it.
func (r *DefaultsResolver) Value(resource, attribute string) (any, bool) {
	if defaults, ok := r.Config.Resources[resource]; ok {
		if v, ok := defaults[attribute]; ok && v != nil {
			return v, true
		}
	}
	if defaults, ok := r.Config.Resources[GlobalDefaultsKey]; ok {
		if v, ok := defaults[attribute]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Apply fills configurable attributes that the caller left unset. Only
// attributes listed in the configuration schema for the resource are
// considered; args is modified in place and also returned. Explicit values
// always win.
func (r *DefaultsResolver) Apply(resource string, args map[string]any) map[string]any {
	attrs, ok := r.Schema[resource]
	if !ok {
		return args
	}
	for attr := range attrs {
		if v, ok := args[attr]; ok && v != nil {
			continue
		}
		v, ok := r.Value(resource, attr)
		if !ok {
			continue
		}
		r.Logger.Debug("filled attribute from configured defaults",
			slog.String("resource", resource),
			slog.String("attribute", attr))
		args[attr] = v
	}
	return args
}

// ApplyWire is Apply for a serialized request body: schema attribute paths
// are dotted snake_case, the body is keyed by PascalCase wire names. Nested
// paths are filled only when the caller already sent the enclosing objects;
// a default never conjures up a structure the request did not carry.
func (r *DefaultsResolver) ApplyWire(resource string, body map[string]any) map[string]any {
	attrs, ok := r.Schema[resource]
	if !ok || body == nil {
		return body
	}
	for attr := range attrs {
		segments := strings.Split(attr, ".")
		target := body
		reachable := true
		for _, seg := range segments[:len(segments)-1] {
			nested, ok := target[SnakeToPascal(seg)].(map[string]any)
			if !ok {
				reachable = false
				break
			}
			target = nested
		}
		if !reachable {
			continue
		}
		key := SnakeToPascal(segments[len(segments)-1])
		if v, ok := target[key]; ok && v != nil {
			continue
		}
		v, ok := r.Value(resource, attr)
		if !ok {
			continue
		}
		r.Logger.Debug("filled attribute from configured defaults",
			slog.String("resource", resource),
			slog.String("attribute", attr))
		target[key] = v
	}
	return body
}
