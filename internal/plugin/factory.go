package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// ErrUnknownPluginType is returned when the factory has no constructor
// registered for a requested type name.
var ErrUnknownPluginType = errors.New("plugin: unknown plugin type")

// Constructor builds a plugin instance from its (possibly nil) config
// payload. It returns an error — never panics — on malformed or missing
// required config; the factory logs and skips that entry.
type Constructor func(config json.RawMessage) (ActionPlugin, error)

// LoadedPlugin pairs a constructed plugin with its type name and a unique
// instance id, so the host's logs can disambiguate multiple instances of the
// same type. The plugins themselves are not given the id.
type LoadedPlugin struct {
	InstanceID uuid.UUID
	TypeName   string
	Plugin     ActionPlugin
}

// Factory is the registry of named plugin constructors plus the JSON
// configuration parsing rules (single-object and array forms).
type Factory struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	log          *slog.Logger
}

// NewFactory creates an empty factory. Callers register builtin and
// third-party constructors with Register before loading configuration.
func NewFactory(log *slog.Logger) *Factory {
	if log == nil {
		log = slog.Default()
	}
	return &Factory{constructors: make(map[string]Constructor), log: log}
}

// Register adds (or replaces) the constructor for typeName.
func (f *Factory) Register(typeName string, ctor Constructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[typeName] = ctor
}

// singleObject is the shape of one `{"<type>": {...}}` configuration entry.
type singleObject map[string]json.RawMessage

// CreateFromJSON parses a single-key object — {"<type>": {config}} — and
// constructs the named plugin. The object must have exactly one key.
func (f *Factory) CreateFromJSON(data []byte) (*LoadedPlugin, error) {
	var obj singleObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("plugin: malformed config object: %w", err)
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("plugin: config object must have exactly one key, got %d", len(obj))
	}

	var typeName string
	var config json.RawMessage
	for k, v := range obj {
		typeName, config = k, v
	}

	return f.create(typeName, config)
}

func (f *Factory) create(typeName string, config json.RawMessage) (*LoadedPlugin, error) {
	f.mu.Lock()
	ctor, ok := f.constructors[typeName]
	f.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPluginType, typeName)
	}

	p, err := ctor(config)
	if err != nil {
		return nil, fmt.Errorf("plugin: constructing %q: %w", typeName, err)
	}

	return &LoadedPlugin{InstanceID: uuid.New(), TypeName: typeName, Plugin: p}, nil
}

// CreatePluginsFromJSON parses a JSON array of single-key objects, one per
// plugin. Malformed or failing entries are logged and skipped; the rest of
// the array still loads.
func (f *Factory) CreatePluginsFromJSON(data []byte) []*LoadedPlugin {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		f.log.Error("plugin config: malformed array", "error", err)
		return nil
	}

	loaded := make([]*LoadedPlugin, 0, len(raw))
	for i, entry := range raw {
		lp, err := f.CreateFromJSON(entry)
		if err != nil {
			f.log.Error("plugin config: skipping entry", "index", i, "error", err)
			continue
		}
		loaded = append(loaded, lp)
	}
	return loaded
}
