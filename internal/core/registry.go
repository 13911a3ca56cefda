package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds a catalogue definition to the registry.
// Panics if a catalogue with the same name is already registered or the
// definition has no primary id column.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if def.PrimaryID == "" {
		panic(fmt.Sprintf("catalogue %s has no primary id column", def.Name))
	}
	if _, exists := registry[def.Name]; exists {
		panic(fmt.Sprintf("catalogue already registered: %s", def.Name))
	}

	registry[def.Name] = def
}

// Lookup returns a catalogue definition by name.
// Returns false if the name is not part of the fixed set.
func Lookup(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered catalogue definitions.
// Sorted by kind then by name for consistent ordering.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Kind != result[j].Kind {
			return result[i].Kind < result[j].Kind
		}
		return result[i].Name < result[j].Name
	})

	return result
}

// ByKind returns all catalogue definitions of a given kind.
// Sorted by name for consistent ordering.
func ByKind(kind Kind) []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Definition
	for _, def := range registry {
		if def.Kind == kind {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result
}

// Names returns all registered catalogue names, sorted alphabetically.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// CatalogueCount returns the number of registered catalogues.
func CatalogueCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// ClearRegistry removes all registered definitions.
// Primarily useful for testing.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
