// Package serialize exposes only the attributes of an instance that are
// already materialized in memory, so encoding a value never triggers a fetch.
package serialize

import "encoding/json"

// Source is what the serialization view needs from an instance: the set of
// names safe to read, and attribute access for those names.
type Source interface {
	LoadedProperties() map[string]struct{}
	Value(name string) (any, bool)
}

// Mapper is the hook an external encoder calls into.
type Mapper interface {
	ToMapping(exclude map[string]struct{}) map[string]any
}

// DefaultExcluder declares a per-class default exclusion set, merged into
// every encoding of the value.
type DefaultExcluder interface {
	DefaultExclude() []string
}

// ToMapping produces a plain name-to-value mapping from the loaded
// properties of src, minus the given exclusions. Names outside the loaded
// set are never requested.
func ToMapping(src Source, exclude ...string) map[string]any {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	return mapping(src, excluded)
}

func mapping(src Source, exclude map[string]struct{}) map[string]any {
	out := make(map[string]any)
	for name := range src.LoadedProperties() {
		if _, skip := exclude[name]; skip {
			continue
		}
		v, _ := src.Value(name)
		out[name] = v
	}
	return out
}

// View binds a Source into a Mapper, carrying along any per-class default
// exclusions of the underlying value.
func View(src Source) Mapper {
	return view{src: src}
}

type view struct {
	src Source
}

func (v view) ToMapping(exclude map[string]struct{}) map[string]any {
	merged := make(map[string]struct{}, len(exclude))
	for name := range exclude {
		merged[name] = struct{}{}
	}
	if d, ok := v.src.(DefaultExcluder); ok {
		for _, name := range d.DefaultExclude() {
			merged[name] = struct{}{}
		}
	}
	return mapping(v.src, merged)
}

// Marshal encodes v as JSON. Values implementing Mapper (or Source) are
// rendered through their loaded-attribute mapping with per-class default
// exclusions applied; everything else goes through encoding/json unchanged.
func Marshal(v any, exclude ...string) ([]byte, error) {
	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
	}
	switch v := v.(type) {
	case Mapper:
		if d, ok := v.(DefaultExcluder); ok {
			for _, name := range d.DefaultExclude() {
				excluded[name] = struct{}{}
			}
		}
		return json.Marshal(v.ToMapping(excluded))
	case Source:
		return json.Marshal(View(v).ToMapping(excluded))
	default:
		return json.Marshal(v)
	}
}
