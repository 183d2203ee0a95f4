// Package state tracks which attributes of an entity instance are resident
// in memory. The classifier here only reads that bookkeeping; mutation
// belongs to the storage collaborator (see the store package).
package state

import (
	"github.com/google/uuid"

	"github.com/krew-solutions/queryset-go/queryset/schema"
)

// Instance is one materialized (or not yet persisted) entity row.
type Instance struct {
	entity    *schema.Entity
	key       uuid.UUID
	values    map[string]any
	transient bool
	unloaded  map[string]struct{}
	expired   bool
	expiredAt map[string]struct{}
}

// NewTransient creates an instance that was never persisted. All declared
// properties of a transient instance count as loaded, since none can trigger
// a fetch.
func NewTransient(entity *schema.Entity) *Instance {
	return &Instance{
		entity:    entity,
		key:       uuid.New(),
		values:    make(map[string]any),
		transient: true,
		unloaded:  make(map[string]struct{}),
		expiredAt: make(map[string]struct{}),
	}
}

// NewPersisted creates an instance backed by a stored row. Declared
// properties not named in values start out unloaded.
func NewPersisted(entity *schema.Entity, values map[string]any) *Instance {
	inst := &Instance{
		entity:    entity,
		key:       uuid.New(),
		values:    make(map[string]any, len(values)),
		unloaded:  make(map[string]struct{}),
		expiredAt: make(map[string]struct{}),
	}
	for name, value := range values {
		inst.values[name] = value
	}
	for _, name := range entity.PropertyNames() {
		if _, loaded := values[name]; !loaded {
			inst.unloaded[name] = struct{}{}
		}
	}
	return inst
}

func (i *Instance) Entity() *schema.Entity {
	return i.entity
}

// Key identifies the instance within a session, independent of any primary
// key value (transient instances have none yet).
func (i *Instance) Key() uuid.UUID {
	return i.key
}

func (i *Instance) Transient() bool {
	return i.transient
}

func (i *Instance) Expired() bool {
	return i.expired
}

// Value reads an attribute's current in-memory value. Reading a name outside
// the loaded set returns false; the caller must not fall back to a fetch here.
func (i *Instance) Value(name string) (any, bool) {
	v, ok := i.values[name]
	return v, ok
}

// SetValue stores an attribute value and clears its unloaded mark. Called by
// the storage collaborator during hydration, never by the classifier.
func (i *Instance) SetValue(name string, value any) {
	i.values[name] = value
	delete(i.unloaded, name)
}

// MarkUnloaded records that an attribute would require a fetch to read.
func (i *Instance) MarkUnloaded(name string) {
	delete(i.values, name)
	i.unloaded[name] = struct{}{}
}

// Expire invalidates the given loaded attributes (all currently loaded ones
// when names is empty). Expired attributes join the unloaded set but keep
// their stale value around: they stay exposed and must be refreshed before
// next use.
func (i *Instance) Expire(names ...string) {
	i.expired = true
	if len(names) == 0 {
		for _, name := range i.entity.PropertyNames() {
			if _, un := i.unloaded[name]; !un {
				names = append(names, name)
			}
		}
	}
	for _, name := range names {
		i.expiredAt[name] = struct{}{}
		i.unloaded[name] = struct{}{}
	}
}

// RefreshValue stores a freshly fetched attribute value and clears its
// expiry mark. Once no expired attributes remain the instance as a whole
// stops being expired.
func (i *Instance) RefreshValue(name string, value any) {
	i.values[name] = value
	delete(i.unloaded, name)
	delete(i.expiredAt, name)
	if len(i.expiredAt) == 0 {
		i.expired = false
	}
}

// LoadedProperties computes the set of attribute names considered loaded:
// reading any of them will not produce a new query.
//
// The set starts from all declared property names. Unless the instance is
// transient, currently unloaded names are removed. If the instance is
// expired, its expired names are added back: they represent data that
// existed and will be transparently refreshed on next access, so hiding
// them would silently drop previously visible fields.
func LoadedProperties(inst *Instance) map[string]struct{} {
	names := make(map[string]struct{})
	for _, name := range inst.entity.PropertyNames() {
		names[name] = struct{}{}
	}
	if !inst.transient {
		for name := range inst.unloaded {
			delete(names, name)
		}
	}
	if inst.expired {
		for name := range inst.expiredAt {
			names[name] = struct{}{}
		}
	}
	return names
}

// LoadedProperties is the method form used by the serialization view.
func (i *Instance) LoadedProperties() map[string]struct{} {
	return LoadedProperties(i)
}
