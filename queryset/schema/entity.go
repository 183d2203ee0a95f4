package schema

// Package schema declares mapped entities: named columns and relationships
// registered explicitly at definition time. Path tokens are resolved against
// this registry at query-build time, so no reflection is involved.

// Descriptor is the resolved handle for one property access.
// It is either a *Column or a *Relationship.
type Descriptor interface {
	Name() string
	descriptor()
}

// ForeignKeyPair maps one owner-side column onto one target-side column.
// Composite keys use several pairs.
type ForeignKeyPair struct {
	// OwnerColumn is the column on the entity declaring the relationship.
	OwnerColumn string
	// TargetColumn is the column on the relationship target.
	TargetColumn string
}

// Column is a scalar-valued property of an entity.
type Column struct {
	entity  *Entity
	name    string
	sqlName string
}

func (c *Column) Name() string { return c.name }

// SQLName returns the column name as it appears in the relational schema.
func (c *Column) SQLName() string { return c.sqlName }

// Entity returns the entity that declares this column.
func (c *Column) Entity() *Entity { return c.entity }

func (c *Column) descriptor() {}

// Relationship is a reference from one entity to another, singular or plural.
type Relationship struct {
	owner  *Entity
	name   string
	target *Entity
	plural bool
	fks    []ForeignKeyPair
}

func (r *Relationship) Name() string { return r.name }

// Owner returns the entity declaring the relationship.
func (r *Relationship) Owner() *Entity { return r.owner }

// Target returns the entity the relationship points at.
func (r *Relationship) Target() *Entity { return r.target }

// Plural reports whether this is a to-many relationship.
func (r *Relationship) Plural() bool { return r.plural }

// ForeignKeys returns the owner-to-target column pairs joining the two tables.
func (r *Relationship) ForeignKeys() []ForeignKeyPair { return r.fks }

func (r *Relationship) descriptor() {}

// Entity is a mapped type with a named set of properties. Property names are
// unique within an entity. Entities form a directed graph via relationships;
// cycles (self-references, back-references) are legal.
type Entity struct {
	name       string
	table      string
	props      map[string]Descriptor
	order      []string
	primaryKey string
}

// NewEntity creates an entity mapped onto the given table.
func NewEntity(name, table string) *Entity {
	return &Entity{
		name:  name,
		table: table,
		props: make(map[string]Descriptor),
	}
}

func (e *Entity) Name() string { return e.name }

// Table returns the relational table the entity is mapped onto.
func (e *Entity) Table() string { return e.table }

// AddColumn declares a scalar property. sqlName is the relational column name;
// pass the property name itself when they coincide.
func (e *Entity) AddColumn(name, sqlName string) *Entity {
	e.register(name, &Column{entity: e, name: name, sqlName: sqlName})
	return e
}

// SetPrimaryKey marks a previously declared column as the primary key.
// Identity-map keys are built from it.
func (e *Entity) SetPrimaryKey(name string) *Entity {
	e.primaryKey = name
	return e
}

// PrimaryKey returns the primary key column, or nil when none is declared.
func (e *Entity) PrimaryKey() *Column {
	if e.primaryKey == "" {
		return nil
	}
	col, _ := e.props[e.primaryKey].(*Column)
	return col
}

// AddToOne declares a singular relationship to target.
func (e *Entity) AddToOne(name string, target *Entity, fks ...ForeignKeyPair) *Entity {
	e.register(name, &Relationship{owner: e, name: name, target: target, fks: fks})
	return e
}

// AddToMany declares a plural relationship to target.
func (e *Entity) AddToMany(name string, target *Entity, fks ...ForeignKeyPair) *Entity {
	e.register(name, &Relationship{owner: e, name: name, target: target, plural: true, fks: fks})
	return e
}

func (e *Entity) register(name string, d Descriptor) {
	if _, dup := e.props[name]; dup {
		panic("schema: duplicate property " + e.name + "." + name)
	}
	e.props[name] = d
	e.order = append(e.order, name)
}

// Resolve looks up one path token among the entity's declared columns and
// relationships. It behaves identically whether e is a query's base entity or
// a join target reached through a prior relationship traversal.
func (e *Entity) Resolve(token string) (Descriptor, error) {
	d, ok := e.props[token]
	if !ok {
		return nil, &UnknownPropertyError{Entity: e.name, Token: token}
	}
	return d, nil
}

// PropertyNames returns all declared property names (columns and
// relationships) in declaration order.
func (e *Entity) PropertyNames() []string {
	names := make([]string, len(e.order))
	copy(names, e.order)
	return names
}

// Columns returns the declared scalar properties in declaration order.
func (e *Entity) Columns() []*Column {
	cols := make([]*Column, 0, len(e.order))
	for _, name := range e.order {
		if col, ok := e.props[name].(*Column); ok {
			cols = append(cols, col)
		}
	}
	return cols
}

// Relationships returns the declared relationships in declaration order.
func (e *Entity) Relationships() []*Relationship {
	rels := make([]*Relationship, 0, len(e.order))
	for _, name := range e.order {
		if rel, ok := e.props[name].(*Relationship); ok {
			rels = append(rels, rel)
		}
	}
	return rels
}
