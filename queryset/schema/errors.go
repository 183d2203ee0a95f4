package schema

import "fmt"

// UnknownPropertyError reports a path token that names no column or
// relationship on the entity being resolved.
type UnknownPropertyError struct {
	Entity string
	Token  string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("entity %q has no property %q", e.Entity, e.Token)
}
