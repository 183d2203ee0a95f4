package identitymap

// IdentityKey is a marker interface that associates a key with its value
// type. Embed IdentityKeyBase[V] into key structs to implement it; a key for
// a loaded row is typically the entity name plus its primary key value.
type IdentityKey[V any] interface {
	IsIdentityKey(*V)
}

// IdentityKeyBase is an embeddable struct that implements IdentityKey[V].
type IdentityKeyBase[V any] struct{}

func (IdentityKeyBase[V]) IsIdentityKey(*V) {}
