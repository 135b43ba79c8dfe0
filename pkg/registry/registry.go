// registry stores the objects layers publish so that independently written
// layers can discover each other's state
package registry

import "fmt"

// GLOBAL_SCOPE is the scope layers are registered under
const GLOBAL_SCOPE = "smegsim"

const (
	LAYER_KIND  = "layer"
	ROUTER_KIND = "rnode"
	HOST_KIND   = "hnode"
	NET_KIND    = "net"
)

// Key: composite key of a registry entry
type Key struct {
	Scope string
	Kind  string
	Name  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Scope, k.Kind, k.Name)
}

type scopeKind struct {
	scope string
	kind  string
}

// Registry: write-once key value store of named objects. Objects are shared
// not copied. Not safe for concurrent use, rendering is single threaded.
type Registry struct {
	objects map[Key]interface{}
	// order records registration order per scope and kind
	order map[scopeKind][]Key
}

// DuplicateKeyError: an object was already registered under the key
type DuplicateKeyError struct {
	Key Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("registry: object %s already exists", e.Key)
}

// NotFoundError: no object is registered under the key
type NotFoundError struct {
	Key Key
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("registry: object %s does not exist", e.Key)
}

// TypeError: object exists but does not provide the requested capability
type TypeError struct {
	Key  Key
	Want string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("registry: object %s is not a %s", e.Key, e.Want)
}

// Register: stores object under the key. The first registration wins
func (r *Registry) Register(scope, kind, name string, object interface{}) error {
	key := Key{Scope: scope, Kind: kind, Name: name}

	if _, exists := r.objects[key]; exists {
		return &DuplicateKeyError{Key: key}
	}

	r.objects[key] = object
	sk := scopeKind{scope: scope, kind: kind}
	r.order[sk] = append(r.order[sk], key)
	return nil
}

// Get: get the object registered under the key
func (r *Registry) Get(scope, kind, name string) (interface{}, error) {
	key := Key{Scope: scope, Kind: kind, Name: name}
	object, exists := r.objects[key]

	if !exists {
		return nil, &NotFoundError{Key: key}
	}

	return object, nil
}

// Has: returns true if an object is registered under the key
func (r *Registry) Has(scope, kind, name string) bool {
	_, exists := r.objects[Key{Scope: scope, Kind: kind, Name: name}]
	return exists
}

// GetByType: all objects of the kind in the scope in registration order
func (r *Registry) GetByType(scope, kind string) []interface{} {
	keys := r.order[scopeKind{scope: scope, kind: kind}]
	objects := make([]interface{}, len(keys))

	for index, key := range keys {
		objects[index] = r.objects[key]
	}

	return objects
}

// Scoped: returns a lookup handle bound to the given scope
func (r *Registry) Scoped(scope string) *ScopedRegistry {
	return &ScopedRegistry{scope: scope, registry: r}
}

// Len: number of registered objects
func (r *Registry) Len() int {
	return len(r.objects)
}

func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[Key]interface{}),
		order:   make(map[scopeKind][]Key),
	}
}

// Lookup: get the object under the key as a T
func Lookup[T any](r *Registry, scope, kind, name string) (T, error) {
	var zero T
	object, err := r.Get(scope, kind, name)

	if err != nil {
		return zero, err
	}

	typed, ok := object.(T)

	if !ok {
		return zero, &TypeError{
			Key:  Key{Scope: scope, Kind: kind, Name: name},
			Want: fmt.Sprintf("%T", (*T)(nil))[1:],
		}
	}

	return typed, nil
}
