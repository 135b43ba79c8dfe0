package registry

// ScopedRegistry: read only view of the registry restricted to one scope
type ScopedRegistry struct {
	scope    string
	registry *Registry
}

// Scope: the scope the view is bound to
func (s *ScopedRegistry) Scope() string {
	return s.scope
}

func (s *ScopedRegistry) Get(kind, name string) (interface{}, error) {
	return s.registry.Get(s.scope, kind, name)
}

func (s *ScopedRegistry) Has(kind, name string) bool {
	return s.registry.Has(s.scope, kind, name)
}

// GetByType: all objects of the kind in registration order
func (s *ScopedRegistry) GetByType(kind string) []interface{} {
	return s.registry.GetByType(s.scope, kind)
}

// ByType: all objects of the kind in the scope that are a T, in
// registration order
func ByType[T any](s *ScopedRegistry, kind string) []T {
	objects := s.GetByType(kind)
	typed := make([]T, 0, len(objects))

	for _, object := range objects {
		if t, ok := object.(T); ok {
			typed = append(typed, t)
		}
	}

	return typed
}
