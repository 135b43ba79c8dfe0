package layer

// StubLayer records when it was rendered
type StubLayer struct {
	Name         string
	Dependencies []string
	// Rendered is appended to with Name on every render
	Rendered *[]string
	Err      error
}

func (s *StubLayer) GetName() string {
	return s.Name
}

func (s *StubLayer) GetDependencies() []string {
	return s.Dependencies
}

func (s *StubLayer) Render(ctx *Context) error {
	if s.Rendered != nil {
		*s.Rendered = append(*s.Rendered, s.Name)
	}

	return s.Err
}
