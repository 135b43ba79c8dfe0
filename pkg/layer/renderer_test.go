package layer

import (
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/tim-beatham/smegsim/pkg/registry"
)

func getRenderer() *Renderer {
	return NewRenderer(NewContext(registry.NewRegistry()))
}

func addStubs(t *testing.T, r *Renderer, rendered *[]string, deps map[string][]string, names ...string) {
	for _, name := range names {
		err := r.AddLayer(&StubLayer{Name: name, Dependencies: deps[name], Rendered: rendered})

		if err != nil {
			t.Fatal(err)
		}
	}
}

func assertDependenciesFirst(t *testing.T, order []string, deps map[string][]string) {
	for name, dependencies := range deps {
		position := slices.Index(order, name)

		for _, dependency := range dependencies {
			if slices.Index(order, dependency) >= position {
				t.Fatalf(`%s rendered before its dependency %s: %v`, name, dependency, order)
			}
		}
	}
}

func TestRenderRendersDependenciesFirst(t *testing.T) {
	r := getRenderer()
	rendered := make([]string, 0)
	deps := map[string][]string{
		"Ibgp":    {"Ospf"},
		"Ospf":    {"Routing"},
		"Ebgp":    {"Routing"},
		"Routing": {"Base"},
	}

	addStubs(t, r, &rendered, deps, "Ibgp", "Ebgp", "Ospf", "Routing", "Base")

	if err := r.Render(); err != nil {
		t.Fatal(err)
	}

	if len(rendered) != 5 {
		t.Fatalf(`Expected 5 renders got %d`, len(rendered))
	}

	assertDependenciesFirst(t, rendered, deps)
}

func TestRenderEachLayerExactlyOnce(t *testing.T) {
	r := getRenderer()
	rendered := make([]string, 0)
	deps := map[string][]string{
		"C": {"A", "B"},
		"B": {"A"},
		"D": {"A", "B", "C"},
	}

	addStubs(t, r, &rendered, deps, "D", "C", "B", "A")
	r.Render()

	for _, name := range []string{"A", "B", "C", "D"} {
		count := 0

		for _, got := range rendered {
			if got == name {
				count++
			}
		}

		if count != 1 {
			t.Fatalf(`%s rendered %d times`, name, count)
		}
	}
}

func TestRenderRandomGraphsProduceValidOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		r := getRenderer()
		rendered := make([]string, 0)
		deps := make(map[string][]string)
		names := make([]string, 10)

		for i := range names {
			names[i] = fmt.Sprintf("L%d", i)

			// only depend on lower numbered layers so the graph is acyclic
			for j := 0; j < i; j++ {
				if rng.Intn(3) == 0 {
					deps[names[i]] = append(deps[names[i]], names[j])
				}
			}
		}

		shuffled := slices.Clone(names)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		addStubs(t, r, &rendered, deps, shuffled...)

		if err := r.Render(); err != nil {
			t.Fatal(err)
		}

		assertDependenciesFirst(t, rendered, deps)
	}
}

func TestOrderIsDeterministic(t *testing.T) {
	deps := map[string][]string{"C": {"A"}, "B": {"A"}, "D": {"B", "C"}}
	var previous []string

	for i := 0; i < 5; i++ {
		r := getRenderer()
		addStubs(t, r, nil, deps, "D", "C", "B", "A")
		order, err := r.Order()

		if err != nil {
			t.Fatal(err)
		}

		names := make([]string, len(order))

		for index, l := range order {
			names[index] = l.GetName()
		}

		if previous != nil && !slices.Equal(previous, names) {
			t.Fatalf(`Expected %v got %v`, previous, names)
		}

		previous = names
	}
}

func TestRenderCycleFailsBeforeAnyRender(t *testing.T) {
	r := getRenderer()
	rendered := make([]string, 0)
	deps := map[string][]string{
		"A": {"C"},
		"B": {"A"},
		"C": {"B"},
	}

	addStubs(t, r, &rendered, deps, "Base", "A", "B", "C")
	err := r.Render()

	var cycleErr *CyclicDependencyError

	if !errors.As(err, &cycleErr) {
		t.Fatalf(`expected CyclicDependencyError got %v`, err)
	}

	if len(rendered) != 0 {
		t.Fatalf(`no layer should render when there is a cycle got %v`, rendered)
	}

	if len(cycleErr.Cycles) != 1 || !slices.Equal(cycleErr.Cycles[0], []string{"A", "B", "C"}) {
		t.Fatalf(`cycle should name A, B and C got %v`, cycleErr.Cycles)
	}
}

func TestRenderSelfDependencyIsCycle(t *testing.T) {
	r := getRenderer()
	addStubs(t, r, nil, map[string][]string{"A": {"A"}}, "A")

	var cycleErr *CyclicDependencyError

	if !errors.As(r.Render(), &cycleErr) {
		t.Fatalf(`expected CyclicDependencyError`)
	}
}

func TestRenderMissingDependency(t *testing.T) {
	r := getRenderer()
	rendered := make([]string, 0)
	addStubs(t, r, &rendered, map[string][]string{"Ibgp": {"Ospf"}}, "Ibgp")

	err := r.Render()

	var missingErr *MissingDependencyError

	if !errors.As(err, &missingErr) {
		t.Fatalf(`expected MissingDependencyError got %v`, err)
	}

	if missingErr.Layer != "Ibgp" || missingErr.Dependency != "Ospf" {
		t.Fatalf(`error should name the layer and dependency`)
	}

	if len(rendered) != 0 {
		t.Fatalf(`no layer should render`)
	}
}

func TestAddLayerDuplicateName(t *testing.T) {
	r := getRenderer()
	r.AddLayer(&StubLayer{Name: "Base"})

	var dupErr *registry.DuplicateKeyError

	if !errors.As(r.AddLayer(&StubLayer{Name: "Base"}), &dupErr) {
		t.Fatalf(`expected DuplicateKeyError`)
	}
}

func TestRenderStopsOnLayerError(t *testing.T) {
	r := getRenderer()
	rendered := make([]string, 0)
	failure := errors.New("failed")

	r.AddLayer(&StubLayer{Name: "Base", Rendered: &rendered, Err: failure})
	r.AddLayer(&StubLayer{Name: "Ospf", Dependencies: []string{"Base"}, Rendered: &rendered})

	err := r.Render()

	if !errors.Is(err, failure) {
		t.Fatalf(`expected the layer error got %v`, err)
	}

	if !slices.Equal(rendered, []string{"Base"}) {
		t.Fatalf(`later layers should not render got %v`, rendered)
	}
}

func TestRenderTwiceFails(t *testing.T) {
	r := getRenderer()
	r.AddLayer(&StubLayer{Name: "Base"})
	r.Render()

	if !errors.Is(r.Render(), ErrAlreadyRendered) {
		t.Fatalf(`second render should fail`)
	}
}

func TestGetLayerTyped(t *testing.T) {
	r := getRenderer()
	stub := &StubLayer{Name: "Base"}
	r.AddLayer(stub)

	got, err := GetLayer[*StubLayer](r.GetContext(), "Base")

	if err != nil {
		t.Fatal(err)
	}

	if got != stub {
		t.Fatalf(`expected the registered layer`)
	}

	var notFound *registry.NotFoundError

	if _, err := GetLayer[*StubLayer](r.GetContext(), "Ospf"); !errors.As(err, &notFound) {
		t.Fatalf(`expected NotFoundError got %v`, err)
	}
}
