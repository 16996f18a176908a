package resolve

import (
	"strings"
	"testing"

	"github.com/mip-org/mip/pkg/errors"
	"github.com/mip-org/mip/pkg/index"
)

// catalog builds an index from name -> dependencies pairs.
func catalog(deps map[string][]string) *index.Index {
	doc := index.Document{}
	for name, d := range deps {
		doc.Packages = append(doc.Packages, index.Package{
			Name:         name,
			Version:      "1.0.0",
			Dependencies: d,
		})
	}
	return index.New(doc)
}

func position(t *testing.T, order []string, name string) int {
	t.Helper()
	for i, n := range order {
		if n == name {
			return i
		}
	}
	t.Fatalf("%q not in order %v", name, order)
	return -1
}

func TestResolveChain(t *testing.T) {
	cat := catalog(map[string][]string{
		"A": nil,
		"B": {"A"},
		"C": {"B"},
	})

	order, err := Resolve("C", cat, make(map[string]bool), nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := []string{"A", "B", "C"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestResolveDependenciesPrecedeDependents(t *testing.T) {
	cat := catalog(map[string][]string{
		"app":   {"ui", "net"},
		"ui":    {"core"},
		"net":   {"core"},
		"core":  nil,
		"extra": nil,
	})

	order, err := Resolve("app", cat, make(map[string]bool), nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	for _, pkg := range order {
		p, _ := cat.Lookup(pkg)
		for _, dep := range p.Dependencies {
			if position(t, order, dep) > position(t, order, pkg) {
				t.Errorf("dependency %q comes after %q in %v", dep, pkg, order)
			}
		}
	}

	// Diamond: core appears exactly once.
	count := 0
	for _, n := range order {
		if n == "core" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("core appears %d times in %v, want 1", count, order)
	}
}

func TestResolveDeclarationOrder(t *testing.T) {
	cat := catalog(map[string][]string{
		"root": {"b", "a"},
		"a":    nil,
		"b":    nil,
	})

	order, err := Resolve("root", cat, make(map[string]bool), nil)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	// Dependencies are expanded in declaration order: b before a.
	if position(t, order, "b") > position(t, order, "a") {
		t.Errorf("order = %v, want b before a", order)
	}
}

func TestResolveCycle(t *testing.T) {
	cat := catalog(map[string][]string{
		"A": {"B"},
		"B": {"A"},
	})

	_, err := Resolve("A", cat, make(map[string]bool), nil)
	if err == nil {
		t.Fatal("Resolve() should fail on a cycle")
	}
	if !errors.Is(err, errors.ErrCodeCircularDependency) {
		t.Errorf("error code = %q, want CIRCULAR_DEPENDENCY", errors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "A -> B -> A") {
		t.Errorf("error = %q, want cycle path A -> B -> A", err.Error())
	}
}

func TestResolveCycleReachedViaPrefix(t *testing.T) {
	// The reported cycle must be a true cycle, without the acyclic prefix.
	cat := catalog(map[string][]string{
		"top": {"B"},
		"B":   {"C"},
		"C":   {"B"},
	})

	_, err := Resolve("top", cat, make(map[string]bool), nil)
	if err == nil {
		t.Fatal("Resolve() should fail on a cycle")
	}
	if !strings.Contains(err.Error(), "B -> C -> B") {
		t.Errorf("error = %q, want cycle B -> C -> B", err.Error())
	}
	if strings.Contains(err.Error(), "top ->") {
		t.Errorf("error = %q, should not include the acyclic prefix", err.Error())
	}
}

func TestResolveNotFound(t *testing.T) {
	cat := catalog(map[string][]string{"A": {"ghost"}})

	_, err := Resolve("A", cat, make(map[string]bool), nil)
	if err == nil {
		t.Fatal("Resolve() should fail for unknown dependency")
	}
	if !errors.Is(err, errors.ErrCodePackageNotFound) {
		t.Errorf("error code = %q, want PACKAGE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestResolveSharedVisitedSkipsCompleted(t *testing.T) {
	cat := catalog(map[string][]string{
		"A": nil,
		"B": {"A"},
	})

	visited := make(map[string]bool)
	first, err := Resolve("A", cat, visited, nil)
	if err != nil {
		t.Fatalf("Resolve(A) error: %v", err)
	}
	if len(first) != 1 || first[0] != "A" {
		t.Fatalf("first = %v, want [A]", first)
	}

	// A is completed, not a cycle: resolving B emits only B.
	second, err := Resolve("B", cat, visited, nil)
	if err != nil {
		t.Fatalf("Resolve(B) error: %v", err)
	}
	if len(second) != 1 || second[0] != "B" {
		t.Errorf("second = %v, want [B]", second)
	}
}

func TestResolveSiblingBranchesAreNotAncestors(t *testing.T) {
	// X depends on two subtrees that both reach leaf; the second branch must
	// not mistake the first branch's members for ancestors.
	cat := catalog(map[string][]string{
		"X":    {"left", "right"},
		"left": {"leaf"},
		"right": {
			"leaf",
		},
		"leaf": nil,
	})

	if _, err := Resolve("X", cat, make(map[string]bool), nil); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
}
