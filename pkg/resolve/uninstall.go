package resolve

import "sort"

// Dependents returns every installed package that requires name, directly or
// transitively. The result never contains name itself. seen guards against
// re-expanding a package already processed in this search, which handles
// diamond shapes and keeps the walk finite even if local manifests form an
// accidental cycle (corrupted state, but not worth an infinite loop).
func Dependents(name string, installed InstalledView, seen map[string]bool) map[string]bool {
	if seen == nil {
		seen = make(map[string]bool)
	}
	out := make(map[string]bool)
	if seen[name] {
		return out
	}
	seen[name] = true

	for pkg, deps := range installed {
		if pkg == name {
			continue
		}
		for _, dep := range deps {
			if dep != name {
				continue
			}
			out[pkg] = true
			for transitive := range Dependents(pkg, installed, seen) {
				out[transitive] = true
			}
			break
		}
	}
	delete(out, name)
	return out
}

// UninstallPlan is the ordered outcome of uninstall planning. Remove lists
// packages dependents-first (the mirror of install order); Missing lists
// requested names that are not installed (reported, never actioned).
type UninstallPlan struct {
	Remove  []RemoveStep
	Missing []string
}

// RemoveStep is one package to remove. For packages pulled in by
// reverse-dependency expansion, Because names the requested packages it
// depends on (directly or transitively) — best-effort attribution for
// display, not a correctness guarantee.
type RemoveStep struct {
	Name      string
	Requested bool
	Because   []string
}

// Empty reports whether there is nothing to remove.
func (p *UninstallPlan) Empty() bool { return len(p.Remove) == 0 }

// Names returns the removal order as bare package names.
func (p *UninstallPlan) Names() []string {
	names := make([]string, len(p.Remove))
	for i, s := range p.Remove {
		names[i] = s.Name
	}
	return names
}

// PlanUninstall expands the requested names with all their transitive
// dependents and orders the result so every package is removed before the
// packages it depends on. Expansion is mandatory: a package cannot be
// removed while something installed still requires it, so every dependent is
// scheduled too. Requested names that are not installed are reported in
// Missing and excluded from the plan.
func PlanUninstall(requested []string, installed InstalledView) *UninstallPlan {
	plan := &UninstallPlan{}

	requestedSet := make(map[string]bool)
	var present []string
	for _, name := range requested {
		if requestedSet[name] {
			continue // duplicate request
		}
		if _, ok := installed[name]; !ok {
			plan.Missing = append(plan.Missing, name)
			continue
		}
		requestedSet[name] = true
		present = append(present, name)
	}
	if len(present) == 0 {
		return plan
	}

	removeSet := make(map[string]bool)
	for _, name := range present {
		removeSet[name] = true
		for dep := range Dependents(name, installed, nil) {
			removeSet[dep] = true
		}
	}

	// Deterministic seed order: requested names first, then the expanded
	// dependents sorted by name. The topological visit imposes the real
	// constraint (dependents before dependencies).
	seed := append([]string{}, present...)
	var expanded []string
	for name := range removeSet {
		if !requestedSet[name] {
			expanded = append(expanded, name)
		}
	}
	sort.Strings(expanded)
	seed = append(seed, expanded...)

	deps := func(n string) []string { return installed[n] }

	// Visit each package's dependents (within the removal set) before the
	// package itself: dependents end up earlier in the order.
	visited := make(map[string]bool, len(seed))
	var order []string
	var visit func(string)
	visit = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, other := range seed {
			if other == n || !removeSet[other] {
				continue
			}
			for _, d := range deps(other) {
				if d == n {
					visit(other)
					break
				}
			}
		}
		order = append(order, n)
	}
	for _, n := range seed {
		visit(n)
	}

	for _, name := range order {
		step := RemoveStep{Name: name, Requested: requestedSet[name]}
		if !step.Requested {
			// Attribute to the requested packages this one depends on,
			// walking edges restricted to the removal set.
			reach := reachable(name, deps, removeSet)
			for _, root := range present {
				if reach[root] {
					step.Because = append(step.Because, root)
				}
			}
		}
		plan.Remove = append(plan.Remove, step)
	}
	return plan
}
