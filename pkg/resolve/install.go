package resolve

// InstallPlan is the ordered outcome of install planning. Install holds the
// packages to materialize in dependency-first order; Satisfied holds names
// that are already present locally (informational, never actioned). A name
// appears in at most one of the two lists.
type InstallPlan struct {
	Install   []InstallStep
	Satisfied []string
}

// InstallStep is one package to install, with best-effort attribution of
// which requested packages pulled it in (empty for directly requested ones).
type InstallStep struct {
	Name       string
	Version    string
	Requested  bool
	RequiredBy []string
}

// Empty reports whether there is nothing to install.
func (p *InstallPlan) Empty() bool { return len(p.Install) == 0 }

// Names returns the install order as bare package names.
func (p *InstallPlan) Names() []string {
	names := make([]string, len(p.Install))
	for i, s := range p.Install {
		names[i] = s.Name
	}
	return names
}

// PlanInstall resolves every requested package against the catalog, combines
// the closures, orders them dependencies-first, and partitions the result
// against the installed set.
//
// A single visited set is shared across the requested roots so overlapping
// dependency trees are expanded exactly once. Resolution failures (unknown
// package, dependency cycle) abort planning entirely; no partial plan is
// returned.
func PlanInstall(requested []string, cat Catalog, installed InstalledView) (*InstallPlan, error) {
	visited := make(map[string]bool)
	var combined []string

	for _, name := range requested {
		order, err := Resolve(name, cat, visited, nil)
		if err != nil {
			return nil, err
		}
		combined = append(combined, order...)
	}

	// Re-derive one global order across all roots. The catalog is
	// authoritative for dependency edges of packages being installed.
	catalogDeps := func(n string) []string {
		if pkg, ok := cat.Lookup(n); ok {
			return pkg.Dependencies
		}
		return nil
	}
	ordered := topoSort(combined, catalogDeps)

	inSet := make(map[string]bool, len(ordered))
	for _, n := range ordered {
		inSet[n] = true
	}
	requestedSet := make(map[string]bool, len(requested))
	for _, n := range requested {
		requestedSet[n] = true
	}

	// Attribution: a package is required by every requested root that can
	// reach it through catalog dependency edges. Reporting only.
	requiredBy := make(map[string][]string)
	for _, root := range requested {
		for n := range reachable(root, catalogDeps, inSet) {
			if n != root {
				requiredBy[n] = append(requiredBy[n], root)
			}
		}
	}

	plan := &InstallPlan{}
	for _, name := range ordered {
		if _, ok := installed[name]; ok {
			plan.Satisfied = append(plan.Satisfied, name)
			continue
		}
		step := InstallStep{
			Name:      name,
			Requested: requestedSet[name],
		}
		if pkg, ok := cat.Lookup(name); ok {
			step.Version = pkg.Version
		}
		if !step.Requested {
			step.RequiredBy = requiredBy[name]
		}
		plan.Install = append(plan.Install, step)
	}
	return plan, nil
}
