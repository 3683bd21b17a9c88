package dispatch

// Manifest is the on-disk override for one compiled-in plugin. Go cannot
// re-interpret a changed .go file at runtime the way a JS plugin loader
// could, so hot reload here means: plugins are compiled in and registered
// once, and a watched directory of small JSON manifests toggles
// enablement/category/permission/group-only/aliases without a restart.
type Manifest struct {
	Name       string              `json:"name"`
	Enabled    *bool               `json:"enabled,omitempty"`
	Category   Category            `json:"category,omitempty"`
	Permission *RequiredPermission `json:"permission,omitempty"`
	GroupOnly  *bool               `json:"groupOnly,omitempty"`
	Aliases    []string            `json:"aliases,omitempty"`
}

func (m Manifest) disabled() bool {
	return m.Enabled != nil && !*m.Enabled
}

// apply returns a copy of base with this manifest's overrides merged in.
func (m Manifest) apply(base Descriptor) *Descriptor {
	if m.Category != "" {
		base.Category = m.Category
	}
	if m.Permission != nil {
		base.Permission = *m.Permission
	}
	if m.GroupOnly != nil {
		base.GroupOnly = *m.GroupOnly
	}
	return &base
}

// mergeManifests applies manifest overrides (by plugin name) on top of the
// compiled-in base set, dropping any plugin a manifest disables, and
// aliasing extra command names to the same descriptor.
func mergeManifests(base map[string]*Descriptor, manifests []Manifest) []*Descriptor {
	overrides := make(map[string]Manifest, len(manifests))
	for _, m := range manifests {
		overrides[m.Name] = m
	}

	merged := make([]*Descriptor, 0, len(base))
	for name, d := range base {
		m, hasOverride := overrides[name]
		if hasOverride && m.disabled() {
			continue
		}

		active := d
		if hasOverride {
			active = m.apply(*d)
		}
		merged = append(merged, active)

		if hasOverride {
			for _, alias := range m.Aliases {
				aliasCopy := *active
				aliasCopy.Name = alias
				merged = append(merged, &aliasCopy)
			}
		}
	}
	return merged
}
