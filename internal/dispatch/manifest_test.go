package dispatch

import "testing"

func TestMergeManifests_NoOverridesPassesBaseThrough(t *testing.T) {
	base := map[string]*Descriptor{
		"ping": {Name: "ping", Category: CategoryPublic},
	}
	merged := mergeManifests(base, nil)
	if len(merged) != 1 || merged[0].Name != "ping" {
		t.Fatalf("expected the base descriptor unchanged, got %v", merged)
	}
}

func TestMergeManifests_OverridesCategoryAndPermission(t *testing.T) {
	base := map[string]*Descriptor{
		"ping": {Name: "ping", Category: CategoryPublic, Permission: PermissionNone},
	}
	admin := PermissionAdmin
	manifests := []Manifest{{Name: "ping", Category: CategoryAdmin, Permission: &admin}}

	merged := mergeManifests(base, manifests)
	if len(merged) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(merged))
	}
	if merged[0].Category != CategoryAdmin || merged[0].Permission != PermissionAdmin {
		t.Errorf("expected overrides applied, got %+v", merged[0])
	}
	if base["ping"].Category != CategoryPublic {
		t.Error("expected the base descriptor to remain untouched (copy-on-override)")
	}
}

func TestMergeManifests_DisabledPluginDropped(t *testing.T) {
	base := map[string]*Descriptor{
		"ping": {Name: "ping", Category: CategoryPublic},
		"pong": {Name: "pong", Category: CategoryPublic},
	}
	enabled := false
	merged := mergeManifests(base, []Manifest{{Name: "ping", Enabled: &enabled}})

	if len(merged) != 1 || merged[0].Name != "pong" {
		t.Fatalf("expected only pong to survive, got %v", merged)
	}
}

func TestMergeManifests_AliasesRegisterAdditionalNames(t *testing.T) {
	base := map[string]*Descriptor{
		"ping": {Name: "ping", Category: CategoryPublic},
	}
	merged := mergeManifests(base, []Manifest{{Name: "ping", Aliases: []string{"p", "pp"}}})

	names := map[string]bool{}
	for _, d := range merged {
		names[d.Name] = true
	}
	for _, want := range []string{"ping", "p", "pp"} {
		if !names[want] {
			t.Errorf("expected alias %q to be registered, got %v", want, names)
		}
	}
}
