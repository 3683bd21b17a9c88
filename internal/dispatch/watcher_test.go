package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"wazmeow/pkg/logger"
)

func TestWatcher_ReloadAppliesManifestAndResetsPermCache(t *testing.T) {
	dir := t.TempDir()

	d := New(nil, nil, nil, nil, nil, &logger.NoopLogger{})
	d.RegisterPlugins([]*Descriptor{
		{Name: "ping", Category: CategoryPublic},
	})
	d.permCache.put(permKey("s", "u", "g", CategoryPublic, PermissionNone), true)

	manifest := `{"name":"ping","category":"admin"}`
	if err := os.WriteFile(filepath.Join(dir, "ping.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to seed manifest: %v", err)
	}

	w := NewWatcher(d, dir, &logger.NoopLogger{})
	w.reload()

	got, ok := d.idx.lookup("ping")
	if !ok {
		t.Fatal("expected ping to remain indexed after manifest reload")
	}
	if got.Category != CategoryAdmin {
		t.Errorf("expected manifest override to promote ping to admin, got %v", got.Category)
	}
	if _, ok := d.permCache.get(permKey("s", "u", "g", CategoryPublic, PermissionNone)); ok {
		t.Error("expected reload to reset the permission cache")
	}
}

func TestWatcher_ManifestCanDisablePlugin(t *testing.T) {
	dir := t.TempDir()

	d := New(nil, nil, nil, nil, nil, &logger.NoopLogger{})
	d.RegisterPlugins([]*Descriptor{
		{Name: "ping", Category: CategoryPublic},
	})

	manifest := `{"name":"ping","enabled":false}`
	if err := os.WriteFile(filepath.Join(dir, "ping.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("failed to seed manifest: %v", err)
	}

	w := NewWatcher(d, dir, &logger.NoopLogger{})
	w.reload()

	if _, ok := d.idx.lookup("ping"); ok {
		t.Error("expected a disabled manifest to drop the plugin from the index")
	}
}

func TestWatcher_RunWatchesTreeAndReloadsOnManifestWrite(t *testing.T) {
	dir := t.TempDir()

	d := New(nil, nil, nil, nil, nil, &logger.NoopLogger{})
	d.RegisterPlugins([]*Descriptor{
		{Name: "ping", Category: CategoryPublic},
	})

	w := NewWatcher(d, dir, &logger.NoopLogger{})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	manifestPath := filepath.Join(dir, "ping.json")
	if err := os.WriteFile(manifestPath, []byte(`{"name":"ping","category":"owner"}`), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatal("expected the watcher to apply the manifest after a write, it did not")
		default:
		}
		if got, ok := d.idx.lookup("ping"); ok && got.Category == CategoryOwner {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
}
