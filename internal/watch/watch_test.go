package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func startWatcher(t *testing.T, cfg Config) (*Watcher, chan []Change) {
	t.Helper()
	if cfg.Debounce == 0 {
		cfg.Debounce = 30 * time.Millisecond
	}
	w, err := New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	changes := make(chan []Change, 10)
	w.OnChange(func(c []Change) { changes <- c })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)

	deadline := time.Now().Add(time.Second)
	for !w.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// fsnotify registration happens right after running is set.
	time.Sleep(50 * time.Millisecond)
	return w, changes
}

func waitChange(t *testing.T, changes chan []Change) []Change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change")
		return nil
	}
}

func TestWatcher_File(t *testing.T) {
	dir := t.TempDir()
	tree := filepath.Join(dir, "tree.yaml")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{tree, other} {
		if err := os.WriteFile(p, []byte("a"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, changes := startWatcher(t, Config{Paths: []string{tree}})
	defer w.Stop()

	if err := os.WriteFile(other, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tree, []byte("tag: p"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := waitChange(t, changes)
	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1: %+v", len(got), got)
	}
	abs, _ := filepath.Abs(tree)
	if got[0].Path != abs {
		t.Errorf("Path = %q, want %q", got[0].Path, abs)
	}
	if got[0].Type != ChangeTree {
		t.Errorf("Type = %v, want tree", got[0].Type)
	}
	if got[0].Removed {
		t.Error("write should not be reported as removal")
	}
}

func TestWatcher_DirectoryDebounces(t *testing.T) {
	dir := t.TempDir()
	w, changes := startWatcher(t, Config{Paths: []string{dir}, Debounce: 80 * time.Millisecond})
	defer w.Stop()

	a := filepath.Join(dir, "a.html")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(a, []byte{byte('0' + i)}, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "b.swp"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := waitChange(t, changes)
	if len(got) != 1 || filepath.Base(got[0].Path) != "a.html" || got[0].Type != ChangeMarkup {
		t.Fatalf("unexpected batch %+v", got)
	}
}

func TestWatcher_Stop(t *testing.T) {
	dir := t.TempDir()
	w, _ := startWatcher(t, Config{Paths: []string{dir}})
	if !w.IsRunning() {
		t.Fatal("watcher should be running")
	}
	w.Stop()
	if w.IsRunning() {
		t.Error("watcher should be stopped")
	}
}

func TestNew_MissingPath(t *testing.T) {
	if _, err := New(Config{Paths: []string{filepath.Join(t.TempDir(), "absent.yaml")}}, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestWatcher_Ignore(t *testing.T) {
	w, err := New(Config{Paths: []string{"."}, Ignore: []string{"*.bak", "vendor", "build/out"}}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join("x", "tree.bak"), true},
		{filepath.Join("x", "vendor", "tree.yaml"), true},
		{filepath.Join("a", "build", "out", "t.yaml"), true},
		{filepath.Join("x", "tree.yaml"), false},
		{filepath.Join("x", "vendored.yaml"), false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"tree.yaml", ChangeTree},
		{"tree.yml", ChangeTree},
		{"card.html", ChangeMarkup},
		{"eghact.yaml", ChangeConfig},
		{"eghact.json", ChangeConfig},
		{"image.png", ChangeOther},
	}
	for _, tt := range tests {
		if got := classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
