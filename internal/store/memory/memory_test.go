package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"kitty/internal/core"
	"kitty/internal/store"
	"kitty/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New(core.DefaultCategories)
	})
}

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()

	s := NewFromFiles(dir)
	cats, err := s.ListCategories(context.Background(), 0)
	if err != nil || len(cats) != len(core.DefaultCategories) {
		t.Fatalf("expected defaults when file missing: cats=%v err=%v", cats, err)
	}

	content := "# header\nRent\nFuel\nrent\n\n  Pets  \n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background(), 0)
	if len(cats) != 3 {
		t.Fatalf("unexpected cats: %v", cats)
	}
	want := []string{"Fuel", "Pets", "Rent"}
	for i, c := range cats {
		if c.Name != want[i] {
			t.Fatalf("cats[%d] = %q, want %q", i, c.Name, want[i])
		}
	}
}
