package sqlite_test

import (
	"os"
	"path/filepath"
	"testing"

	"citescan/internal/cache/store/sqlite"
)

type storeHelper struct {
	store *sqlite.SQLiteStore
	root  string
}

func setupStore(t *testing.T) *storeHelper {
	t.Helper()

	root := t.TempDir()
	store, err := sqlite.NewSQLiteStore(sqlite.Config{
		RootPath: root,
		DBPath:   filepath.Join(t.TempDir(), "cache.db"),
		BibPath:  filepath.Join(t.TempDir(), "bibliography.yaml"),
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})

	return &storeHelper{store: store, root: root}
}

func (h *storeHelper) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(h.root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestUpdateAll(t *testing.T) {
	h := setupStore(t)

	essay := h.writeFile(t, "essay.md", "As shown in [@doe2020, p. 12] the claim holds.\n")
	h.writeFile(t, "notes/other.md", "See @smith2021 for details.\n")
	h.writeFile(t, "ignored.txt", "[@doe2020]\n")

	if err := h.store.UpdateAll(); err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}

	paths, err := h.store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 indexed files, got %d: %v", len(paths), paths)
	}

	citations, err := h.store.GetCitations(essay)
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].Key != "doe2020" {
		t.Errorf("expected key doe2020, got %q", citations[0].Key)
	}

	refs, err := h.store.GetReferences("smith2021")
	if err != nil {
		t.Fatalf("GetReferences failed: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
}

func TestUpdateOne(t *testing.T) {
	h := setupStore(t)

	path := h.writeFile(t, "essay.md", "Nothing cited yet.\n")
	if err := h.store.UpdateOne(path); err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}

	citations, err := h.store.GetCitations(path)
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 0 {
		t.Fatalf("expected no citations, got %d", len(citations))
	}

	h.writeFile(t, "essay.md", "Now citing [@doe2020] and [@smith2021].\n")
	if err := h.store.UpdateOne(path); err != nil {
		t.Fatalf("UpdateOne after edit failed: %v", err)
	}

	citations, err = h.store.GetCitations(path)
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].Key != "doe2020" || citations[1].Key != "smith2021" {
		t.Errorf("unexpected citations: %+v", citations)
	}
}

func TestUpdateAllRemovesDeletedFiles(t *testing.T) {
	h := setupStore(t)

	keep := h.writeFile(t, "keep.md", "[@doe2020]\n")
	gone := h.writeFile(t, "gone.md", "[@smith2021]\n")

	if err := h.store.UpdateAll(); err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}

	if err := os.Remove(gone); err != nil {
		t.Fatalf("failed to remove file: %v", err)
	}
	if err := h.store.UpdateAll(); err != nil {
		t.Fatalf("second UpdateAll failed: %v", err)
	}

	paths, err := h.store.GetAllFiles()
	if err != nil {
		t.Fatalf("GetAllFiles failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != keep {
		t.Errorf("expected only %s to remain, got %v", keep, paths)
	}
}

func TestNoteIndexAssignment(t *testing.T) {
	h := setupStore(t)

	path := h.writeFile(t, "essay.md",
		"First [[notes/a|@doe2020]] then plain [@smith2021] then [[notes/b|@jones2022]].\n")
	if err := h.store.UpdateOne(path); err != nil {
		t.Fatalf("UpdateOne failed: %v", err)
	}

	citations, err := h.store.GetCitations(path)
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(citations))
	}

	wantNotes := []struct {
		litNote   string
		noteIndex int
	}{
		{"notes/a", 1},
		{"", 0},
		{"notes/b", 2},
	}
	for i, want := range wantNotes {
		if citations[i].LitNote != want.litNote {
			t.Errorf("citation %d: expected litNote %q, got %q", i, want.litNote, citations[i].LitNote)
		}
		if citations[i].NoteIndex != want.noteIndex {
			t.Errorf("citation %d: expected noteIndex %d, got %d", i, want.noteIndex, citations[i].NoteIndex)
		}
	}
}

func TestRecompute(t *testing.T) {
	h := setupStore(t)

	path := h.writeFile(t, "essay.md", "[@doe2020]\n")
	if err := h.store.UpdateAll(); err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}
	if err := h.store.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}

	citations, err := h.store.GetCitations(path)
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 1 {
		t.Fatalf("expected 1 citation after recompute, got %d", len(citations))
	}
}

func TestBibliographyWriteThrough(t *testing.T) {
	root := t.TempDir()
	bibPath := filepath.Join(t.TempDir(), "bibliography.yaml")
	store, err := sqlite.NewSQLiteStore(sqlite.Config{
		RootPath: root,
		DBPath:   filepath.Join(t.TempDir(), "cache.db"),
		BibPath:  bibPath,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer store.Close()

	if err := os.WriteFile(filepath.Join(root, "doe2020.md"), []byte("[@x]\n"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	if err := store.UpdateAll(); err != nil {
		t.Fatalf("UpdateAll failed: %v", err)
	}

	entry, ok := store.Resolve("doe2020")
	if !ok {
		t.Fatal("expected doe2020 in bibliography")
	}
	if entry.Path != "doe2020.md" {
		t.Errorf("expected path doe2020.md, got %q", entry.Path)
	}

	if _, err := os.Stat(bibPath); err != nil {
		t.Errorf("expected bibliography file on disk: %v", err)
	}
}

func TestRootMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	bibPath := filepath.Join(t.TempDir(), "bibliography.yaml")

	store, err := sqlite.NewSQLiteStore(sqlite.Config{
		RootPath: t.TempDir(),
		DBPath:   dbPath,
		BibPath:  bibPath,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}

	// Reopening the same database for a different root is an error
	_, err = sqlite.NewSQLiteStore(sqlite.Config{
		RootPath: t.TempDir(),
		DBPath:   dbPath,
		BibPath:  bibPath,
	})
	if err == nil {
		t.Fatal("expected an error for a database built from another root")
	}
}

func TestDocuments(t *testing.T) {
	h := setupStore(t)

	docs := h.store.Documents()
	doc, err := docs.OpenDocument("draft.md", "See [@doe2020].")
	if err != nil {
		t.Fatalf("OpenDocument failed: %v", err)
	}

	groups := doc.GetCitations()
	if len(groups) != 1 || groups[0].Citations[0].ID != "doe2020" {
		t.Fatalf("unexpected citations: %+v", groups)
	}

	if err := docs.CommitDocument("draft.md"); err != nil {
		t.Fatalf("CommitDocument failed: %v", err)
	}

	citations, err := h.store.GetCitations("draft.md")
	if err != nil {
		t.Fatalf("GetCitations failed: %v", err)
	}
	if len(citations) != 1 || citations[0].Key != "doe2020" {
		t.Fatalf("unexpected records: %+v", citations)
	}

	if err := docs.CloseAll(); err != nil {
		t.Fatalf("CloseAll failed: %v", err)
	}
}
