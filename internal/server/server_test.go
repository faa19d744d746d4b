package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"citescan/internal/bibliography"
	"citescan/internal/cache/database"
	"citescan/internal/cache/memory"
	"citescan/internal/cache/store"
	"citescan/internal/scanner"
	"citescan/internal/server"
)

func startTestServer(t *testing.T) (*httptest.Server, database.Database) {
	t.Helper()

	bib, err := bibliography.NewHayagrivaBib(filepath.Join(t.TempDir(), "bibliography.yaml"))
	if err != nil {
		t.Fatalf("failed to create bibliography: %v", err)
	}
	if err := bib.Override([]bibliography.Entry{
		{Key: "doe2020", Type: "Misc", Title: "On Citations", Path: "doe2020.md"},
	}); err != nil {
		t.Fatalf("failed to seed bibliography: %v", err)
	}

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	docs := memory.NewSQLiteDocumentManager(db, scanner.Options{}, "en-US")
	srv := server.NewServer(store.NewDummyStore(), bib, docs)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, db
}

func postJSON(t *testing.T, url string, body any, wantStatus int, out any) {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(encoded))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d", wantStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d", wantStatus, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestFilesEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.FilesResponse
	getJSON(t, ts.URL+"/files", http.StatusOK, &resp)

	if len(resp.Files) != 3 {
		t.Fatalf("expected 3 files, got %d: %v", len(resp.Files), resp.Files)
	}
	if resp.Files[0] != "essay1.md" {
		t.Errorf("expected sorted files starting with essay1.md, got %v", resp.Files)
	}
}

func TestCitationsEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.CitationsResponse
	getJSON(t, ts.URL+"/citations?path=essay1.md", http.StatusOK, &resp)

	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(resp.Citations))
	}
	if resp.Citations[0].Key != "doe2020" || resp.Citations[1].Key != "smith2021" {
		t.Errorf("unexpected citations: %+v", resp.Citations)
	}
}

func TestCitationsEndpointMissingPath(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.CitationsResponse
	getJSON(t, ts.URL+"/citations", http.StatusBadRequest, &resp)

	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestCitationsEndpointUnknownFile(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.CitationsResponse
	getJSON(t, ts.URL+"/citations?path=absent.md", http.StatusNotFound, &resp)

	if resp.Error == "" {
		t.Error("expected an error message")
	}
}

func TestReferencesEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.CitationsResponse
	getJSON(t, ts.URL+"/references?key=doe2020", http.StatusOK, &resp)

	if len(resp.Citations) != 2 {
		t.Fatalf("expected 2 references, got %d", len(resp.Citations))
	}
	for _, citation := range resp.Citations {
		if citation.Key != "doe2020" {
			t.Errorf("expected key doe2020, got %q", citation.Key)
		}
	}
}

func TestResolveEndpoint(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.ResolveResponse
	getJSON(t, ts.URL+"/resolve?key=doe2020", http.StatusOK, &resp)

	if resp.Title != "On Citations" || resp.Path != "doe2020.md" {
		t.Errorf("unexpected entry: %+v", resp)
	}

	var missing server.ResolveResponse
	getJSON(t, ts.URL+"/resolve?key=absent", http.StatusNotFound, &missing)
	if missing.Error == "" {
		t.Error("expected an error message")
	}
}

func TestDocumentSession(t *testing.T) {
	ts, _ := startTestServer(t)

	var opened server.DocumentResponse
	postJSON(t, ts.URL+"/documents/open", server.OpenDocumentRequest{
		Path:    "draft.md",
		Content: "See [@doe2020, p. 4] here.",
	}, http.StatusOK, &opened)
	if opened.Path != "draft.md" {
		t.Errorf("expected path draft.md, got %q", opened.Path)
	}

	// Opening the same path twice is rejected
	var conflict server.DocumentResponse
	postJSON(t, ts.URL+"/documents/open", server.OpenDocumentRequest{
		Path: "draft.md",
	}, http.StatusConflict, &conflict)
	if conflict.Error == "" {
		t.Error("expected an error message")
	}

	var at server.CitationAtResponse
	getJSON(t, ts.URL+"/documents/citation?path=draft.md&offset=6", http.StatusOK, &at)
	if at.Citation == nil || at.Citation.ID != "doe2020" {
		t.Fatalf("unexpected citation: %+v", at.Citation)
	}
	if at.Citation.Locator != "4" {
		t.Errorf("expected locator 4, got %q", at.Citation.Locator)
	}

	var missed server.CitationAtResponse
	getJSON(t, ts.URL+"/documents/citation?path=draft.md&offset=0", http.StatusNotFound, &missed)
	if missed.Error == "" {
		t.Error("expected an error message")
	}
}

func TestDocumentChangesRescan(t *testing.T) {
	ts, _ := startTestServer(t)

	var opened server.DocumentResponse
	postJSON(t, ts.URL+"/documents/open", server.OpenDocumentRequest{
		Path:    "draft.md",
		Content: "plain text",
	}, http.StatusOK, &opened)

	var at server.CitationAtResponse
	getJSON(t, ts.URL+"/documents/citation?path=draft.md&offset=0", http.StatusNotFound, &at)

	var changed server.DocumentResponse
	postJSON(t, ts.URL+"/documents/changes", server.ChangesRequest{
		Path: "draft.md",
		Changes: []server.DocumentChange{
			{Start: 0, End: 5, NewText: "[@smith2021]"},
		},
	}, http.StatusOK, &changed)

	getJSON(t, ts.URL+"/documents/citation?path=draft.md&offset=3", http.StatusOK, &at)
	if at.Citation == nil || at.Citation.ID != "smith2021" {
		t.Fatalf("unexpected citation: %+v", at.Citation)
	}

	// Edits past the end of the content are rejected
	var invalid server.DocumentResponse
	postJSON(t, ts.URL+"/documents/changes", server.ChangesRequest{
		Path: "draft.md",
		Changes: []server.DocumentChange{
			{Start: 0, End: 1000, NewText: ""},
		},
	}, http.StatusBadRequest, &invalid)
	if invalid.Error == "" {
		t.Error("expected an error message")
	}
}

func TestDocumentCommit(t *testing.T) {
	ts, db := startTestServer(t)

	var opened server.DocumentResponse
	postJSON(t, ts.URL+"/documents/open", server.OpenDocumentRequest{
		Path:    "draft.md",
		Content: "As argued in [@doe2020].",
	}, http.StatusOK, &opened)

	var committed server.DocumentResponse
	postJSON(t, ts.URL+"/documents/commit", server.DocumentRequest{Path: "draft.md"},
		http.StatusOK, &committed)

	records, err := db.GetCitations("draft.md")
	if err != nil {
		t.Fatalf("failed to get citations: %v", err)
	}
	if len(records) != 1 || records[0].Key != "doe2020" {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestDocumentClose(t *testing.T) {
	ts, _ := startTestServer(t)

	var resp server.DocumentResponse
	postJSON(t, ts.URL+"/documents/open", server.OpenDocumentRequest{
		Path:    "draft.md",
		Content: "[@doe2020]",
	}, http.StatusOK, &resp)
	postJSON(t, ts.URL+"/documents/close", server.DocumentRequest{Path: "draft.md"},
		http.StatusOK, &resp)

	var at server.CitationAtResponse
	getJSON(t, ts.URL+"/documents/citation?path=draft.md&offset=2", http.StatusNotFound, &at)
	if at.Error == "" {
		t.Error("expected an error message")
	}

	var closed server.DocumentResponse
	postJSON(t, ts.URL+"/documents/close", server.DocumentRequest{Path: "absent.md"},
		http.StatusNotFound, &closed)
	if closed.Error == "" {
		t.Error("expected an error message")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts, _ := startTestServer(t)

	resp, err := http.Post(ts.URL+"/files", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", resp.StatusCode)
	}
}
