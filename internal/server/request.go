package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	files, err := s.store.GetAllFiles()
	if err != nil {
		s.log.Errorf("files query failed: %s", err.Error())
		writeJSON(w, http.StatusInternalServerError, FilesResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, FilesResponse{Files: files})
}

func (s *Server) handleCitations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, CitationsResponse{Error: "missing path parameter"})
		return
	}

	records, err := s.store.GetCitations(path)
	if err != nil {
		writeJSON(w, http.StatusNotFound, CitationsResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, CitationsResponse{Citations: toCitationResults(records)})
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, CitationsResponse{Error: "missing key parameter"})
		return
	}

	records, err := s.store.GetReferences(key)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, CitationsResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, CitationsResponse{Citations: toCitationResults(records)})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, ResolveResponse{Error: "missing key parameter"})
		return
	}

	entry, ok := s.bib.Resolve(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, ResolveResponse{Key: key, Error: "key not found"})
		return
	}

	writeJSON(w, http.StatusOK, ResolveResponse{
		Key:   entry.Key,
		Type:  entry.Type,
		Title: entry.Title,
		Path:  entry.Path,
	})
}

func (s *Server) handleDocumentOpen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req OpenDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Error: err.Error()})
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Error: "missing path"})
		return
	}

	if _, err := s.docs.OpenDocument(req.Path, req.Content); err != nil {
		writeJSON(w, http.StatusConflict, DocumentResponse{Path: req.Path, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{Path: req.Path})
}

func (s *Server) handleDocumentChanges(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Error: err.Error()})
		return
	}

	doc, ok := s.docs.GetDocument(req.Path)
	if !ok {
		writeJSON(w, http.StatusNotFound, DocumentResponse{Path: req.Path, Error: "document not open"})
		return
	}

	if err := doc.ApplyChanges(toChanges(req.Changes)); err != nil {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Path: req.Path, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{Path: req.Path})
}

func (s *Server) handleDocumentCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Error: err.Error()})
		return
	}

	if _, ok := s.docs.GetDocument(req.Path); !ok {
		writeJSON(w, http.StatusNotFound, DocumentResponse{Path: req.Path, Error: "document not open"})
		return
	}

	if err := s.docs.CommitDocument(req.Path); err != nil {
		s.log.Errorf("commit failed for %s: %s", req.Path, err.Error())
		writeJSON(w, http.StatusInternalServerError, DocumentResponse{Path: req.Path, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{Path: req.Path})
}

func (s *Server) handleDocumentClose(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, DocumentResponse{Error: err.Error()})
		return
	}

	if _, ok := s.docs.GetDocument(req.Path); !ok {
		writeJSON(w, http.StatusNotFound, DocumentResponse{Path: req.Path, Error: "document not open"})
		return
	}

	if err := s.docs.CloseDocument(req.Path); err != nil {
		writeJSON(w, http.StatusInternalServerError, DocumentResponse{Path: req.Path, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{Path: req.Path})
}

func (s *Server) handleDocumentCitation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, CitationAtResponse{Error: "missing path parameter"})
		return
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CitationAtResponse{Error: "invalid offset parameter"})
		return
	}

	doc, ok := s.docs.GetDocument(path)
	if !ok {
		writeJSON(w, http.StatusNotFound, CitationAtResponse{Error: "document not open"})
		return
	}

	cit, ok := doc.CitationAt(offset)
	if !ok {
		writeJSON(w, http.StatusNotFound, CitationAtResponse{Error: "no citation at offset"})
		return
	}

	writeJSON(w, http.StatusOK, CitationAtResponse{Citation: &cit})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
