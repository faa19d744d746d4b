package server

import (
	"net/http"

	"github.com/tliron/commonlog"

	"citescan/internal/bibliography"
	"citescan/internal/cache/memory"
	"citescan/internal/cache/store"
)

// Resolver looks up bibliography entries by citation key.
type Resolver interface {
	Resolve(key string) (bibliography.Entry, bool)
}

type Server struct {
	store store.Store
	bib   Resolver
	docs  memory.DocumentManager
	log   commonlog.Logger
}

func NewServer(st store.Store, bib Resolver, docs memory.DocumentManager) *Server {
	return &Server{
		store: st,
		bib:   bib,
		docs:  docs,
		log:   commonlog.GetLogger("server"),
	}
}

func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/files", s.handleFiles)
	mux.HandleFunc("/citations", s.handleCitations)
	mux.HandleFunc("/references", s.handleReferences)
	mux.HandleFunc("/resolve", s.handleResolve)
	mux.HandleFunc("/documents/open", s.handleDocumentOpen)
	mux.HandleFunc("/documents/changes", s.handleDocumentChanges)
	mux.HandleFunc("/documents/commit", s.handleDocumentCommit)
	mux.HandleFunc("/documents/close", s.handleDocumentClose)
	mux.HandleFunc("/documents/citation", s.handleDocumentCitation)
	return mux
}

// ListenAndServe runs the query server until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Noticef("listening on %s", addr)
	return http.ListenAndServe(addr, s.Router())
}
