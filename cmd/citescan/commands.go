package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"citescan/internal/bibliography"
	"citescan/internal/cache/store/sqlite"
	"citescan/internal/citation"
	"citescan/internal/crossref"
	"citescan/internal/locale"
	"citescan/internal/scanner"
	"citescan/internal/scheduler"
	"citescan/internal/server"
	"citescan/internal/utils"
)

// ScanCmd scans standalone files without touching an index.
type ScanCmd struct {
	Paths       []string `arg:"" optional:"" type:"existingfile" help:"Markdown files to scan. Reads stdin when omitted."`
	Locale      string   `default:"en-US" help:"Locale for locator labels."`
	LocaleFile  string   `type:"existingfile" optional:"" help:"YAML file with additional locale tables."`
	IgnoreLinks bool     `help:"Skip citations inside markdown link targets."`
	Crossrefs   bool     `help:"Include rendered crossref labels in the output."`
}

// scanResult is the per-file output of the scan command.
type scanResult struct {
	Path      string                      `json:"path"`
	Citations []citation.CitationGroup    `json:"citations"`
	Crossrefs []crossref.RenderedCitation `json:"crossrefs,omitempty"`
}

func (c *ScanCmd) Run() error {
	terms := locale.Default()
	if c.LocaleFile != "" {
		var err error
		terms, err = locale.Load(c.LocaleFile)
		if err != nil {
			return err
		}
	}

	options := scanner.Options{
		IgnoreLinks: c.IgnoreLinks,
		Labels:      terms.Labels(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	paths := c.Paths
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	for _, path := range paths {
		var content []byte
		var err error
		if path == "-" {
			content, err = io.ReadAll(os.Stdin)
		} else {
			content, err = os.ReadFile(path)
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		groups := scanner.Scan(string(content), options)
		result := scanResult{Path: path, Citations: []citation.CitationGroup{}}
		for _, group := range groups {
			result.Citations = append(result.Citations, citation.Fold(group, c.Locale, terms))
		}
		if c.Crossrefs {
			result.Crossrefs = crossref.Render(result.Citations)
		}

		if err := encoder.Encode(result); err != nil {
			return err
		}
	}
	return nil
}

// indexConfig is shared by the commands that need a store.
type indexConfig struct {
	Root string `arg:"" type:"existingdir" help:"Notes directory to index."`
	DB   string `help:"Path to the cache database." default:""`
	Bib  string `help:"Path to the bibliography file." default:""`
}

func (c *indexConfig) storeConfig() sqlite.Config {
	db := c.DB
	if db == "" {
		db = c.Root + "/.citescan.db"
	}
	bib := c.Bib
	if bib == "" {
		bib = c.Root + "/bibliography.yaml"
	}
	return sqlite.Config{
		RootPath: c.Root,
		DBPath:   db,
		BibPath:  bib,
	}
}

// IndexCmd builds or refreshes the citation index.
type IndexCmd struct {
	indexConfig
	Recompute bool   `help:"Discard the index and rebuild from scratch." xor:"mode"`
	File      string `type:"existingfile" help:"Update a single file instead of walking the root." xor:"mode"`
}

func (c *IndexCmd) Run() error {
	st, err := sqlite.NewSQLiteStore(c.storeConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	if c.Recompute {
		return st.Recompute()
	}
	if c.File != "" {
		return st.UpdateOne(c.File)
	}
	return st.UpdateAll()
}

// ServeCmd runs the query server with periodic reindexing.
type ServeCmd struct {
	indexConfig
	Addr     string        `default:"localhost:8347" help:"Address to listen on."`
	Interval time.Duration `default:"5m" help:"Reindex interval."`
}

func (c *ServeCmd) Run() error {
	st, err := sqlite.NewSQLiteStore(c.storeConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.NewScheduler(8)
	sched.RunScheduler()
	defer sched.StopScheduler()

	go sched.SchedulePeriodicTask(c.Interval, scheduler.Task{
		Name:    "reindex",
		Execute: st.UpdateAll,
	})

	docs := st.Documents()
	defer docs.CloseAll()

	return server.NewServer(st, st, docs).ListenAndServe(c.Addr)
}

// ResolveCmd looks up a citation key.
type ResolveCmd struct {
	indexConfig
	Key string `arg:"" help:"Citation key to resolve."`
}

// resolveResult is the output of the resolve command.
type resolveResult struct {
	Entry      *bibliography.Entry `json:"entry,omitempty"`
	NotePath   string              `json:"notePath,omitempty"`
	References []referenceResult   `json:"references"`
}

type referenceResult struct {
	Path  string `json:"path"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

func (c *ResolveCmd) Run() error {
	st, err := sqlite.NewSQLiteStore(c.storeConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	result := resolveResult{References: []referenceResult{}}
	if entry, ok := st.Resolve(c.Key); ok {
		result.Entry = &entry
	}

	// The key's literature note, if one exists under the root.
	notePath := utils.Key2NotePath(c.Key, c.Root)
	if _, err := os.Stat(notePath); err == nil {
		result.NotePath = notePath
	}

	records, err := st.GetReferences(c.Key)
	if err != nil {
		return err
	}
	for _, record := range records {
		result.References = append(result.References, referenceResult{
			Path:  record.SourcePath,
			Start: record.Start,
			End:   record.End,
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
