package database

import "errors"

var (
	ErrNotFound            = errors.New("record not found")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrConstraintViolation = errors.New("constraint violation")
)

// FileRecord is one indexed markdown file. Exists is cleared when the
// record survives only as a citation target; such records are purged
// on Close.
type FileRecord struct {
	Path         string
	LastModified int64
	Checksum     []byte
}

// CitationRecord is one citation occurrence inside a source file.
// Start and End are byte offsets into the file; Ord is the occurrence
// index within the file. NoteIndex is the document-order number
// assigned to literature-note citations, zero for the rest.
type CitationRecord struct {
	SourcePath string
	Key        string
	CiteType   string
	LitNote    string
	NoteIndex  int
	Start      int
	End        int
	Ord        int
}

type Database interface {
	WithTx(fn func(Transaction) error) error

	GetFile(path string) (*FileRecord, error)
	GetAllFiles() ([]FileRecord, error)
	UpsertFile(file *FileRecord) error
	DeleteFile(path string) error

	GetCitations(sourcePath string) ([]CitationRecord, error)
	GetCitationsByKey(key string) ([]CitationRecord, error)
	UpsertCitations(sourcePath string, citations []CitationRecord) error
	DeleteCitations(sourcePath string) error

	GetMetadata(key string) ([]byte, error)
	UpsertMetadata(key string, value []byte) error

	Clear() error
	Close() error
}

type Transaction interface {
	UpsertFile(file *FileRecord) error
	UpsertCitations(sourcePath string, citations []CitationRecord) error
}
