package bibliography

// Entry is one bibliography record keyed by its citation key.
type Entry struct {
	Key   string
	Type  string
	Title string
	Path  string
}

type Bibliography interface {
	Resolve(key string) (Entry, bool)
	Keys() []string
	Append([]Entry) error
	Override([]Entry) error
}
