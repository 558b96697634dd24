package domain

// CategoryCustomers is the category label of documents sourced from the
// customers table. The exact-match locator only searches these.
const CategoryCustomers = "customers"

// CategoryUnknown labels documents whose origin could not be determined
// (missing or unparseable metadata envelope).
const CategoryUnknown = "unknown"

// Document is one knowledge-base entry inside a snapshot.
type Document struct {
	ID       int64
	Content  string
	Category string
}

// Snapshot is one immutable cache generation of the document corpus.
//
// IDs is sorted ascending and Vectors[i] is the embedding of the document
// IDs[i]; Contents and Categories are keyed by the same id set. The three
// structures are built together by the store adapter and never mutated
// afterwards, so a Snapshot can be shared freely between goroutines.
type Snapshot struct {
	IDs        []int64
	Contents   map[int64]string
	Categories map[int64]string
	Vectors    [][]float32
}

// Empty reports whether the snapshot holds no vector rows. An empty
// snapshot is a valid "no data loaded yet" state, not a failure.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Vectors) == 0
}

// Len returns the number of documents in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.IDs)
}

// Document returns the document at row i.
func (s *Snapshot) Document(i int) Document {
	id := s.IDs[i]
	return Document{ID: id, Content: s.Contents[id], Category: s.Categories[id]}
}
