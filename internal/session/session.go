// Package session keeps the live documents of the HTTP surface. Each document owns its
// tree and highlight controller behind a mutex, so requests on the same document run
// one at a time.
package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/jerry"
)

var (
	// ErrNotFound indicates an unknown or expired document ID.
	ErrNotFound = errors.New("document not found")
	// ErrStoreFull indicates the store is at its document limit.
	ErrStoreFull = errors.New("document store full")
)

// Document is one loaded document and its highlighting session.
type Document struct {
	mu sync.Mutex

	ID          string
	Filename    string
	Title       string
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	doc       *doctree.Document
	selection *jerry.StaticSelection
	ctrl      *jerry.Controller
}

// NewDocument starts a session over doc's body. The ID is derived from the raw file
// content, so re-uploading the same bytes replaces the earlier session.
func NewDocument(doc *doctree.Document, filename string, data []byte, log *slog.Logger) *Document {
	if log == nil {
		log = slog.Default()
	}
	hash := ContentHashHex(data)
	sel := &jerry.StaticSelection{}
	now := time.Now()
	return &Document{
		ID:          hash[:16],
		Filename:    filename,
		Title:       doc.Title,
		ContentHash: hash,
		CreatedAt:   now,
		UpdatedAt:   now,
		doc:         doc,
		selection:   sel,
		ctrl: jerry.New(doc.Body(), jerry.Options{
			Selection: sel,
			Logger:    log.With("doc_id", hash[:16]),
		}),
	}
}

// Session is the locked view of a document handed to Do.
type Session struct {
	Doc        *doctree.Document
	Selection  *jerry.StaticSelection
	Controller *jerry.Controller
}

// Do runs fn with exclusive access to the document's tree and controller.
func (d *Document) Do(fn func(s Session) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.UpdatedAt = time.Now()
	return fn(Session{Doc: d.doc, Selection: d.selection, Controller: d.ctrl})
}

// Snapshot is a read-only, JSON-safe copy of document metadata.
type Snapshot struct {
	ID          string    `json:"doc_id"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	ContentHash string    `json:"content_hash"`
	Length      int       `json:"length"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the document metadata.
func (d *Document) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Snapshot{
		ID:          d.ID,
		Filename:    d.Filename,
		Title:       d.Title,
		ContentHash: d.ContentHash,
		Length:      d.ctrl.Span().Len(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d *Document) lastUsed() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.UpdatedAt
}

// Store is a thread-safe in-memory document registry with TTL eviction.
type Store struct {
	mu   sync.Mutex
	docs map[string]*Document
	ttl  time.Duration
	max  int
}

// NewStore creates a store. maxDocs <= 0 means no limit.
func NewStore(ttl time.Duration, maxDocs int) *Store {
	return &Store{
		docs: make(map[string]*Document),
		ttl:  ttl,
		max:  maxDocs,
	}
}

// Put registers doc, replacing any document with the same ID.
func (s *Store) Put(doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists && s.max > 0 && len(s.docs) >= s.max {
		return fmt.Errorf("%w: %d documents", ErrStoreFull, len(s.docs))
	}
	s.docs[doc.ID] = doc
	return nil
}

// Get returns the document with id.
func (s *Store) Get(id string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, nil
}

// Delete removes the document with id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.docs, id)
	return nil
}

// Len returns the number of live documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.docs)
}

// Cleanup removes documents idle for longer than the TTL and returns how many went.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, doc := range s.docs {
		if now.Sub(doc.lastUsed()) > s.ttl {
			delete(s.docs, id)
			removed++
		}
	}
	return removed
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
