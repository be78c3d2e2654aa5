package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/jerry"
	"github.com/dgallion1/jerry/internal/parser"
	"github.com/dgallion1/jerry/internal/session"
	"github.com/dgallion1/jerry/internal/span"
	"github.com/go-chi/chi/v5"
)

// addressJSON is an address under the document body.
type addressJSON struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Bias    string `json:"bias,omitempty"`
	Content string `json:"content"`
}

func toAddressJSON(a span.Address) addressJSON {
	out := addressJSON{Start: a.Start, End: a.End, Content: a.Content()}
	if a.Bias != span.Neither {
		out.Bias = a.Bias.String()
	}
	return out
}

func highlightsJSON(set map[string][]span.Address) map[string][]addressJSON {
	out := make(map[string][]addressJSON, len(set))
	for _, cat := range jerry.Categories(set) {
		for _, a := range set[cat] {
			out[cat] = append(out[cat], toAddressJSON(a))
		}
	}
	return out
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	parsed, err := parser.Load(bytes.NewReader(data), filename, parser.Options{
		PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext,
	})
	if err != nil {
		s.log.Warn("parse failed", "filename", filename, "error", err)
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		parsed.Title = title
	}

	doc := session.NewDocument(parsed, filename, data, s.log)
	if err := s.store.Put(doc); err != nil {
		writeStoreError(w, err)
		return
	}
	s.log.Info("document loaded", "doc_id", doc.ID, "filename", filename)

	var hash uint32
	doc.Do(func(ss session.Session) error {
		hash = ss.Controller.Span().Hash()
		return nil
	})
	snap := doc.Snapshot()
	writeJSON(w, http.StatusCreated, map[string]any{
		"doc_id":       snap.ID,
		"title":        snap.Title,
		"filename":     snap.Filename,
		"content_hash": snap.ContentHash,
		"length":       snap.Length,
		"hash":         hash,
	})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	resp := map[string]any{}
	doc.Do(func(ss session.Session) error {
		c := ss.Controller
		resp["content"] = c.Content()
		resp["hash"] = c.Span().Hash()
		resp["highlights"] = highlightsJSON(c.GatherHighlights())
		return nil
	})
	snap := doc.Snapshot()
	resp["doc_id"] = snap.ID
	resp["title"] = snap.Title
	resp["filename"] = snap.Filename
	resp["content_hash"] = snap.ContentHash
	resp["length"] = snap.Length
	resp["created_at"] = snap.CreatedAt
	resp["updated_at"] = snap.UpdatedAt
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDocumentHTML(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var out string
	err := doc.Do(func(ss session.Session) error {
		var err error
		out, err = doctree.Render(ss.Doc.Body())
		return err
	})
	if err != nil {
		jsonError(w, "render failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, out)
}

// handleDeleteDocument drops the session. With ?purge=true the persisted
// highlights are removed as well.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.store.Delete(docID); err != nil {
		writeStoreError(w, err)
		return
	}

	purged := false
	if r.URL.Query().Get("purge") == "true" && s.ps != nil {
		if err := s.ps.DeleteHighlights(r.Context(), docID); err != nil {
			s.log.Error("purge highlights failed", "doc_id", docID, "error", err)
			jsonError(w, "failed to purge highlights: "+err.Error(), http.StatusBadGateway)
			return
		}
		purged = true
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID, "purged": purged})
}

// document resolves {docID}, writing the error response when it cannot.
func (s *Server) document(w http.ResponseWriter, r *http.Request) (*session.Document, bool) {
	doc, err := s.store.Get(chi.URLParam(r, "docID"))
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	return doc, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		jsonError(w, "document not found", http.StatusNotFound)
	case errors.Is(err, session.ErrStoreFull):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
