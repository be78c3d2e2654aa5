package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/jerry/internal/doctree"
	"github.com/dgallion1/jerry/internal/jerry"
	"github.com/dgallion1/jerry/internal/session"
	"github.com/dgallion1/jerry/internal/span"
)

const maxJSONBody = 1 << 20

// positionJSON is a host position: the child-index path from <body> to a node and
// an offset inside it.
type positionJSON struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

type selectionRequest struct {
	Start positionJSON `json:"start"`
	End   positionJSON `json:"end"`
}

type highlightRequest struct {
	Category string `json:"category"`
	Start    *int   `json:"start"`
	End      *int   `json:"end"`
	// Selection highlights the current selection instead of [Start, End).
	Selection bool `json:"selection"`
}

type tokensRequest struct {
	Tokens []string `json:"tokens"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// errBadRequest marks failures caused by the request content.
var errBadRequest = errors.New("bad request")

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var req selectionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var (
		sel   span.Address
		found bool
	)
	err := doc.Do(func(ss session.Session) error {
		body := ss.Doc.Body()
		start := doctree.NodeAtPath(body, req.Start.Path)
		end := doctree.NodeAtPath(body, req.End.Path)
		if start == nil || end == nil {
			return errBadRequest
		}
		ss.Selection.Set(span.Range{
			StartNode: start, StartOffset: req.Start.Offset,
			EndNode: end, EndOffset: req.End.Offset,
		})
		sel, found = ss.Controller.GetSelection()
		return nil
	})
	if err != nil {
		jsonError(w, "selection path does not name a node", http.StatusBadRequest)
		return
	}
	if !found {
		jsonError(w, "selection is outside the document", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"selection": toAddressJSON(sel)})
}

func (s *Server) handleToggleHighlight(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var req highlightRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Selection && (req.Start == nil || req.End == nil) {
		jsonError(w, "start and end are required", http.StatusBadRequest)
		return
	}

	var (
		wrappers   int
		highlights map[string][]span.Address
	)
	err := doc.Do(func(ss session.Session) error {
		c := ss.Controller
		var a span.Address
		if req.Selection {
			sel, ok := c.GetSelection()
			if !ok {
				return errors.New("no selection")
			}
			a = sel
		} else {
			a = span.NewAddress(c.Root(), *req.Start, *req.End)
			if !c.Span().Includes(a) || a.End < a.Start {
				return errors.New("range outside the document")
			}
		}
		ws, err := c.Toggle(a, req.Category)
		if err != nil {
			return err
		}
		wrappers = len(ws)
		highlights = c.GatherHighlights()
		return nil
	})
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wrappers":   wrappers,
		"highlights": highlightsJSON(highlights),
	})
}

func (s *Server) handleGetTokens(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var tokens []string
	err := doc.Do(func(ss session.Session) error {
		var err error
		tokens, err = ss.Controller.Serialize()
		return err
	})
	if err != nil {
		jsonError(w, "serialize failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if tokens == nil {
		tokens = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tokens": tokens})
}

func (s *Server) handlePutTokens(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var req tokensRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	s.restore(w, doc, req.Tokens)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if s.ps == nil {
		jsonError(w, "persistence is not configured", http.StatusServiceUnavailable)
		return
	}
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	var tokens []string
	if err := doc.Do(func(ss session.Session) error {
		var err error
		tokens, err = ss.Controller.Serialize()
		return err
	}); err != nil {
		jsonError(w, "serialize failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := s.ps.PutHighlights(r.Context(), doc.ID, tokens); err != nil {
		s.log.Error("save highlights failed", "doc_id", doc.ID, "error", err)
		jsonError(w, "failed to save highlights: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": len(tokens)})
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if s.ps == nil {
		jsonError(w, "persistence is not configured", http.StatusServiceUnavailable)
		return
	}
	doc, ok := s.document(w, r)
	if !ok {
		return
	}
	tokens, found, err := s.ps.GetHighlights(r.Context(), doc.ID)
	if err != nil {
		s.log.Error("load highlights failed", "doc_id", doc.ID, "error", err)
		jsonError(w, "failed to load highlights: "+err.Error(), http.StatusBadGateway)
		return
	}
	if !found {
		jsonError(w, "no saved highlights", http.StatusNotFound)
		return
	}
	s.restore(w, doc, tokens)
}

// restore applies tokens to doc and reports the outcome.
func (s *Server) restore(w http.ResponseWriter, doc *session.Document, tokens []string) {
	var applied, dropped int
	err := doc.Do(func(ss session.Session) error {
		var err error
		applied, dropped, err = ss.Controller.Restore(tokens)
		return err
	})
	switch {
	case errors.Is(err, jerry.ErrMalformedToken), errors.Is(err, jerry.ErrInvalidCategory):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		jsonError(w, "restore failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"dropped": dropped,
	})
}
