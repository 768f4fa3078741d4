package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/codec"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/registry"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

// tableRequest creates or edits a table. Nil fields are left unchanged.
// Columns, when present, replace the table's columns: entries whose id names
// an existing column update it, the rest are added with fresh ids.
type tableRequest struct {
	Name    *string         `json:"name"`
	X       *float64        `json:"x"`
	Y       *float64        `json:"y"`
	Columns []columnRequest `json:"columns"`
}

type columnRequest struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type"`
	IsPrimaryKey        bool   `json:"isPrimaryKey"`
	IsForeignKey        bool   `json:"isForeignKey"`
	ForeignKeyReference string `json:"foreignKeyReference"`
	IsAutoIncrement     bool   `json:"isAutoIncrement"`
	IsGuid              bool   `json:"isGuid"`
}

type positionRequest struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

type kindRequest struct {
	RelationshipType string `json:"relationshipType"`
	Direction        string `json:"direction"`
}

func invalidRequest(msg string) *alerr.Error {
	return alerr.New(alerr.ErrDocumentInvalid, msg)
}

func (req tableRequest) validate() error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return invalidRequest("table name is empty")
	}
	if (req.X == nil) != (req.Y == nil) {
		return invalidRequest("x and y must be given together")
	}
	if req.Columns != nil && len(req.Columns) == 0 {
		return invalidRequest("a table needs at least one column")
	}
	for i, c := range req.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return invalidRequest("column name is empty").With("index", i)
		}
		if c.Type != "" {
			if _, err := diagram.ParseDataType(c.Type); err != nil {
				return err
			}
		}
		if c.IsForeignKey && c.ForeignKeyReference != "" {
			if err := registry.ValidateReference(c.ForeignKeyReference); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c columnRequest) apply(col *diagram.Column) {
	col.Name = c.Name
	if c.Type != "" {
		col.DataType = diagram.DataType(c.Type)
	}
	col.IsPrimaryKey = c.IsPrimaryKey
	col.IsForeignKey = c.IsForeignKey
	col.ForeignKeyReference = c.ForeignKeyReference
	col.IsAutoIncrement = c.IsAutoIncrement
	col.IsGuidGenerated = c.IsGuid
}

// applyTable copies a validated request onto the draft.
func applyTable(d *erdpad.Draft, req tableRequest) {
	if req.Name != nil {
		d.SetName(strings.TrimSpace(*req.Name))
	}
	if req.Columns == nil {
		return
	}

	keep := make(map[string]bool, len(req.Columns))
	for _, c := range req.Columns {
		t := d.Table()
		id := c.ID
		if id == "" || keep[id] || t.Column(id) == nil {
			id = d.AddColumn().ID
		}
		keep[id] = true
		d.UpdateColumn(id, c.apply)
	}
	for _, col := range d.Table().Columns {
		if !keep[col.ID] {
			d.DeleteColumn(col.ID)
		}
	}
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type pointDoc struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type markerDoc struct {
	Kind  string   `json:"kind"`
	At    pointDoc `json:"at"`
	Color string   `json:"color"`
}

type connectorDoc struct {
	RelationshipID   string      `json:"relationshipId"`
	FromTableID      string      `json:"fromTableId"`
	ToTableID        string      `json:"toTableId"`
	RelationshipType string      `json:"relationshipType"`
	Direction        string      `json:"direction"`
	From             pointDoc    `json:"from"`
	To               pointDoc    `json:"to"`
	Mid              pointDoc    `json:"mid"`
	Path             string      `json:"path"`
	Color            string      `json:"color"`
	Markers          []markerDoc `json:"markers"`
}

func toPointDoc(p diagram.Point) pointDoc { return pointDoc{X: p.X, Y: p.Y} }

func toConnectorDoc(c erdpad.Connector) connectorDoc {
	doc := connectorDoc{
		RelationshipID:   c.RelationshipID,
		FromTableID:      c.FromTableID,
		ToTableID:        c.ToTableID,
		RelationshipType: string(c.Cardinality),
		Direction:        string(c.Direction),
		From:             toPointDoc(c.From),
		To:               toPointDoc(c.To),
		Mid:              toPointDoc(c.Mid),
		Path:             c.Path(),
		Color:            c.Color,
		Markers:          make([]markerDoc, len(c.Markers)),
	}
	for i, m := range c.Markers {
		doc.Markers[i] = markerDoc{Kind: string(m.Kind), At: toPointDoc(m.At), Color: m.Color}
	}
	return doc
}

func toTableDoc(t erdpad.Table) codec.TableDoc {
	return codec.FromGraph(erdpad.Graph{Tables: []erdpad.Table{t}}).Tables[0]
}

func toRelationshipDoc(r erdpad.Relationship) codec.RelationshipDoc {
	return codec.FromGraph(erdpad.Graph{Relationships: []erdpad.Relationship{r}}).Relationships[0]
}

// ---------------------------------------------------------------------------
// Document
// ---------------------------------------------------------------------------

// handleGetDocument returns the serialized diagram. The ETag is the diagram
// fingerprint.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc, err := s.designer.Document()
	var fp string
	if err == nil {
		fp, err = s.designer.Fingerprint()
	}
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}

	tag := etag(fp)
	w.Header().Set("ETag", tag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && matchesETag(inm, tag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, doc)
}

// handlePutDocument replaces the diagram with the request body, which must
// be a valid document. If-Match guards against overwriting a newer diagram.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read request body"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if im := r.Header.Get("If-Match"); im != "" {
		fp, err := s.designer.Fingerprint()
		if err != nil {
			writeError(w, err)
			return
		}
		if !matchesETag(im, etag(fp)) {
			writeJSON(w, http.StatusPreconditionFailed, errorResponse{Error: errorDetail{
				Status:  http.StatusPreconditionFailed,
				Message: "diagram changed since it was read",
			}})
			return
		}
	}

	if err := s.designer.LoadDiagram(bytes.NewReader(data)); err != nil {
		writeError(w, err)
		return
	}
	doc, err := s.designer.Document()
	if err != nil {
		writeError(w, err)
		return
	}
	if fp, err := s.designer.Fingerprint(); err == nil {
		w.Header().Set("ETag", etag(fp))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, doc)
}

// ---------------------------------------------------------------------------
// Tables
// ---------------------------------------------------------------------------

// handleCreateTable adds a table. Without a body the table keeps the editor
// defaults; with one, the body is applied before the table is committed.
func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)
	var req tableRequest
	if _, err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.designer.AddTable()
	id := draft.ID()
	applyTable(draft, req)
	if err := s.designer.SaveDraft(); err != nil {
		writeError(w, err)
		return
	}
	if req.X != nil {
		s.designer.MoveTable(id, *req.X, *req.Y)
	}

	t, _ := s.designer.Table(id)
	w.Header().Set("Location", "/api/tables/"+id)
	writeJSON(w, http.StatusCreated, toTableDoc(t))
}

// handleUpdateTable edits a table the way the table editor does: open a
// draft, apply the body, save. Relationships are re-inferred.
func (s *Server) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.limitBody(w, r)
	var req tableRequest
	if _, err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := s.designer.EditTable(id)
	if err != nil {
		writeError(w, err)
		return
	}
	applyTable(draft, req)
	if err := s.designer.SaveDraft(); err != nil {
		writeError(w, err)
		return
	}
	if req.X != nil {
		s.designer.MoveTable(id, *req.X, *req.Y)
	}

	t, _ := s.designer.Table(id)
	writeJSON(w, http.StatusOK, toTableDoc(t))
}

// handleDeleteTable removes a table and its relationships.
func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	ok := s.designer.DeleteTable(id)
	s.mu.Unlock()

	if !ok {
		writeError(w, tableNotFound(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMoveTable repositions a table without re-running inference.
func (s *Server) handleMoveTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.limitBody(w, r)
	var req positionRequest
	if _, err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.X == nil || req.Y == nil {
		writeError(w, invalidRequest("x and y are required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.designer.MoveTable(id, *req.X, *req.Y) {
		writeError(w, tableNotFound(id))
		return
	}
	t, _ := s.designer.Table(id)
	writeJSON(w, http.StatusOK, toTableDoc(t))
}

func tableNotFound(id string) *alerr.Error {
	return alerr.New(alerr.ErrTableNotFound, "table not found").WithTable(id)
}

// ---------------------------------------------------------------------------
// Relationships
// ---------------------------------------------------------------------------

// handleSetRelationshipKind annotates a relationship. Omitted fields keep
// their current value.
func (s *Server) handleSetRelationshipKind(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.limitBody(w, r)
	var req kindRequest
	if _, err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.designer.Graph()
	rel := g.Relationship(id)
	if rel == nil {
		writeError(w, alerr.New(alerr.ErrRelationshipNotFound, "relationship not found").With("relationship", id))
		return
	}
	card, dir := rel.Cardinality, rel.Direction
	if req.RelationshipType != "" {
		card = erdpad.Cardinality(req.RelationshipType)
	}
	if req.Direction != "" {
		dir = erdpad.Direction(req.Direction)
	}
	if err := s.designer.SetRelationshipKind(id, card, dir); err != nil {
		writeError(w, err)
		return
	}

	g = s.designer.Graph()
	writeJSON(w, http.StatusOK, toRelationshipDoc(*g.Relationship(id)))
}

// ---------------------------------------------------------------------------
// Drawing
// ---------------------------------------------------------------------------

// handleConnectors returns the drawable form of every relationship whose
// endpoints exist.
func (s *Server) handleConnectors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	conns := s.designer.Connectors()
	s.mu.Unlock()

	docs := make([]connectorDoc, len(conns))
	for i, c := range conns {
		docs[i] = toConnectorDoc(c)
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleSVG renders the diagram as a standalone SVG image.
func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := s.designer.WriteSVG(&buf)
	s.mu.Unlock()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
