package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
)

// FileSuffix is the extension of saved diagram files.
const FileSuffix = ".uml.json"

// Serialize encodes g as two-space indented JSON in stored order.
func Serialize(g diagram.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to encode diagram")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Deserialize decodes a host document. Empty input yields an empty graph.
// Malformed input is logged at warn level and also yields an empty graph;
// it never returns partial state.
func Deserialize(data []byte, logger *slog.Logger) diagram.Graph {
	if len(bytes.TrimSpace(data)) == 0 {
		return diagram.Empty()
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("codec: ignoring unreadable diagram document", "error", err, "bytes", len(data))
		return diagram.Empty()
	}
	return doc.Graph()
}

// Import decodes and validates a document. Unknown fields, duplicate ids,
// tables without columns, and unknown annotation values are rejected with
// alerr.ErrDocumentInvalid. On error the returned graph is empty.
func Import(data []byte) (diagram.Graph, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return diagram.Empty(), alerr.Wrap(alerr.ErrDocumentInvalid, err, "diagram file is not a valid document")
	}
	if _, err := dec.Token(); err != io.EOF {
		return diagram.Empty(), alerr.New(alerr.ErrDocumentInvalid, "diagram file has trailing content")
	}
	if err := Validate(doc); err != nil {
		return diagram.Empty(), err
	}
	return doc.Graph(), nil
}

// ImportReader reads r fully and imports it.
func ImportReader(r io.Reader) (diagram.Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return diagram.Empty(), alerr.Wrap(alerr.ErrDocumentRead, err, "failed to read diagram")
	}
	return Import(data)
}

// Validate checks the structural rules enforced by Import.
func Validate(doc Document) error {
	tableIDs := make(map[string]bool, len(doc.Tables))
	for i, t := range doc.Tables {
		if t.ID == "" {
			return invalid(fmt.Sprintf("table #%d has no id", i+1))
		}
		if tableIDs[t.ID] {
			return invalid("duplicate table id").WithTable(t.ID)
		}
		tableIDs[t.ID] = true

		if len(t.Columns) == 0 {
			return invalid("table has no columns").WithTable(t.ID).
				WithHelp("every table needs at least one column")
		}
		colIDs := make(map[string]bool, len(t.Columns))
		for j, c := range t.Columns {
			if c.ID == "" {
				return invalid(fmt.Sprintf("column #%d has no id", j+1)).WithTable(t.ID)
			}
			if colIDs[c.ID] {
				return invalid("duplicate column id").WithTable(t.ID).WithColumn(c.ID)
			}
			colIDs[c.ID] = true
		}
	}

	relIDs := make(map[string]bool, len(doc.Relationships))
	for _, r := range doc.Relationships {
		if r.ID == "" {
			return invalid("relationship has no id")
		}
		if relIDs[r.ID] {
			return invalid("duplicate relationship id").With("relationship", r.ID)
		}
		relIDs[r.ID] = true

		if r.RelationshipType != "" && !slices.Contains(diagram.Cardinalities, diagram.Cardinality(r.RelationshipType)) {
			return invalid("unknown relationship type").
				With("relationship", r.ID).
				With("relationshipType", r.RelationshipType)
		}
		if r.Direction != "" {
			if _, err := diagram.ParseDirection(r.Direction); err != nil {
				return invalid("unknown direction").
					With("relationship", r.ID).
					With("direction", r.Direction)
			}
		}
	}
	return nil
}

func invalid(msg string) *alerr.Error {
	return alerr.New(alerr.ErrDocumentInvalid, msg)
}

// ExportYAML renders g as a YAML document with the same field names as JSON.
func ExportYAML(g diagram.Graph) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(FromGraph(g)); err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to encode diagram as YAML")
	}
	if err := enc.Close(); err != nil {
		return nil, alerr.Wrap(alerr.ErrDocumentWrite, err, "failed to encode diagram as YAML")
	}
	return buf.Bytes(), nil
}
