// Package drift fingerprints diagrams with merkle trees and classifies the
// differences between two versions of a diagram.
//
// Fingerprints are order-sensitive: tables, columns and relationships are
// hashed in stored order, because order is visible in the saved document.
package drift

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
)

// DiagramHash represents the merkle root hash of a diagram.
type DiagramHash struct {
	Root          string                // Root hash of the entire diagram
	Tables        map[string]*TableHash // Table id -> table hashes for drill-down
	TableOrder    []string              // Table ids in stored order
	Relationships map[string]string     // Link key -> annotation hash
}

// TableHash represents the hashes of a single table.
type TableHash struct {
	ID       string
	Name     string
	Hash     string            // Hash of the entire table, position included
	Position string            // Hash of the position alone
	Columns  map[string]string // Column id -> hash
	Order    []string          // Column ids in stored order
}

// leaf implements merkletree.Content for table and relationship hashes.
type leaf struct {
	key  string
	hash string
}

func (l leaf) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(l.key + "=" + l.hash))
	return h[:], nil
}

func (l leaf) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(leaf)
	if !ok {
		return false, nil
	}
	return l.key == o.key && l.hash == o.hash, nil
}

// LinkKey identifies a relationship by its endpoints rather than its id,
// which is regenerated on every commit of the owning table.
func LinkKey(r diagram.Relationship) string {
	return fmt.Sprintf("%s.%s->%s.%s", r.FromTableID, r.FromColumnID, r.ToTableID, r.ToColumnID)
}

// ComputeHash computes the merkle tree hash for a diagram.
// The hash is hierarchical: diagram -> tables/relationships -> columns.
func ComputeHash(g diagram.Graph) (*DiagramHash, error) {
	result := &DiagramHash{
		Tables:        make(map[string]*TableHash, len(g.Tables)),
		Relationships: make(map[string]string, len(g.Relationships)),
	}

	contents := make([]merkletree.Content, 0, len(g.Tables)+len(g.Relationships))
	for i := range g.Tables {
		th := computeTableHash(&g.Tables[i])
		result.Tables[th.ID] = th
		result.TableOrder = append(result.TableOrder, th.ID)
		contents = append(contents, leaf{key: "table:" + th.ID, hash: th.Hash})
	}
	for _, r := range g.Relationships {
		key := LinkKey(r)
		h := hashFields(string(r.Cardinality), string(r.Direction))
		result.Relationships[key] = h
		contents = append(contents, leaf{key: "rel:" + r.ID + ":" + key, hash: h})
	}

	if len(contents) == 0 {
		result.Root = emptyHash()
		return result, nil
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}
	result.Root = hex.EncodeToString(tree.MerkleRoot())
	return result, nil
}

// Fingerprint returns only the merkle root of g.
func Fingerprint(g diagram.Graph) (string, error) {
	h, err := ComputeHash(g)
	if err != nil {
		return "", err
	}
	return h.Root, nil
}

// computeTableHash computes the hash for a single table.
func computeTableHash(t *diagram.Table) *TableHash {
	result := &TableHash{
		ID:       t.ID,
		Name:     t.Name,
		Position: hashFields(strconv.FormatFloat(t.Position.X, 'g', -1, 64), strconv.FormatFloat(t.Position.Y, 'g', -1, 64)),
		Columns:  make(map[string]string, len(t.Columns)),
	}

	fields := make([]string, 0, 3+2*len(t.Columns))
	fields = append(fields, t.ID, t.Name, result.Position)
	for _, c := range t.Columns {
		h := computeColumnHash(c)
		result.Columns[c.ID] = h
		result.Order = append(result.Order, c.ID)
		fields = append(fields, c.ID, h)
	}

	result.Hash = hashFields(fields...)
	return result
}

// computeColumnHash computes a deterministic hash for a column.
func computeColumnHash(c diagram.Column) string {
	return hashFields(c.Name, string(c.DataType),
		strconv.FormatBool(c.IsPrimaryKey), strconv.FormatBool(c.IsForeignKey),
		strconv.FormatBool(c.IsAutoIncrement), strconv.FormatBool(c.IsGuidGenerated),
		c.ForeignKeyReference)
}

// hashFields hashes fields with each one length-prefixed, so no choice of
// field contents can make two different field lists encode alike.
func hashFields(fields ...string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(strconv.Itoa(len(f)))
		b.WriteByte(':')
		b.WriteString(f)
		b.WriteByte(';')
	}
	return hashString(b.String())
}

// hashString computes SHA256 hash of a string and returns hex encoding.
func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for empty diagrams.
func emptyHash() string {
	return hashString("empty_diagram")
}

// CompareHashes compares two diagram hashes and returns differences.
func CompareHashes(old, new *DiagramHash) *HashComparison {
	result := &HashComparison{
		Match:         old.Root == new.Root,
		OldRoot:       old.Root,
		NewRoot:       new.Root,
		TableDiffs:    make(map[string]*TableDiff),
		AddedTables:   []string{},
		RemovedTables: []string{},
	}

	if result.Match {
		return result
	}

	for id := range old.Tables {
		if _, ok := new.Tables[id]; !ok {
			result.RemovedTables = append(result.RemovedTables, id)
		}
	}
	sort.Strings(result.RemovedTables)

	for id := range new.Tables {
		if _, ok := old.Tables[id]; !ok {
			result.AddedTables = append(result.AddedTables, id)
		}
	}
	sort.Strings(result.AddedTables)

	for id, ot := range old.Tables {
		nt, ok := new.Tables[id]
		if !ok || ot.Hash == nt.Hash {
			continue
		}
		result.TableDiffs[id] = compareTableHashes(ot, nt)
	}

	for key, oh := range old.Relationships {
		nh, ok := new.Relationships[key]
		switch {
		case !ok:
			result.RemovedLinks = append(result.RemovedLinks, key)
		case oh != nh:
			result.ModifiedLinks = append(result.ModifiedLinks, key)
		}
	}
	for key := range new.Relationships {
		if _, ok := old.Relationships[key]; !ok {
			result.AddedLinks = append(result.AddedLinks, key)
		}
	}
	sort.Strings(result.RemovedLinks)
	sort.Strings(result.ModifiedLinks)
	sort.Strings(result.AddedLinks)

	result.Reordered = !sameOrder(old.TableOrder, new.TableOrder)
	return result
}

// HashComparison represents the result of comparing two diagram hashes.
type HashComparison struct {
	Match         bool                  // True if diagrams are identical
	OldRoot       string                // Old diagram root hash
	NewRoot       string                // New diagram root hash
	TableDiffs    map[string]*TableDiff // Tables with differences, by id
	AddedTables   []string              // Table ids only in new
	RemovedTables []string              // Table ids only in old
	AddedLinks    []string              // Relationship link keys only in new
	RemovedLinks  []string              // Relationship link keys only in old
	ModifiedLinks []string              // Link keys whose annotations changed
	Reordered     bool                  // Shared tables appear in a different order
}

// TableDiff represents differences within a table.
type TableDiff struct {
	ID              string
	OldName         string
	NewName         string
	Moved           bool
	AddedColumns    []string // Column ids only in new
	RemovedColumns  []string // Column ids only in old
	ModifiedColumns []string // Column ids with different definitions
	Reordered       bool     // Shared columns appear in a different order
}

// Renamed reports whether the table name changed.
func (d *TableDiff) Renamed() bool { return d.OldName != d.NewName }

// HasDifferences returns true if the table has any differences.
func (d *TableDiff) HasDifferences() bool {
	return d.Renamed() ||
		d.Moved ||
		d.Reordered ||
		len(d.AddedColumns) > 0 ||
		len(d.RemovedColumns) > 0 ||
		len(d.ModifiedColumns) > 0
}

// compareTableHashes compares two table hashes and returns differences.
func compareTableHashes(old, new *TableHash) *TableDiff {
	diff := &TableDiff{
		ID:      old.ID,
		OldName: old.Name,
		NewName: new.Name,
		Moved:   old.Position != new.Position,
	}

	for id, h := range old.Columns {
		nh, ok := new.Columns[id]
		if !ok {
			diff.RemovedColumns = append(diff.RemovedColumns, id)
		} else if h != nh {
			diff.ModifiedColumns = append(diff.ModifiedColumns, id)
		}
	}
	for id := range new.Columns {
		if _, ok := old.Columns[id]; !ok {
			diff.AddedColumns = append(diff.AddedColumns, id)
		}
	}

	sort.Strings(diff.AddedColumns)
	sort.Strings(diff.RemovedColumns)
	sort.Strings(diff.ModifiedColumns)

	diff.Reordered = !sameOrder(old.Order, new.Order)
	return diff
}

// sameOrder reports whether the ids present in both lists appear in the same
// relative order.
func sameOrder(a, b []string) bool {
	inB := make(map[string]bool, len(b))
	for _, id := range b {
		inB[id] = true
	}
	inA := make(map[string]bool, len(a))
	for _, id := range a {
		inA[id] = true
	}

	var sharedA, sharedB []string
	for _, id := range a {
		if inB[id] {
			sharedA = append(sharedA, id)
		}
	}
	for _, id := range b {
		if inA[id] {
			sharedB = append(sharedB, id)
		}
	}
	for i := range sharedA {
		if sharedA[i] != sharedB[i] {
			return false
		}
	}
	return true
}
