package drift

import (
	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
)

// Result represents the complete comparison of two diagram versions.
type Result struct {
	// Changed is true if any differences were found
	Changed bool

	// OldHash is the merkle root of the old diagram
	OldHash string

	// NewHash is the merkle root of the new diagram
	NewHash string

	// Comparison contains detailed comparison results
	Comparison *HashComparison

	// Old and New are the compared diagrams, kept for naming ids in output
	Old diagram.Graph
	New diagram.Graph
}

// Diff compares two diagrams. The merkle roots are compared first; the
// per-table drill-down only runs when they differ.
func Diff(old, new diagram.Graph) (*Result, error) {
	oldHash, err := ComputeHash(old)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to compute old diagram hash")
	}
	newHash, err := ComputeHash(new)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to compute new diagram hash")
	}

	comparison := CompareHashes(oldHash, newHash)
	return &Result{
		Changed:    !comparison.Match,
		OldHash:    oldHash.Root,
		NewHash:    newHash.Root,
		Comparison: comparison,
		Old:        old,
		New:        new,
	}, nil
}

// Same reports whether two diagrams have identical fingerprints.
func Same(a, b diagram.Graph) (bool, error) {
	ha, err := Fingerprint(a)
	if err != nil {
		return false, err
	}
	hb, err := Fingerprint(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

// Summary provides counts for a comparison result.
type Summary struct {
	Tables         int // Tables in the new diagram
	AddedTables    int
	RemovedTables  int
	ModifiedTables int
	MovedTables    int
	AddedLinks     int
	RemovedLinks   int
	ModifiedLinks  int
}

// Summarize creates a count summary from a comparison result.
func Summarize(result *Result) *Summary {
	if result == nil || result.Comparison == nil {
		return &Summary{}
	}
	comp := result.Comparison

	summary := &Summary{
		Tables:        len(result.New.Tables),
		AddedTables:   len(comp.AddedTables),
		RemovedTables: len(comp.RemovedTables),
		AddedLinks:    len(comp.AddedLinks),
		RemovedLinks:  len(comp.RemovedLinks),
		ModifiedLinks: len(comp.ModifiedLinks),
	}
	for _, d := range comp.TableDiffs {
		if d.Moved {
			summary.MovedTables++
		}
		if d.Renamed() || d.Reordered || len(d.AddedColumns)+len(d.RemovedColumns)+len(d.ModifiedColumns) > 0 {
			summary.ModifiedTables++
		}
	}
	return summary
}
