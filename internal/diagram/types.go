package diagram

import (
	"fmt"
	"math"
	"slices"

	"github.com/hlop3z/erdpad/internal/alerr"
)

// Point is a position in canvas-local coordinates.
type Point struct {
	X float64
	Y float64
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Finite reports whether both coordinates are neither NaN nor infinite.
// Only finite points can be written to a document.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// DataType is a column type drawn from a fixed SQL vocabulary.
type DataType string

// SQL type vocabulary offered by the table editor.
const (
	TypeInt              DataType = "int"
	TypeBigInt           DataType = "bigint"
	TypeSmallInt         DataType = "smallint"
	TypeTinyInt          DataType = "tinyint"
	TypeDecimal          DataType = "decimal(18,2)"
	TypeFloat            DataType = "float"
	TypeReal             DataType = "real"
	TypeBit              DataType = "bit"
	TypeBoolean          DataType = "boolean"
	TypeChar             DataType = "char(10)"
	TypeVarchar          DataType = "varchar(50)"
	TypeVarcharLong      DataType = "varchar(255)"
	TypeNVarchar         DataType = "nvarchar(50)"
	TypeNVarcharMax      DataType = "nvarchar(max)"
	TypeText             DataType = "text"
	TypeDate             DataType = "date"
	TypeTime             DataType = "time"
	TypeDateTime         DataType = "datetime"
	TypeTimestamp        DataType = "timestamp"
	TypeUniqueIdentifier DataType = "uniqueidentifier"
	TypeUUID             DataType = "uuid"
	TypeJSON             DataType = "json"
	TypeBlob             DataType = "blob"
	TypeVarBinaryMax     DataType = "varbinary(max)"
)

// Vocabulary lists every DataType in editor order.
var Vocabulary = []DataType{
	TypeInt, TypeBigInt, TypeSmallInt, TypeTinyInt, TypeDecimal, TypeFloat, TypeReal,
	TypeBit, TypeBoolean, TypeChar, TypeVarchar, TypeVarcharLong, TypeNVarchar,
	TypeNVarcharMax, TypeText, TypeDate, TypeTime, TypeDateTime, TypeTimestamp,
	TypeUniqueIdentifier, TypeUUID, TypeJSON, TypeBlob, TypeVarBinaryMax,
}

// Valid reports whether d belongs to the vocabulary.
// Documents written by free-text editors may carry other values; they still load.
func (d DataType) Valid() bool {
	return slices.Contains(Vocabulary, d)
}

// ParseDataType validates s against the vocabulary.
func ParseDataType(s string) (DataType, error) {
	d := DataType(s)
	if !d.Valid() {
		names := make([]string, len(Vocabulary))
		for i, v := range Vocabulary {
			names[i] = string(v)
		}
		err := alerr.New(alerr.ErrInvalidType, fmt.Sprintf("unknown column type %q", s))
		if hint := alerr.DidYouMean(s, names); hint != "" {
			err.WithHelp(hint)
		}
		return "", err
	}
	return d, nil
}

// Cardinality describes a relationship's multiplicity.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToOne  Cardinality = "many-to-one"
	ManyToMany Cardinality = "many-to-many"
)

// Cardinalities lists every Cardinality value.
var Cardinalities = []Cardinality{OneToOne, OneToMany, ManyToOne, ManyToMany}

// ParseCardinality validates s.
func ParseCardinality(s string) (Cardinality, error) {
	c := Cardinality(s)
	if !slices.Contains(Cardinalities, c) {
		return "", alerr.New(alerr.ErrInvalidCardinality, fmt.Sprintf("unknown relationship type %q", s)).
			WithHelp("use one of: one-to-one, one-to-many, many-to-one, many-to-many")
	}
	return c, nil
}

// Direction says whether a relationship is navigable from one or both ends.
type Direction string

const (
	Unidirectional Direction = "unidirectional"
	Bidirectional  Direction = "bidirectional"
)

// ParseDirection validates s.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Unidirectional, Bidirectional:
		return d, nil
	}
	return "", alerr.New(alerr.ErrInvalidDirection, fmt.Sprintf("unknown direction %q", s)).
		WithHelp("use unidirectional or bidirectional")
}
