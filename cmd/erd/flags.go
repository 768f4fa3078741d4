package main

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/hlop3z/erdpad/internal/alerr"
	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/registry"
	"github.com/hlop3z/erdpad/pkg/erdpad"
)

// pointValue is a pflag.Value for "x,y" canvas positions.
type pointValue struct {
	p   erdpad.Point
	set bool
}

var _ pflag.Value = (*pointValue)(nil)

func (v *pointValue) String() string {
	if !v.set {
		return ""
	}
	return strconv.FormatFloat(v.p.X, 'f', -1, 64) + "," + strconv.FormatFloat(v.p.Y, 'f', -1, 64)
}

func (v *pointValue) Set(s string) error {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return alerr.Newf(alerr.ErrDocumentInvalid, "position %q must look like x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return alerr.Wrapf(alerr.ErrDocumentInvalid, err, "bad x in position %q", s)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return alerr.Wrapf(alerr.ErrDocumentInvalid, err, "bad y in position %q", s)
	}
	p := erdpad.Point{X: x, Y: y}
	if !p.Finite() {
		return alerr.Newf(alerr.ErrDocumentInvalid, "position %q must be finite", s)
	}
	v.p, v.set = p, true
	return nil
}

func (v *pointValue) Type() string { return "x,y" }

// columnSpec is a column written on the command line as
// "Name[:type[:flag...]]" where flags are pk, fk=Table.Column, auto and guid.
//
//	Id:int:pk:auto
//	CustomerId:int:fk=Customers.Id
//	Email
type columnSpec struct {
	Name  string
	Type  diagram.DataType
	PK    bool
	HasFK bool
	FKRef string
	Auto  bool
	Guid  bool
}

func parseColumnSpec(s string) (columnSpec, error) {
	parts := strings.Split(s, ":")
	spec := columnSpec{Name: strings.TrimSpace(parts[0]), Type: diagram.TypeVarchar}
	if spec.Name == "" {
		return spec, alerr.Newf(alerr.ErrDocumentInvalid, "column %q has no name", s).
			WithHelp("write columns as Name:type[:pk][:fk=Table.Column][:auto][:guid]")
	}
	if len(parts) > 1 && parts[1] != "" {
		t, err := diagram.ParseDataType(strings.TrimSpace(parts[1]))
		if err != nil {
			return spec, err
		}
		spec.Type = t
	}
	for _, flag := range parts[min(2, len(parts)):] {
		flag = strings.TrimSpace(flag)
		switch {
		case flag == "pk":
			spec.PK = true
		case flag == "auto":
			spec.Auto = true
		case flag == "guid":
			spec.Guid = true
		case strings.HasPrefix(flag, "fk="):
			ref := strings.TrimPrefix(flag, "fk=")
			if err := registry.ValidateReference(ref); err != nil {
				return spec, err
			}
			spec.HasFK, spec.FKRef = true, ref
		default:
			return spec, alerr.Newf(alerr.ErrDocumentInvalid, "unknown column flag %q", flag).
				WithHelp("flags are pk, fk=Table.Column, auto and guid")
		}
	}
	return spec, nil
}

// apply copies the spec onto c, keeping the id.
func (spec columnSpec) apply(c *diagram.Column) {
	c.Name = spec.Name
	c.DataType = spec.Type
	c.IsPrimaryKey = spec.PK
	c.IsForeignKey = spec.HasFK
	c.ForeignKeyReference = spec.FKRef
	c.IsAutoIncrement = spec.Auto
	c.IsGuidGenerated = spec.Guid
}
