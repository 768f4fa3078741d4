package erdpad

import "github.com/hlop3z/erdpad/internal/alerr"

// Code is a stable error code carried by every error the Designer returns.
// Use ErrorCode or IsCode to inspect errors.
type Code = alerr.Code

// Error codes a host is expected to handle.
const (
	// CodeDocumentInvalid is returned by LoadDiagram for malformed files.
	// The previous diagram is kept.
	CodeDocumentInvalid = alerr.ErrDocumentInvalid

	// CodeDocumentRead and CodeDocumentWrite report I/O failures.
	CodeDocumentRead  = alerr.ErrDocumentRead
	CodeDocumentWrite = alerr.ErrDocumentWrite

	// CodeTableNotFound and CodeRelationshipNotFound report unknown ids.
	CodeTableNotFound        = alerr.ErrTableNotFound
	CodeRelationshipNotFound = alerr.ErrRelationshipNotFound

	// CodeInvalidCardinality and CodeInvalidDirection reject unknown
	// relationship kinds.
	CodeInvalidCardinality = alerr.ErrInvalidCardinality
	CodeInvalidDirection   = alerr.ErrInvalidDirection

	// CodeNoDraft is returned by SaveDraft when no table is open for editing.
	CodeNoDraft = alerr.ErrNoDraft

	// CodeScript and CodeScriptTimeout are returned by RunScript.
	CodeScript        = alerr.ErrJSExecution
	CodeScriptTimeout = alerr.ErrJSTimeout
)

// ErrorCode returns the code of err, or "" for errors without one.
func ErrorCode(err error) Code {
	return alerr.GetErrorCode(err)
}

// IsCode reports whether err or any error it wraps carries code.
func IsCode(err error, code Code) bool {
	return alerr.Is(err, code)
}
