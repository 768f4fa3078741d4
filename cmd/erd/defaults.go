package main

// File permissions for consistent file/directory creation across the CLI.
const (
	// DirPerm is the permission mode for created directories (rwxr-xr-x).
	DirPerm = 0755

	// FilePerm is the permission mode for created files (rw-r--r--).
	FilePerm = 0644
)

const (
	MainTitle   = "▦ erd"
	MainSummary = "★  Entity-relationship diagrams from foreign keys"
)

// Default file names.
const (
	// DefaultConfigFile is the default configuration filename.
	DefaultConfigFile = "erd.yaml"

	// DefaultDiagramFile is used when neither --file nor the config names one.
	DefaultDiagramFile = "diagram.uml.json"
)

// ExportFormats lists the formats accepted by `erd export`.
var ExportFormats = []string{"json", "yaml"}

// Messages for consistent CLI output.
const (
	MsgCancelled = "Cancelled"
	MsgNoChanges = "No changes"
)
