package ir

// Version constants for the store schema and the tool.
const (
	// SchemaVersion is the entries schema version recorded in user_version.
	SchemaVersion = 1

	// Version is the telescope tool version.
	Version = "0.1.0"
)
