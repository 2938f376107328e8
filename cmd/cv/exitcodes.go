package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no workspace, missing API key)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
	ExitUpstream    = 4 // Extraction service unreachable or rejected the request
)
