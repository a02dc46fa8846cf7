package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (runtime failure)
	ExitUsageError  = 2 // Invalid arguments (no paper IDs)
	ExitConfigError = 3 // Configuration error (unreadable settings file)
)
