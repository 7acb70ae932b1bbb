package domain

import "time"

// SignatureFile is one signature definition of a library as stored in the index.
type SignatureFile struct {
	ID               string
	Path             string
	ModTime          time.Time
	Raw              string
	SymptomCount     int
	RequiresTestcase bool
}

// LibraryStats summarizes an indexed library.
type LibraryStats struct {
	TotalSignatures int `json:"total_signatures"`
	RequireTestcase int `json:"require_testcase"`
	InvalidSkipped  int `json:"invalid_skipped"`
}
