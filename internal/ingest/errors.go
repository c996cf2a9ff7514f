package ingest

import "fmt"

// UnreadableSourceError indicates the source could not be parsed as a
// spreadsheet at all. It is the only fatal ingest failure; every softer data
// problem degrades to warnings downstream.
type UnreadableSourceError struct {
	Name string
	Err  error
}

func (e *UnreadableSourceError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unreadable source %s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("unreadable source: %v", e.Err)
}

func (e *UnreadableSourceError) Unwrap() error { return e.Err }
