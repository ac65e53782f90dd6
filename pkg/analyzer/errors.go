package analyzer

import "fmt"

// ExtractionError means the match page could not be turned into a MatchRecord.
// No partial record is ever returned alongside it.
type ExtractionError struct {
	Source string
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed for %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed for %s: %s", e.Source, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// ResultParseError means an actual result did not match "{H|D|A} <int>-<int>"
type ResultParseError struct {
	Input  string
	Reason string
}

func (e *ResultParseError) Error() string {
	return fmt.Sprintf("cannot parse result %q: %s (expected e.g. \"H 2-1\", \"D 1-1\", \"A 0-3\")", e.Input, e.Reason)
}

// StoreIOError means league statistics could not be read or persisted.
// Predictions made alongside it are still valid, learning is not durable.
type StoreIOError struct {
	Op  string
	Err error
}

func (e *StoreIOError) Error() string {
	return fmt.Sprintf("league store %s failed: %v", e.Op, e.Err)
}

func (e *StoreIOError) Unwrap() error {
	return e.Err
}
