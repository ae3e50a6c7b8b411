// Package core holds the domain types and errors shared by every flow component.
package core

import (
	"path"
	"time"
)

// JournalDir is the default directory, relative to the graph root, that holds
// journal entries.
const JournalDir = "journal"

// JournalDateLayout is the date layout used in journal document ids.
const JournalDateLayout = "2006-01-02"

// GraphMetadata is the persisted description of a graph.
type GraphMetadata struct {
	Name    string `toml:"name" json:"name" yaml:"name"`
	Version string `toml:"version" json:"version" yaml:"version"`
}

// JournalID returns the document id of the journal entry for date, placed
// under dir. The date is formatted in its own location.
func JournalID(dir string, date time.Time) string {
	if dir == "" {
		dir = JournalDir
	}
	return path.Join(dir, date.Format(JournalDateLayout)+".md")
}

// EventType represents the type of change observed in a graph.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
)

// Event reports a journal document that was reconciled from disk.
type Event struct {
	Type      EventType `json:"type" yaml:"type"`
	ID        string    `json:"id" yaml:"id"`
	Timestamp int64     `json:"timestamp" yaml:"timestamp"` // Unix timestamp
}

// String formats the event as "TYPE id".
func (e Event) String() string {
	return string(e.Type) + " " + e.ID
}
