// Package flow is the composition root for flow, a file-backed note graph.
//
// A graph is a directory with a replicated document store in .flow/ and a
// journal of plain Markdown files, one per day. The store is the source of
// truth for merging: edits made to journal files by hand or by another editor
// are diffed into it before new content is appended, and every save writes the
// store snapshot and the changed journal files back to disk.
//
// Layout:
//
//	<root>/.flow/graph.toml      name and version
//	<root>/.flow/graph.loro      store snapshot
//	<root>/.flow/graph.lock      advisory single-writer lock
//	<root>/journal/YYYY-MM-DD.md
//
// Usage:
//
//	s, err := flow.Init("./notes", flow.WithLogger(logger))
//	if err != nil { ... }
//	if err := s.Add("bought milk"); err != nil { ... }
//	if err := s.Save(); err != nil { ... }
//
// AddToJournal wraps the load, add and save sequence under the graph lock,
// which is what concurrent processes should use.
package flow
