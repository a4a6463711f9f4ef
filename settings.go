// Package settings is a persistence engine for structured application
// settings. A caller reads a typed settings value, mutates a private
// copy, and durably saves it back to a file; the engine keeps the result
// consistent under concurrent access, external edits, and schema
// evolution across versions.
//
// A Store owns one settings instance: one resolved file path, one format
// codec, one section path inside the shared document, an optional
// validator, and an optional migration chain. Several stores may share a
// file as long as their section paths are disjoint; merges preserve
// sibling sections, so unrelated settings types never clobber each other.
//
// Saves are atomic (temp file plus rename), retried with backoff, and may
// rotate timestamped backups. External edits to the file are picked up
// through a debounced filesystem watch and fanned out to registered
// listeners; on stores without watch support (in-memory, some network
// filesystems) external edits only surface on the next forced reload,
// while save-driven notification keeps working.
package settings
