package migrate

import (
	"fmt"
	"log/slog"

	"github.com/confdock/settings/section"
)

// Tag is the stored schema version field. Versioned settings types embed
// it (or declare their own schemaVersion field with the same wire names)
// so the version travels inside the serialized document rather than as a
// separate artifact.
type Tag struct {
	SchemaVersion int `json:"schemaVersion" yaml:"schemaVersion" xml:"schemaVersion"`
}

// SetStoredVersion records the version to be serialized.
func (t *Tag) SetStoredVersion(v int) {
	t.SchemaVersion = v
}

// StoredVersion returns the version read from the document.
func (t Tag) StoredVersion() int {
	return t.SchemaVersion
}

// Stamper is implemented by types whose stored version tag the engine
// can stamp before a save. Tag provides it.
type Stamper interface {
	SetStoredVersion(v int)
}

// Migrator decodes a raw sub-document into the schema version the caller
// expects, applying chain steps when the stored version is older.
type Migrator struct {
	chain  *Chain
	codec  section.Codec
	logger *slog.Logger
}

// NewMigrator creates a migrator. chain may be nil (no migration is ever
// attempted); a nil logger falls back to slog.Default.
func NewMigrator(chain *Chain, codec section.Codec, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{chain: chain, codec: codec, logger: logger}
}

// Load decodes sub into the version produced by target.
//
// The stored version is read through a lightweight version-only pre-pass
// rather than a full parse as the target type, so the target's own field
// defaulting can never clobber the stored tag before it is inspected.
// A document already at the target version decodes directly, with zero
// transform calls. An unrecognized stored version degrades to a
// best-effort decode into the target type with a logged warning. A known
// older version decodes as its own registered type and walks the chain;
// a gap in the chain is fatal.
func (m *Migrator) Load(sub []byte, target Factory) (Versioned, error) {
	t := target()
	want := t.SettingsVersion()

	if m.chain == nil || m.chain.Len() == 0 {
		return t, m.codec.Unmarshal(sub, t)
	}

	stored, tagged := m.storedVersion(sub)
	if !tagged || stored == want {
		return t, m.codec.Unmarshal(sub, t)
	}

	factory, known := m.chain.factoryFor(stored)
	if !known {
		m.logger.Warn("unknown stored settings version, decoding best-effort",
			"stored", stored, "target", want)
		return t, m.codec.Unmarshal(sub, t)
	}

	cur := factory()
	if err := m.codec.Unmarshal(sub, cur); err != nil {
		return nil, fmt.Errorf("decode stored version %d: %w", stored, err)
	}

	for cur.SettingsVersion() != want {
		from := cur.SettingsVersion()
		step, ok := m.chain.stepFrom(from)
		if !ok {
			return nil, &MissingLinkError{FromVersion: from, TargetVersion: want}
		}
		next, err := step.transform(cur)
		if err != nil {
			return nil, fmt.Errorf("migration step %d -> %d: %w", step.from, step.to, err)
		}
		if next == nil || next.SettingsVersion() <= from {
			return nil, fmt.Errorf("migration step %d -> %d returned version %d",
				step.from, step.to, versionOf(next))
		}
		cur = next
	}
	m.logger.Info("settings migrated", "from", stored, "to", want)
	return cur, nil
}

// storedVersion is the version-only pre-pass: decode nothing but the tag.
func (m *Migrator) storedVersion(sub []byte) (int, bool) {
	var probe Tag
	if err := m.codec.Unmarshal(sub, &probe); err != nil {
		return 0, false
	}
	if probe.SchemaVersion == 0 {
		return 0, false
	}
	return probe.SchemaVersion, true
}

func versionOf(v Versioned) int {
	if v == nil {
		return 0
	}
	return v.SettingsVersion()
}
