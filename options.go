package settings

import (
	"log/slog"
	"time"

	"github.com/confdock/settings/backing"
	"github.com/confdock/settings/location"
	"github.com/confdock/settings/migrate"
	"github.com/confdock/settings/section"
)

// DefaultChangeThrottle is the debounce window for external file change
// events when Config.ChangeThrottle is zero. Editors that write a file
// several times per save collapse into one reload+notify cycle.
const DefaultChangeThrottle = 300 * time.Millisecond

// Config describes one settings instance. Build it once; it is treated
// as immutable after New. Every field except Name has a usable default.
type Config[T any] struct {
	// Name identifies the instance, e.g. in a Registry and in log output.
	// Required.
	Name string

	// Candidates are the locations considered for the settings file, in
	// registration order. Empty means a file named DefaultFileName in the
	// executable directory.
	Candidates []location.Candidate

	// DefaultFileName is used when Candidates is empty. Empty means Name.
	DefaultFileName string

	// Section is the nesting point inside the document, parsed with ":"
	// or "__" separators. Empty means the document root.
	Section string

	// Codec is the file format. Nil means JSON.
	Codec section.Codec

	// Backing is the filesystem the instance reads and writes. Nil means
	// the real filesystem.
	Backing backing.Store

	// BackupMaxCount is how many rotating backups to keep per save.
	// Zero disables backups.
	BackupMaxCount int

	// MaxAttempts bounds write retries; see atomicwrite.Options.
	MaxAttempts int

	// RetryDelay maps a failed-attempt number to its backoff delay; see
	// atomicwrite.Options.
	RetryDelay func(attempt int) time.Duration

	// ChangeThrottle is the debounce window for external change events.
	// Zero means DefaultChangeThrottle.
	ChangeThrottle time.Duration

	// DisableWatch turns off filesystem watching even where available.
	DisableWatch bool

	// Chain migrates documents written by older schema versions. Only
	// consulted when *T implements migrate.Versioned.
	Chain *migrate.Chain

	// Validate inspects a value before it is saved. A non-empty result is
	// the list of failure messages; the save is aborted and the cache
	// left untouched.
	Validate func(v T) []string

	// Clone deep-copies a value when handing it to or from a caller. Nil
	// means a codec round-trip copy.
	Clone func(v T) T

	// Default produces the fresh instance returned when the file or
	// section does not exist yet. Nil means the zero value of T.
	Default func() T

	// Logger receives engine diagnostics. Nil means slog.Default.
	Logger *slog.Logger
}
