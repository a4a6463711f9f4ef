// Package migrate walks settings documents written by older schema
// versions up to the version the caller expects. Steps are registered as
// explicit (source, target, transform) triples keyed by version number;
// there is no reflection-driven dispatch, so the chain works under
// ahead-of-time compilation and misconfiguration is caught at
// registration time rather than on first load.
package migrate

import (
	"errors"
	"fmt"
)

var (
	// ErrDowngrade indicates a step whose target version is not strictly
	// greater than its source version. Rejected at registration time so a
	// downgrade can never be attempted at load time.
	ErrDowngrade = errors.New("migration step target version must exceed source version")

	// ErrDuplicateStep indicates two steps registered for the same source
	// version.
	ErrDuplicateStep = errors.New("migration step already registered for source version")
)

// Versioned is implemented by settings types that declare a schema
// version. The method returns the type's declared version, a constant per
// type; the version actually stored on disk travels in the serialized
// document (see Tag).
type Versioned interface {
	SettingsVersion() int
}

// Factory produces a fresh zero value of one versioned settings type,
// ready for decoding.
type Factory func() Versioned

// Step is one registered transformation between adjacent schema versions.
type Step struct {
	From      Factory
	To        Factory
	Transform func(Versioned) (Versioned, error)
}

type registeredStep struct {
	from, to  int
	transform func(Versioned) (Versioned, error)
}

// Chain is an ordered set of registered steps plus the union of every
// versioned type appearing in them. Build it once at configuration time;
// it is not safe to register steps concurrently with loads.
type Chain struct {
	byFrom    map[int]registeredStep
	factories map[int]Factory
}

// NewChain returns an empty chain.
func NewChain() *Chain {
	return &Chain{
		byFrom:    make(map[int]registeredStep),
		factories: make(map[int]Factory),
	}
}

// Register adds a step. Downgrades and duplicate source versions are
// configuration errors, surfaced immediately.
func (c *Chain) Register(step Step) error {
	if step.From == nil || step.To == nil || step.Transform == nil {
		return errors.New("migration step requires From, To, and Transform")
	}
	from := step.From().SettingsVersion()
	to := step.To().SettingsVersion()
	if to <= from {
		return fmt.Errorf("%w: %d -> %d", ErrDowngrade, from, to)
	}
	if _, dup := c.byFrom[from]; dup {
		return fmt.Errorf("%w: %d", ErrDuplicateStep, from)
	}
	c.byFrom[from] = registeredStep{from: from, to: to, transform: step.Transform}
	c.factories[from] = step.From
	c.factories[to] = step.To
	return nil
}

// MustRegister is Register for compile-time-known chains; it panics on a
// configuration error.
func (c *Chain) MustRegister(step Step) *Chain {
	if err := c.Register(step); err != nil {
		panic("migrate: " + err.Error())
	}
	return c
}

// Len reports how many steps are registered.
func (c *Chain) Len() int {
	return len(c.byFrom)
}

func (c *Chain) stepFrom(version int) (registeredStep, bool) {
	s, ok := c.byFrom[version]
	return s, ok
}

func (c *Chain) factoryFor(version int) (Factory, bool) {
	f, ok := c.factories[version]
	return f, ok
}

// MissingLinkError names the gap when no registered step leads from a
// version that appeared during migration toward the target. This is a
// fatal configuration defect detected at load time.
type MissingLinkError struct {
	FromVersion   int
	TargetVersion int
}

func (e *MissingLinkError) Error() string {
	return fmt.Sprintf("no migration step registered from version %d toward version %d",
		e.FromVersion, e.TargetVersion)
}
