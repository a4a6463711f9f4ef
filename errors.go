package settings

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNameRequired indicates a Config without an instance name.
var ErrNameRequired = errors.New("settings instance name is required")

// ErrDuplicateName indicates two stores registered under one name.
var ErrDuplicateName = errors.New("settings instance name already registered")

// ValidationError carries the failure messages produced by a Config
// validator. When Save returns it, no write was attempted and the cached
// value is unchanged.
type ValidationError struct {
	Name     string
	Failures []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings %q failed validation: %s",
		e.Name, strings.Join(e.Failures, "; "))
}
