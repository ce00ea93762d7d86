// Package validation checks job payloads against JSON schemas before a
// worker executes them.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	apperrors "wecelebrate-notifier/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validator holds compiled schemas keyed by name.
type Validator struct {
	mu      sync.RWMutex
	schemas map[string]*gojsonschema.Schema
}

func NewValidator() *Validator {
	return &Validator{schemas: make(map[string]*gojsonschema.Schema)}
}

// Register compiles schemaJSON under name.
func (v *Validator) Register(name, schemaJSON string) error {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.schemas[name] = schema
	v.mu.Unlock()
	return nil
}

// MustRegister is Register for package-level schema tables.
func (v *Validator) MustRegister(name, schemaJSON string) *Validator {
	if err := v.Register(name, schemaJSON); err != nil {
		panic(err)
	}
	return v
}

// Validate checks document against the named schema. Violations come back
// as a VALIDATION_FAILED StandardError listing every field error.
func (v *Validator) Validate(name string, document interface{}) error {
	v.mu.RLock()
	schema, ok := v.schemas[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("schema %s not registered", name)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return apperrors.NewValidationFailedError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return apperrors.NewValidationFailedError(strings.Join(msgs, "; "))
}

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
