// Package yamlutil decodes the YAML configuration of mdmath. It keeps the
// YAML library behind one strict entry point.
package yamlutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

var (
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// DecodeStrict decodes data into v, rejecting unknown keys and inputs over
// maxSize bytes. Blank input leaves v untouched. Syntax and key errors carry
// the position in the source, e.g. "[2:3] unknown field "dri"".
func DecodeStrict(data []byte, v any, maxSize int) error {
	if v == nil {
		return ErrNilDestination
	}
	if len(data) > maxSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), maxSize)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}
	if err := yaml.UnmarshalWithOptions(data, v, yaml.Strict()); err != nil {
		return &DecodeError{msg: yaml.FormatError(err, false, false), err: err}
	}
	return nil
}

// DecodeError is a YAML error formatted with its source position. It wraps the
// error of the YAML library.
type DecodeError struct {
	msg string
	err error
}

func (e *DecodeError) Error() string { return e.msg }
func (e *DecodeError) Unwrap() error { return e.err }
