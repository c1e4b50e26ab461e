// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package validate resolves raw prompt input into field values. Every function
// here is pure: the result depends only on the arguments.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/toeirei/sshhub/internal/model"
)

// CancelSentinel aborts any prompt when typed as the whole input.
const CancelSentinel = "!cancel"

var (
	ErrCancelled      = errors.New("input cancelled")
	ErrEmptyInput     = errors.New("input cannot be empty")
	ErrInvalidInteger = errors.New("invalid integer")
	ErrInvalidBoolean = errors.New("invalid input, enter 'y' or 'n'")
	ErrPortRange      = errors.New("port must be between 1 and 65535")
)

// Kind selects the parsing rules applied by ValidateField.
type Kind int

const (
	Text Kind = iota
	Integer
	Port
	Bool
)

// IsCancel reports whether raw is the cancellation sentinel.
func IsCancel(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), CancelSentinel)
}

// ValidateField resolves raw input for a field of the given kind. When the
// field is not required, current is the fallback for empty input. The
// resolved value is returned in canonical string form ("true"/"false" for
// booleans, base-10 for integers).
func ValidateField(kind Kind, raw, current string, required bool) (string, error) {
	if IsCancel(raw) {
		return "", ErrCancelled
	}
	input := strings.TrimSpace(raw)

	switch kind {
	case Bool:
		switch strings.ToLower(input) {
		case "y":
			return "true", nil
		case "n":
			return "false", nil
		case "":
			if !required {
				return current, nil
			}
		}
		return "", ErrInvalidBoolean

	case Integer, Port:
		if input == "" {
			if required {
				return "", ErrEmptyInput
			}
			return current, nil
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			if required {
				return "", fmt.Errorf("%w: %q", ErrInvalidInteger, input)
			}
			// a default exists, so garbage falls back to it
			return current, nil
		}
		if kind == Port && (n < 1 || n > 65535) {
			return "", fmt.Errorf("%w: %d", ErrPortRange, n)
		}
		return strconv.Itoa(n), nil

	default:
		if input == "" {
			if required {
				return "", ErrEmptyInput
			}
			return current, nil
		}
		return input, nil
	}
}

// String resolves a free-text field.
func String(raw, current string, required bool) (string, error) {
	return ValidateField(Text, raw, current, required)
}

// Int resolves an integer field. A nil def makes the field required.
func Int(raw string, def *int) (int, error) {
	return intField(Integer, raw, def)
}

// PortNumber resolves a port field. A nil def makes the field required.
func PortNumber(raw string, def *int) (int, error) {
	return intField(Port, raw, def)
}

func intField(kind Kind, raw string, def *int) (int, error) {
	current := ""
	if def != nil {
		current = strconv.Itoa(*def)
	}
	v, err := ValidateField(kind, raw, current, def == nil)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

// YesNo resolves a y/n field. A nil def means there is no default and empty
// input is rejected.
func YesNo(raw string, def *bool) (bool, error) {
	current := ""
	if def != nil {
		current = strconv.FormatBool(*def)
	}
	v, err := ValidateField(Bool, raw, current, def == nil)
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// CheckTarget validates a complete target, as stored in a registry.
func CheckTarget(t model.Target) error {
	switch {
	case strings.TrimSpace(t.Name) == "":
		return fmt.Errorf("target %d: name: %w", t.ID, ErrEmptyInput)
	case strings.TrimSpace(t.Host) == "":
		return fmt.Errorf("target %d: host: %w", t.ID, ErrEmptyInput)
	case strings.TrimSpace(t.Username) == "":
		return fmt.Errorf("target %d: username: %w", t.ID, ErrEmptyInput)
	case t.Port < 1 || t.Port > 65535:
		return fmt.Errorf("target %d: %w: %d", t.ID, ErrPortRange, t.Port)
	}
	return nil
}
