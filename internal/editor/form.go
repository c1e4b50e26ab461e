// Copyright (c) 2026 SSHHub Team
// SSHHub - SSH connection hub
// This source code is licensed under the MIT license found in the LICENSE file.

// Package editor implements the target form used to add and edit targets.
// The form is a plain state machine fed one line of input at a time; the
// interactive and command-line front ends only render its prompts.
package editor

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/toeirei/sshhub/internal/i18n"
	"github.com/toeirei/sshhub/internal/model"
	"github.com/toeirei/sshhub/internal/registry"
	"github.com/toeirei/sshhub/internal/validate"
)

// Field identifies one prompt of the form.
type Field int

const (
	FieldID Field = iota
	FieldName
	FieldHost
	FieldPort
	FieldUsername
	FieldScan
	fieldCount
)

// Form collects a target field by field. The candidate is only handed out
// through Result once every field was accepted.
type Form struct {
	isNew     bool
	original  model.Target
	candidate model.Target
	taken     func(id int) bool

	field     Field
	cancelled bool
}

// New starts a form. A nil current starts an add form; otherwise the form
// edits a copy of *current and empty input keeps each field. taken reports
// whether an id is used by a target in the registry.
func New(current *model.Target, taken func(id int) bool) *Form {
	f := &Form{isNew: current == nil, taken: taken}
	if current != nil {
		f.original = *current
		f.candidate = *current
	}
	if f.taken == nil {
		f.taken = func(int) bool { return false }
	}
	return f
}

// IsNew reports whether the form adds a target.
func (f *Form) IsNew() bool { return f.isNew }

// Original returns the edited target. It is the zero value for add forms.
func (f *Form) Original() model.Target { return f.original }

// Field returns the field being asked for.
func (f *Form) Field() Field { return f.field }

// Done reports whether every field has been accepted.
func (f *Form) Done() bool { return !f.cancelled && f.field == fieldCount }

// Cancelled reports whether the form was aborted.
func (f *Form) Cancelled() bool { return f.cancelled }

// Result returns the completed target. ok is false until Done.
func (f *Form) Result() (model.Target, bool) {
	return f.candidate, f.Done()
}

// Submit resolves raw for the current field. On success the form moves to
// the next field. A validation error leaves the form on the same field so
// the caller re-prompts. validate.ErrCancelled aborts the whole form.
func (f *Form) Submit(raw string) error {
	if f.cancelled || f.field == fieldCount {
		return nil
	}
	if validate.IsCancel(raw) {
		f.cancelled = true
		return validate.ErrCancelled
	}

	var def *int
	if !f.isNew {
		def = new(int)
	}

	switch f.field {
	case FieldID:
		if def != nil {
			*def = f.original.ID
		}
		id, err := validate.Int(raw, def)
		if err != nil {
			return err
		}
		if (f.isNew || id != f.original.ID) && f.taken(id) {
			return fmt.Errorf("%w: %d", registry.ErrDuplicateID, id)
		}
		f.candidate.ID = id
	case FieldName:
		v, err := validate.String(raw, f.original.Name, f.isNew)
		if err != nil {
			return err
		}
		f.candidate.Name = v
	case FieldHost:
		v, err := validate.String(raw, f.original.Host, f.isNew)
		if err != nil {
			return err
		}
		f.candidate.Host = v
	case FieldPort:
		port := model.DefaultPort
		if !f.isNew {
			port = f.original.EffectivePort()
		}
		v, err := validate.PortNumber(raw, &port)
		if err != nil {
			return err
		}
		f.candidate.Port = v
	case FieldUsername:
		v, err := validate.String(raw, f.original.Username, f.isNew)
		if err != nil {
			return err
		}
		f.candidate.Username = v
	case FieldScan:
		var cur *bool
		if !f.isNew {
			cur = &f.original.ScanOnline
		}
		v, err := validate.YesNo(raw, cur)
		if err != nil {
			return err
		}
		f.candidate.ScanOnline = v
	}
	f.field++
	return nil
}

// Prompt returns the translated prompt for the current field.
func (f *Form) Prompt() string {
	o := f.original
	if f.isNew {
		switch f.field {
		case FieldID:
			return i18n.T("form.id.new")
		case FieldName:
			return i18n.T("form.name.new")
		case FieldHost:
			return i18n.T("form.host.new")
		case FieldPort:
			return i18n.T("form.port.new")
		case FieldUsername:
			return i18n.T("form.username.new")
		case FieldScan:
			return i18n.T("form.scan.new")
		}
		return ""
	}
	switch f.field {
	case FieldID:
		return i18n.T("form.id.edit", o.ID)
	case FieldName:
		return i18n.T("form.name.edit", o.Name)
	case FieldHost:
		return i18n.T("form.host.edit", o.Host)
	case FieldPort:
		return i18n.T("form.port.edit", o.EffectivePort())
	case FieldUsername:
		return i18n.T("form.username.edit", o.Username)
	case FieldScan:
		return i18n.T("form.scan.edit", yn(o.ScanOnline))
	}
	return ""
}

// Placeholder returns the value kept by empty input, or "" on add forms.
func (f *Form) Placeholder() string {
	if f.isNew {
		if f.field == FieldPort {
			return strconv.Itoa(model.DefaultPort)
		}
		return ""
	}
	o := f.original
	switch f.field {
	case FieldID:
		return strconv.Itoa(o.ID)
	case FieldName:
		return o.Name
	case FieldHost:
		return o.Host
	case FieldPort:
		return strconv.Itoa(o.EffectivePort())
	case FieldUsername:
		return o.Username
	case FieldScan:
		return yn(o.ScanOnline)
	}
	return ""
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// Describe returns the translated message for errors raised by the form,
// the registry or the store.
func Describe(err error) string {
	switch {
	case errors.Is(err, validate.ErrEmptyInput):
		return i18n.T("error.empty_input")
	case errors.Is(err, validate.ErrInvalidInteger):
		return i18n.T("error.invalid_integer")
	case errors.Is(err, validate.ErrInvalidBoolean):
		return i18n.T("error.invalid_boolean")
	case errors.Is(err, validate.ErrPortRange):
		return i18n.T("error.port_range")
	case errors.Is(err, registry.ErrDuplicateID):
		return i18n.T("error.duplicate_id")
	case errors.Is(err, registry.ErrNotFound):
		return i18n.T("error.not_found")
	}
	return i18n.T("error.prefix", err)
}
