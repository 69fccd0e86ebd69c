package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxNameLength        = 32
	maxDescriptionLength = 100
	maxOptions           = 25
	maxChoices           = 25
)

var namePattern = regexp.MustCompile(`^[-_\p{L}\p{N}]{1,32}$`)

type Command struct {
	ID                       string
	ApplicationID            string
	GuildID                  string
	Version                  string
	Type                     CommandType
	Name                     string
	Description              string
	DefaultMemberPermissions *int64
	IntegrationTypes         []IntegrationType
	Contexts                 []ContextType
	NSFW                     bool
	Options                  []Option
}

type Option struct {
	Type         OptionType
	Name         string
	Description  string
	Required     bool
	Autocomplete bool
	Choices      []Choice
	Options      []Option
}

type Choice struct {
	Name  string
	Value any
}

// CommandPatch is a partial update. Nil fields are left untouched remotely.
type CommandPatch struct {
	Name                     *string
	Description              *string
	DefaultMemberPermissions *int64
	IntegrationTypes         []IntegrationType
	Contexts                 []ContextType
	NSFW                     *bool
	Options                  []Option
}

func (p CommandPatch) IsEmpty() bool {
	return p.Name == nil &&
		p.Description == nil &&
		p.DefaultMemberPermissions == nil &&
		p.IntegrationTypes == nil &&
		p.Contexts == nil &&
		p.NSFW == nil &&
		p.Options == nil
}

// Validate checks the fields the patch sets. Names are only checked for
// length since the command type is not known here.
func (p CommandPatch) Validate() error {
	if p.IsEmpty() {
		return NewValidationError("patch does not change any field")
	}
	if p.Name != nil {
		n := len([]rune(*p.Name))
		if n == 0 || n > maxNameLength || strings.TrimSpace(*p.Name) != *p.Name {
			return NewValidationError("command name %q must be 1-%d characters", *p.Name, maxNameLength)
		}
	}
	if p.Description != nil {
		if err := validateDescription("patch", *p.Description); err != nil {
			return err
		}
	}
	return validateOptions("patch", p.Options)
}

// NormalizedFor returns a copy with names normalised the way Normalized
// does for a command of type t.
func (p CommandPatch) NormalizedFor(t CommandType) CommandPatch {
	out := p
	if p.Name != nil && isChatInput(t) {
		name := NormalizeName(*p.Name)
		out.Name = &name
	}
	out.Options = normalizeOptions(p.Options)
	return out
}

// ValidateFor is Validate plus the rules that depend on the type of the
// patched command.
func (p CommandPatch) ValidateFor(t CommandType) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if isChatInput(t) {
		if p.Name != nil && (!namePattern.MatchString(*p.Name) || *p.Name != NormalizeName(*p.Name)) {
			return NewValidationError("command name %q must be 1-%d lowercase letters, digits, '-' or '_'", *p.Name, maxNameLength)
		}
		return nil
	}

	if p.Description != nil && *p.Description != "" {
		return NewValidationError("%s command cannot have a description", t)
	}
	if len(p.Options) > 0 {
		return NewValidationError("%s command cannot have options", t)
	}
	return nil
}

func isChatInput(t CommandType) bool {
	return t == CommandTypeChatInput || t == 0
}

// NormalizeName lower-cases a command or option name the way Discord expects it.
func NormalizeName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Normalized returns a copy with the command and option names normalised
// and the type defaulted to chat-input.
func (c Command) Normalized() Command {
	out := c
	if out.Type == 0 {
		out.Type = CommandTypeChatInput
	}
	if out.Type == CommandTypeChatInput {
		out.Name = NormalizeName(out.Name)
	}
	out.Options = normalizeOptions(c.Options)
	return out
}

func normalizeOptions(opts []Option) []Option {
	if opts == nil {
		return nil
	}
	out := make([]Option, len(opts))
	for i, opt := range opts {
		opt.Name = NormalizeName(opt.Name)
		opt.Options = normalizeOptions(opt.Options)
		out[i] = opt
	}
	return out
}

// Validate checks the constraints Discord enforces on creation, so that
// malformed payloads fail locally with ErrValidation.
func (c Command) Validate() error {
	switch c.Type {
	case CommandTypeChatInput, 0:
		if !namePattern.MatchString(c.Name) || c.Name != NormalizeName(c.Name) {
			return NewValidationError("command name %q must be 1-%d lowercase letters, digits, '-' or '_'", c.Name, maxNameLength)
		}
		if err := validateDescription("command "+c.Name, c.Description); err != nil {
			return err
		}
	case CommandTypeUser, CommandTypeMessage:
		if c.Name == "" || len([]rune(c.Name)) > maxNameLength {
			return NewValidationError("command name %q must be 1-%d characters", c.Name, maxNameLength)
		}
		if c.Description != "" {
			return NewValidationError("%s command %q cannot have a description", c.Type, c.Name)
		}
		if len(c.Options) > 0 {
			return NewValidationError("%s command %q cannot have options", c.Type, c.Name)
		}
	default:
		return NewValidationError("command %q has unknown type %d", c.Name, c.Type)
	}

	return validateOptions("command "+c.Name, c.Options)
}

func validateOptions(owner string, opts []Option) error {
	if len(opts) > maxOptions {
		return NewValidationError("%s has %d options, at most %d allowed", owner, len(opts), maxOptions)
	}

	seen := make(map[string]struct{}, len(opts))
	optionalSeen := false
	for _, opt := range opts {
		if !namePattern.MatchString(opt.Name) || opt.Name != NormalizeName(opt.Name) {
			return NewValidationError("%s: option name %q is invalid", owner, opt.Name)
		}
		if _, dup := seen[opt.Name]; dup {
			return NewValidationError("%s: duplicate option %q", owner, opt.Name)
		}
		seen[opt.Name] = struct{}{}

		if opt.Type < OptionSubCommand || opt.Type > OptionAttachment {
			return NewValidationError("%s: option %q has unknown type %d", owner, opt.Name, opt.Type)
		}
		if err := validateDescription(owner+" option "+opt.Name, opt.Description); err != nil {
			return err
		}
		if opt.Required && optionalSeen {
			return NewValidationError("%s: required option %q must precede optional ones", owner, opt.Name)
		}
		if !opt.Required {
			optionalSeen = true
		}
		if opt.Autocomplete && len(opt.Choices) > 0 {
			return NewValidationError("%s: option %q cannot combine autocomplete and choices", owner, opt.Name)
		}
		if len(opt.Choices) > maxChoices {
			return NewValidationError("%s: option %q has more than %d choices", owner, opt.Name, maxChoices)
		}
		if err := validateOptions(owner+" "+opt.Name, opt.Options); err != nil {
			return err
		}
	}
	return nil
}

func validateDescription(owner, desc string) error {
	n := len([]rune(desc))
	if n == 0 || n > maxDescriptionLength {
		return NewValidationError("%s: description must be 1-%d characters, got %d", owner, maxDescriptionLength, n)
	}
	return nil
}

// FindByName returns the first command with the given name.
func FindByName(cmds []Command, name string) (Command, bool) {
	for _, cmd := range cmds {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}

// CommandFailure records one failed item of a bulk operation.
type CommandFailure struct {
	ID   string
	Name string
	Err  error
}

// BulkResult summarises an operation applied to many commands.
type BulkResult struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []CommandFailure
}

func (r *BulkResult) RecordSuccess() {
	r.Attempted++
	r.Succeeded++
}

func (r *BulkResult) RecordFailure(id, name string, err error) {
	r.Attempted++
	r.Failed++
	r.Failures = append(r.Failures, CommandFailure{ID: id, Name: name, Err: err})
}

// Err joins the individual failures, nil when everything succeeded.
func (r BulkResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s (%s): %w", f.Name, f.ID, f.Err))
	}
	return errors.Join(errs...)
}

type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditUpdate AuditAction = "update"
	AuditDelete AuditAction = "delete"
)

// AuditEntry is one journalled mutation.
type AuditEntry struct {
	RunID       string
	Action      AuditAction
	Scope       string
	CommandID   string
	CommandName string
	Outcome     string
	Error       string
	At          time.Time
}
