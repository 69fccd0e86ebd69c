package main

import (
	"encoding/json"
	"io"
	"strconv"
	"time"

	"lsdc2-commands/internal/core/domain"
)

type commandView struct {
	ID                       string       `json:"id,omitempty"`
	Name                     string       `json:"name"`
	Type                     string       `json:"type"`
	Description              string       `json:"description"`
	GuildID                  string       `json:"guild_id,omitempty"`
	Version                  string       `json:"version,omitempty"`
	DefaultMemberPermissions *string      `json:"default_member_permissions,omitempty"`
	IntegrationTypes         []int        `json:"integration_types,omitempty"`
	Contexts                 []int        `json:"contexts,omitempty"`
	NSFW                     bool         `json:"nsfw,omitempty"`
	Options                  []optionView `json:"options,omitempty"`
}

type optionView struct {
	Type         int          `json:"type"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	Required     bool         `json:"required,omitempty"`
	Autocomplete bool         `json:"autocomplete,omitempty"`
	Choices      []choiceView `json:"choices,omitempty"`
	Options      []optionView `json:"options,omitempty"`
}

type choiceView struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type failureView struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type bulkView struct {
	Scope     string        `json:"scope"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Failures  []failureView `json:"failures,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type registerView struct {
	Scope    string        `json:"scope"`
	Commands []commandView `json:"commands"`
	Result   bulkView      `json:"result"`
}

type deleteView struct {
	Scope   string `json:"scope"`
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Deleted bool   `json:"deleted"`
}

type auditView struct {
	At          time.Time `json:"at"`
	RunID       string    `json:"run_id"`
	Action      string    `json:"action"`
	Scope       string    `json:"scope"`
	CommandID   string    `json:"command_id,omitempty"`
	CommandName string    `json:"command_name,omitempty"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCommandView(c domain.Command) commandView {
	v := commandView{
		ID:          c.ID,
		Name:        c.Name,
		Type:        c.Type.String(),
		Description: c.Description,
		GuildID:     c.GuildID,
		Version:     c.Version,
		NSFW:        c.NSFW,
		Options:     newOptionViews(c.Options),
	}
	if c.DefaultMemberPermissions != nil {
		perms := strconv.FormatInt(*c.DefaultMemberPermissions, 10)
		v.DefaultMemberPermissions = &perms
	}
	for _, it := range c.IntegrationTypes {
		v.IntegrationTypes = append(v.IntegrationTypes, int(it))
	}
	for _, ctx := range c.Contexts {
		v.Contexts = append(v.Contexts, int(ctx))
	}
	return v
}

// newCommandViews never returns nil so that an empty scope prints as [].
func newCommandViews(cmds []domain.Command) []commandView {
	views := make([]commandView, 0, len(cmds))
	for _, c := range cmds {
		views = append(views, newCommandView(c))
	}
	return views
}

func newOptionViews(opts []domain.Option) []optionView {
	if len(opts) == 0 {
		return nil
	}
	views := make([]optionView, 0, len(opts))
	for _, o := range opts {
		ov := optionView{
			Type:         int(o.Type),
			Name:         o.Name,
			Description:  o.Description,
			Required:     o.Required,
			Autocomplete: o.Autocomplete,
			Options:      newOptionViews(o.Options),
		}
		for _, ch := range o.Choices {
			ov.Choices = append(ov.Choices, choiceView{Name: ch.Name, Value: ch.Value})
		}
		views = append(views, ov)
	}
	return views
}

func newBulkView(scope domain.Scope, r domain.BulkResult) bulkView {
	v := bulkView{
		Scope:     scope.String(),
		Attempted: r.Attempted,
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
	}
	for _, f := range r.Failures {
		v.Failures = append(v.Failures, failureView{
			ID:    f.ID,
			Name:  f.Name,
			Kind:  domain.KindOf(f.Err),
			Error: f.Err.Error(),
		})
	}
	return v
}

func newAuditViews(entries []domain.AuditEntry) []auditView {
	views := make([]auditView, 0, len(entries))
	for _, e := range entries {
		views = append(views, auditView{
			At:          e.At,
			RunID:       e.RunID,
			Action:      string(e.Action),
			Scope:       e.Scope,
			CommandID:   e.CommandID,
			CommandName: e.CommandName,
			Outcome:     e.Outcome,
			Error:       e.Error,
		})
	}
	return views
}
