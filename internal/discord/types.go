package discord

import (
	"fmt"
	"strings"
)

type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionMessageComponent   InteractionType = 3
	InteractionAutocomplete       InteractionType = 4
	InteractionModalSubmit        InteractionType = 5
)

// Interaction is the inbound webhook payload. Only the fields the dispatcher
// actually reads are modeled; Discord sends considerably more.
type Interaction struct {
	ID        string          `json:"id"`
	Type      InteractionType `json:"type"`
	ChannelID string          `json:"channel_id"`
	Data      InteractionData `json:"data"`
	Member    *Member         `json:"member,omitempty"`
	User      *User           `json:"user,omitempty"`
	Message   *Message        `json:"message,omitempty"`
}

type InteractionData struct {
	Name       string          `json:"name,omitempty"`
	CustomID   string          `json:"custom_id,omitempty"`
	Values     []string        `json:"values,omitempty"`
	Options    []CommandOption `json:"options,omitempty"`
	Components []ModalRow      `json:"components,omitempty"`
	Resolved   *Resolved       `json:"resolved,omitempty"`
}

type CommandOption struct {
	Name    string      `json:"name"`
	Value   interface{} `json:"value,omitempty"`
	Focused bool        `json:"focused,omitempty"`
}

// ModalRow is an action row inside a modal submission.
type ModalRow struct {
	Type       int          `json:"type"`
	Components []ModalInput `json:"components"`
}

type ModalInput struct {
	Type     int    `json:"type"`
	CustomID string `json:"custom_id"`
	Value    string `json:"value"`
}

type Resolved struct {
	Attachments map[string]Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

type Member struct {
	User *User `json:"user,omitempty"`
}

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
}

type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Invoker resolves the acting user; guild interactions nest it under member,
// DM interactions put it at top level.
func (i *Interaction) Invoker() User {
	if i.Member != nil && i.Member.User != nil {
		return *i.Member.User
	}
	if i.User != nil {
		return *i.User
	}
	return User{}
}

func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.GlobalName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.Username); name != "" {
		return name
	}
	return "Unknown"
}

// Option returns the named slash-command option coerced to a trimmed string.
// Lookup is case-insensitive; numbers arrive as float64 from JSON and are
// rendered without an exponent.
func (d InteractionData) Option(name string) string {
	for _, o := range d.Options {
		if !strings.EqualFold(o.Name, name) {
			continue
		}
		switch v := o.Value.(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}
			return fmt.Sprintf("%v", v)
		default:
			return strings.TrimSpace(fmt.Sprintf("%v", v))
		}
	}
	return ""
}

func (d InteractionData) FocusedOption() (CommandOption, bool) {
	for _, o := range d.Options {
		if o.Focused {
			return o, true
		}
	}
	return CommandOption{}, false
}

// OptionAttachment resolves an attachment-typed option to its metadata.
func (d InteractionData) OptionAttachment(name string) (Attachment, bool) {
	if d.Resolved == nil {
		return Attachment{}, false
	}
	for _, o := range d.Options {
		if strings.EqualFold(o.Name, name) {
			id := fmt.Sprintf("%v", o.Value)
			att, ok := d.Resolved.Attachments[id]
			return att, ok
		}
	}
	return Attachment{}, false
}

// ModalValue returns the submitted value of the text input with the given
// custom id, or empty if the modal did not contain it.
func (d InteractionData) ModalValue(customID string) string {
	for _, row := range d.Components {
		for _, in := range row.Components {
			if in.CustomID == customID {
				return strings.TrimSpace(in.Value)
			}
		}
	}
	return ""
}
