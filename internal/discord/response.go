package discord

type ResponseType int

const (
	ResponsePong               ResponseType = 1
	ResponseChannelMessage     ResponseType = 4
	ResponseDeferred           ResponseType = 5
	ResponseUpdateMessage      ResponseType = 7
	ResponseAutocompleteResult ResponseType = 8
	ResponseModal              ResponseType = 9
)

const FlagEphemeral = 1 << 6

const (
	ComponentActionRow    = 1
	ComponentButton       = 2
	ComponentStringSelect = 3
	ComponentTextInput    = 4
)

const (
	ButtonStyleSuccess = 3
	ButtonStyleDanger  = 4
)

const (
	TextInputShort     = 1
	TextInputParagraph = 2
)

const (
	maxAutocompleteChoices = 25
	maxChoiceLabelRunes    = 100
)

// Response is the synchronous answer to an interaction webhook.
type Response struct {
	Type ResponseType  `json:"type"`
	Data *ResponseData `json:"data,omitempty"`
}

type ResponseData struct {
	Content    string      `json:"content,omitempty"`
	Flags      int         `json:"flags,omitempty"`
	Components []Component `json:"components,omitempty"`
	Choices    []Choice    `json:"choices,omitempty"`
	CustomID   string      `json:"custom_id,omitempty"`
	Title      string      `json:"title,omitempty"`
}

type Choice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Component covers action rows, buttons, string selects and text inputs with
// a single struct; zero fields are omitted from the wire form.
type Component struct {
	Type        int            `json:"type"`
	Style       int            `json:"style,omitempty"`
	Label       string         `json:"label,omitempty"`
	CustomID    string         `json:"custom_id,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	MinValues   *int           `json:"min_values,omitempty"`
	MaxValues   *int           `json:"max_values,omitempty"`
	MinLength   *int           `json:"min_length,omitempty"`
	MaxLength   *int           `json:"max_length,omitempty"`
	Required    bool           `json:"required,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	Components  []Component    `json:"components,omitempty"`
}

type SelectOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func Pong() *Response {
	return &Response{Type: ResponsePong}
}

// NewMessageResponse builds a CHANNEL_MESSAGE response. Errors and most
// acknowledgements are ephemeral; final broadcasts are public.
func NewMessageResponse(content string, ephemeral bool) *Response {
	data := &ResponseData{Content: content}
	if ephemeral {
		data.Flags = FlagEphemeral
	}
	return &Response{Type: ResponseChannelMessage, Data: data}
}

// NewUpdateResponse edits the message the component lives on in place.
func NewUpdateResponse(content string, components []Component) *Response {
	return &Response{
		Type: ResponseUpdateMessage,
		Data: &ResponseData{Content: content, Components: components},
	}
}

func NewModalResponse(customID, title string, rows ...Component) *Response {
	return &Response{
		Type: ResponseModal,
		Data: &ResponseData{CustomID: customID, Title: title, Components: rows},
	}
}

// NewAutocompleteResponse clamps to the platform limits: at most 25 choices,
// labels truncated to 100 runes. Overflow is trimmed, never an error.
func NewAutocompleteResponse(choices []Choice) *Response {
	if len(choices) > maxAutocompleteChoices {
		choices = choices[:maxAutocompleteChoices]
	}
	clamped := make([]Choice, len(choices))
	for i, ch := range choices {
		ch.Name = truncateRunes(ch.Name, maxChoiceLabelRunes)
		clamped[i] = ch
	}
	return &Response{
		Type: ResponseAutocompleteResult,
		Data: &ResponseData{Choices: clamped},
	}
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func ActionRow(children ...Component) Component {
	return Component{Type: ComponentActionRow, Components: children}
}

func Button(style int, label, customID string, disabled bool) Component {
	return Component{
		Type:     ComponentButton,
		Style:    style,
		Label:    label,
		CustomID: customID,
		Disabled: disabled,
	}
}

// ApproveRejectRow is the standard two-button row attached to approval cards.
func ApproveRejectRow(approveID, rejectID string, disabled bool) Component {
	return ActionRow(
		Button(ButtonStyleSuccess, "Approve", approveID, disabled),
		Button(ButtonStyleDanger, "Reject", rejectID, disabled),
	)
}

func StringSelect(customID, placeholder string, options []SelectOption) Component {
	one := 1
	return Component{
		Type:        ComponentStringSelect,
		CustomID:    customID,
		Placeholder: placeholder,
		MinValues:   &one,
		MaxValues:   &one,
		Options:     options,
	}
}

func TextInput(customID, label string, style int, required bool, minLen, maxLen int, placeholder string) Component {
	c := Component{
		Type:        ComponentTextInput,
		CustomID:    customID,
		Label:       label,
		Style:       style,
		Required:    required,
		Placeholder: placeholder,
	}
	if minLen > 0 {
		c.MinLength = &minLen
	}
	if maxLen > 0 {
		c.MaxLength = &maxLen
	}
	return c
}
