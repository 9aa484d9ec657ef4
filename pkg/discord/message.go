package discord

// Limits enforced by Discord on embed content.
const (
	MaxDescriptionLength = 4096
	MaxFieldValueLength  = 1024
	MaxTitleLength       = 256
)

// Payload is the JSON document posted to a Discord webhook URL.
type Payload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds"`
}

// Embed is a single rich message block.
type Embed struct {
	Title       string     `json:"title,omitempty"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	Color       int        `json:"color"`
	Timestamp   string     `json:"timestamp,omitempty"`
	Author      *Author    `json:"author,omitempty"`
	Fields      []Field    `json:"fields,omitempty"`
	Footer      *Footer    `json:"footer,omitempty"`
	Thumbnail   *Thumbnail `json:"thumbnail,omitempty"`
}

// Author attributes an embed to a user.
type Author struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Field is a named value rendered either inline or as its own block.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Footer is the small text line at the bottom of an embed.
type Footer struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

// Thumbnail is the image shown in the top right corner of an embed.
type Thumbnail struct {
	URL string `json:"url"`
}

// NewPayload wraps a single embed into a webhook payload.
func NewPayload(embed Embed) Payload {
	return Payload{Embeds: []Embed{embed}}
}

// AddField appends a field to the embed.
func (e *Embed) AddField(name, value string, inline bool) {
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
}
