// Package translate turns GitHub webhook payloads into Discord embeds.
//
// Every supported event kind has exactly one entry in the rule table. A rule
// gates on the payload action and renders an embed, or declines by returning
// nil. Display strings come from a Locale, so localized deployments share the
// same rules.
package translate

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"gitcord/pkg/discord"

	ghevent "github.com/go-playground/webhooks/v6/github"
	"github.com/google/go-github/v57/github"
)

// Embed colors, one per state.
const (
	ColorPush              = 0x7289DA
	ColorForcePush         = 0xFF0000
	ColorIssueOpened       = 0x2ECC71
	ColorIssueClosed       = 0xE74C3C
	ColorIssueReopened     = 0xE67E22
	ColorNeutral           = 0x95A5A6
	ColorPullRequest       = 0x3498DB
	ColorMerged            = 0x9B59B6
	ColorClosedUnmerged    = 0x992D22
	ColorReviewComment     = 0xE67E22
	ColorComment           = 0xF1C40F
	ColorApproved          = 0x2ECC71
	ColorChangesRequested  = 0xE74C3C
	ColorRelease           = 0xFFD700
	ColorStar              = 0xFFFF00
	ColorPing              = 0x2ECC71
	colorUnknownIssueState = ColorNeutral
)

// Text limits applied before the Discord hard limits.
const (
	MaxCommits       = 5
	IssueBodyLimit   = 300
	CommentBodyLimit = 300
	DiffHunkLimit    = 300
	ReleaseBodyLimit = 500
)

// GitHubIcon is the footer icon of every repository-scoped embed.
const GitHubIcon = "https://github.githubassets.com/images/modules/logos_page/GitHub-Mark.png"

// ErrMalformedPayload is returned when a payload cannot be decoded into the
// event type its kind promises.
var ErrMalformedPayload = errors.New("malformed payload")

var lifecycleActions = []string{"opened", "closed", "reopened"}

var rules = map[ghevent.Event]rule{
	ghevent.PushEvent:                     eventRule[*github.PushEvent]{render: (*Translator).push},
	ghevent.IssuesEvent:                   eventRule[*github.IssuesEvent]{actions: lifecycleActions, render: (*Translator).issue},
	ghevent.PullRequestEvent:              eventRule[*github.PullRequestEvent]{actions: lifecycleActions, render: (*Translator).pullRequest},
	ghevent.PullRequestReviewCommentEvent: eventRule[*github.PullRequestReviewCommentEvent]{actions: []string{"created"}, render: (*Translator).reviewComment},
	ghevent.IssueCommentEvent:             eventRule[*github.IssueCommentEvent]{actions: []string{"created"}, render: (*Translator).issueComment},
	ghevent.PullRequestReviewEvent:        eventRule[*github.PullRequestReviewEvent]{render: (*Translator).review},
	ghevent.ReleaseEvent:                  eventRule[*github.ReleaseEvent]{actions: []string{"published"}, render: (*Translator).release},
	ghevent.WatchEvent:                    eventRule[*github.WatchEvent]{actions: []string{"started"}, render: (*Translator).star},
	ghevent.PingEvent:                     staticRule{render: (*Translator).ping},
}

// Translator renders embeds. The zero value is not usable; use New.
type Translator struct {
	Locale Locale
	// Now stamps each embed with the processing time.
	Now func() time.Time
}

// New returns a Translator using the given locale and the wall clock.
func New(locale Locale) *Translator {
	return &Translator{Locale: locale, Now: time.Now}
}

// Kinds lists the event kinds with a rule, sorted.
func Kinds() []ghevent.Event {
	kinds := make([]ghevent.Event, 0, len(rules))
	for kind := range rules {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Supported reports whether kind has a rule.
func Supported(kind ghevent.Event) bool {
	_, ok := rules[kind]
	return ok
}

// Translate decodes payload as kind and renders it. A nil embed with a nil
// error means the event is not notable.
func (t *Translator) Translate(kind ghevent.Event, payload []byte) (*discord.Embed, error) {
	r, ok := rules[kind]
	if !ok {
		return nil, nil
	}
	return r.translate(t, kind, payload)
}

// TranslateEvent renders an already decoded go-github event.
func (t *Translator) TranslateEvent(kind ghevent.Event, event interface{}) (*discord.Embed, error) {
	r, ok := rules[kind]
	if !ok {
		return nil, nil
	}
	return r.translateEvent(t, event)
}

type rule interface {
	translate(t *Translator, kind ghevent.Event, payload []byte) (*discord.Embed, error)
	translateEvent(t *Translator, event interface{}) (*discord.Embed, error)
}

type actionEvent interface {
	GetAction() string
}

type eventRule[E actionEvent] struct {
	// actions is nil when every action is accepted.
	actions []string
	render  func(*Translator, E) *discord.Embed
}

func (r eventRule[E]) translate(t *Translator, kind ghevent.Event, payload []byte) (*discord.Embed, error) {
	event, err := github.ParseWebHook(string(kind), payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, kind, err)
	}
	return r.translateEvent(t, event)
}

func (r eventRule[E]) translateEvent(t *Translator, event interface{}) (*discord.Embed, error) {
	typed, ok := event.(E)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected event type %T", ErrMalformedPayload, event)
	}
	if r.actions != nil && !slices.Contains(r.actions, typed.GetAction()) {
		return nil, nil
	}
	return finalize(r.render(t, typed)), nil
}

type staticRule struct {
	render func(*Translator) *discord.Embed
}

func (r staticRule) translate(t *Translator, _ ghevent.Event, _ []byte) (*discord.Embed, error) {
	return finalize(r.render(t)), nil
}

func (r staticRule) translateEvent(t *Translator, _ interface{}) (*discord.Embed, error) {
	return finalize(r.render(t)), nil
}

func (t *Translator) newEmbed(color int) *discord.Embed {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	return &discord.Embed{
		Color:     color,
		Timestamp: now().UTC().Format(time.RFC3339),
	}
}

// finalize enforces the Discord hard limits.
func finalize(embed *discord.Embed) *discord.Embed {
	if embed == nil {
		return nil
	}
	embed.Title = clamp(embed.Title, discord.MaxTitleLength)
	embed.Description = clamp(embed.Description, discord.MaxDescriptionLength)
	for i := range embed.Fields {
		embed.Fields[i].Value = clamp(embed.Fields[i].Value, discord.MaxFieldValueLength)
	}
	return embed
}

// author never leaves the name empty; Discord rejects an unnamed author.
func (t *Translator) author(user *github.User) *discord.Author {
	return &discord.Author{
		Name:    t.value(user.GetLogin()),
		IconURL: user.GetAvatarURL(),
		URL:     user.GetHTMLURL(),
	}
}

func repoFooter(fullName string) *discord.Footer {
	return &discord.Footer{Text: fullName, IconURL: GitHubIcon}
}

func thumbnail(url string) *discord.Thumbnail {
	if url == "" {
		return nil
	}
	return &discord.Thumbnail{URL: url}
}
