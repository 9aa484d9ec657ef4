package translate

import (
	"fmt"
	"strings"
)

// Locale holds every display string the translator emits. The rule table is
// shared by all locales; only presentation differs.
type Locale struct {
	Name string

	NoDescription string
	None          string

	// Push
	PushTitle   func(count int, branch string) string
	MoreCommits string
	ForcePush   string

	// Issues
	IssueTitle   string
	IssueAuthor  string
	IssueFooter  string
	IssueActions map[string]string

	// Pull requests
	PRTitle          string
	PRAuthor         string
	PRFooter         string
	PROpened         string
	PRReopened       string
	PRMerged         string
	PRClosedUnmerged string

	// Review comments
	ReviewCommentTitle  string
	ReviewCommentBody   string
	ReviewCommentAuthor string

	// Issue comments
	CommentTitle string
	IssueContext string
	PRContext    string

	// Reviews
	ReviewApproved         string
	ReviewChangesRequested string
	ReviewCommented        string

	// Release
	ReleaseTitle string

	// Star
	StarTitle       string
	StarDescription string

	PingTitle string

	// Field names
	FieldRepository string
	FieldLabels     string
	FieldAssignees  string
	FieldBranches   string
	FieldChanges    string
	FieldFile       string
	FieldCode       string
	FieldStars      string
}

// English is the default catalog.
var English = Locale{
	Name:          "en",
	NoDescription: "*No description*",
	None:          "None",

	PushTitle: func(count int, branch string) string {
		noun := "commits"
		if count == 1 {
			noun = "commit"
		}
		return fmt.Sprintf("[Push] %d new %s to `%s`", count, noun, branch)
	},
	MoreCommits: "...and %d more.",
	ForcePush:   "⚠️ **FORCE PUSH** (History overwritten!)",

	IssueTitle:  "[Issue] %s",
	IssueAuthor: "%s %s issue #%d",
	IssueFooter: "GitHub Issues • %s",
	IssueActions: map[string]string{
		"opened":   "Opened",
		"closed":   "Closed",
		"reopened": "Reopened",
	},

	PRTitle:          "[PR] %s",
	PRAuthor:         "%s %s PR #%d",
	PRFooter:         "GitHub PR • %s",
	PROpened:         "Opened",
	PRReopened:       "Reopened",
	PRMerged:         "Merged",
	PRClosedUnmerged: "Rejected / Closed",

	ReviewCommentTitle:  "👀 Code Review in PR #%d",
	ReviewCommentBody:   "**Comment:** %s",
	ReviewCommentAuthor: "%s on code",

	CommentTitle: "💬 Comment in %s #%d",
	IssueContext: "Issue",
	PRContext:    "PR",

	ReviewApproved:         "✅ Approved PR #%d",
	ReviewChangesRequested: "🛑 Requested changes on PR #%d",
	ReviewCommented:        "Commented on PR #%d",

	ReleaseTitle: "🚀 New Release: %s",

	StarTitle:       "🌟 New Star!",
	StarDescription: "**%s** starred the repository.",

	PingTitle: "✅ GitHub webhook connected successfully!",

	FieldRepository: "Repository",
	FieldLabels:     "Labels",
	FieldAssignees:  "Assignees",
	FieldBranches:   "Branches",
	FieldChanges:    "Changes",
	FieldFile:       "File",
	FieldCode:       "Code",
	FieldStars:      "Stars",
}

// Polish is selected with locale "pl".
var Polish = Locale{
	Name:          "pl",
	NoDescription: "*Brak opisu*",
	None:          "Brak",

	PushTitle: func(count int, branch string) string {
		return fmt.Sprintf("[Push] %d %s do `%s`", count, polishCommits(count), branch)
	},
	MoreCommits: "...i %d więcej.",
	ForcePush:   "⚠️ **FORCE PUSH** (Historia nadpisana!)",

	IssueTitle:  "[Issue] %s",
	IssueAuthor: "%s %s Issue #%d",
	IssueFooter: "GitHub Issues • %s",
	IssueActions: map[string]string{
		"opened":   "Zgłosił(a)",
		"closed":   "Zamknął(ęła)",
		"reopened": "Wznowił(a)",
	},

	PRTitle:          "[PR] %s",
	PRAuthor:         "%s %s Pull Request #%d",
	PRFooter:         "GitHub PR • %s",
	PROpened:         "Otworzył(a)",
	PRReopened:       "Wznowił(a)",
	PRMerged:         "Zmergował(a)",
	PRClosedUnmerged: "Zamknął(ęła)",

	ReviewCommentTitle:  "👀 Code Review w PR #%d",
	ReviewCommentBody:   "**Komentarz:** %s",
	ReviewCommentAuthor: "%s skomentował(a) linię kodu",

	CommentTitle: "💬 Komentarz w %s #%d",
	IssueContext: "Issue",
	PRContext:    "PR",

	ReviewApproved:         "✅ Zatwierdził(a) PR #%d",
	ReviewChangesRequested: "🛑 Poprosił(a) o zmiany w PR #%d",
	ReviewCommented:        "Skomentował(a) PR #%d",

	ReleaseTitle: "🚀 Nowa wersja: %s",

	StarTitle:       "🌟 Nowa gwiazdka!",
	StarDescription: "**%s** polubił(a) repozytorium.",

	PingTitle: "✅ Webhook GitHuba połączony pomyślnie!",

	FieldRepository: "Repozytorium",
	FieldLabels:     "Etykiety",
	FieldAssignees:  "Przypisani",
	FieldBranches:   "Gałęzie",
	FieldChanges:    "Zmiany",
	FieldFile:       "📂 Plik",
	FieldCode:       "💻 Kod",
	FieldStars:      "Liczba gwiazdek",
}

var locales = map[string]Locale{
	English.Name: English,
	Polish.Name:  Polish,
}

// LookupLocale returns the catalog registered under name. Unknown names fall
// back to English.
func LookupLocale(name string) (Locale, bool) {
	locale, ok := locales[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return English, false
	}
	return locale, true
}

func polishCommits(n int) string {
	switch {
	case n == 1:
		return "nowy commit"
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return "nowe commity"
	default:
		return "nowych commitów"
	}
}

func (l Locale) issueAction(action string) string {
	if word, ok := l.IssueActions[action]; ok {
		return word
	}
	return action
}
