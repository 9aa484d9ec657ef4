package translate

import (
	"fmt"
	"strings"

	"gitcord/pkg/discord"

	"github.com/google/go-github/v57/github"
)

const branchRefPrefix = "refs/heads/"

var issueColors = map[string]int{
	"opened":   ColorIssueOpened,
	"closed":   ColorIssueClosed,
	"reopened": ColorIssueReopened,
}

func (t *Translator) push(e *github.PushEvent) *discord.Embed {
	if e == nil || len(e.Commits) == 0 {
		return nil
	}
	l := t.Locale
	branch := strings.TrimPrefix(e.GetRef(), branchRefPrefix)

	shown := e.Commits
	if len(shown) > MaxCommits {
		shown = shown[:MaxCommits]
	}
	lines := make([]string, 0, len(shown))
	for _, c := range shown {
		sha := c.GetID()
		if sha == "" {
			sha = c.GetSHA()
		}
		lines = append(lines, fmt.Sprintf("[`%s`](%s) - %s - *%s*",
			shortSHA(sha), c.GetURL(), firstLine(c.GetMessage()), c.GetAuthor().GetName()))
	}
	description := strings.Join(lines, "\n")
	if rest := len(e.Commits) - MaxCommits; rest > 0 {
		description += "\n" + fmt.Sprintf(l.MoreCommits, rest)
	}

	color := ColorPush
	if e.GetForced() {
		description = l.ForcePush + "\n\n" + description
		color = ColorForcePush
	}

	embed := t.newEmbed(color)
	embed.Title = l.PushTitle(len(e.Commits), branch)
	embed.URL = e.GetCompare()
	embed.Description = description
	embed.Author = t.author(e.GetSender())
	embed.Footer = repoFooter(t.value(e.GetRepo().GetFullName()))
	return embed
}

func (t *Translator) issue(e *github.IssuesEvent) *discord.Embed {
	l := t.Locale
	action := e.GetAction()
	issue := e.GetIssue()
	sender := e.GetSender()

	color, ok := issueColors[action]
	if !ok {
		color = colorUnknownIssueState
	}

	var labels, assignees []string
	if issue != nil {
		for _, label := range issue.Labels {
			if name := label.GetName(); strings.TrimSpace(name) != "" {
				labels = append(labels, name)
			}
		}
		for _, user := range issue.Assignees {
			if login := user.GetLogin(); strings.TrimSpace(login) != "" {
				assignees = append(assignees, login)
			}
		}
	}

	embed := t.newEmbed(color)
	embed.Title = fmt.Sprintf(l.IssueTitle, issue.GetTitle())
	embed.URL = issue.GetHTMLURL()
	embed.Description = t.body(issue.GetBody(), IssueBodyLimit)
	embed.Author = t.author(sender)
	embed.Author.Name = fmt.Sprintf(l.IssueAuthor, t.value(sender.GetLogin()), l.issueAction(action), issue.GetNumber())
	embed.AddField(l.FieldRepository, t.value(e.GetRepo().GetFullName()), true)
	// Backticks must survive the field value limit.
	embed.AddField(l.FieldLabels, "`"+clamp(joinOr(labels, l.None), discord.MaxFieldValueLength-2)+"`", true)
	embed.AddField(l.FieldAssignees, joinOr(assignees, l.None), true)
	embed.Footer = &discord.Footer{
		Text:    fmt.Sprintf(l.IssueFooter, strings.ToUpper(action)),
		IconURL: GitHubIcon,
	}
	return embed
}

func (t *Translator) pullRequest(e *github.PullRequestEvent) *discord.Embed {
	l := t.Locale
	pr := e.GetPullRequest()
	sender := e.GetSender()

	status, color := l.PROpened, ColorPullRequest
	switch e.GetAction() {
	case "reopened":
		status = l.PRReopened
	case "closed":
		if pr.GetMerged() {
			status, color = l.PRMerged, ColorMerged
		} else {
			status, color = l.PRClosedUnmerged, ColorClosedUnmerged
		}
	}

	number := pr.GetNumber()
	if number == 0 {
		number = e.GetNumber()
	}

	embed := t.newEmbed(color)
	embed.Title = fmt.Sprintf(l.PRTitle, pr.GetTitle())
	embed.URL = pr.GetHTMLURL()
	embed.Author = t.author(sender)
	embed.Author.Name = fmt.Sprintf(l.PRAuthor, t.value(sender.GetLogin()), status, number)
	embed.AddField(l.FieldRepository, t.value(e.GetRepo().GetFullName()), true)
	embed.AddField(l.FieldBranches, fmt.Sprintf("`%s` ➡️ `%s`", pr.GetHead().GetRef(), pr.GetBase().GetRef()), false)
	embed.AddField(l.FieldChanges, fmt.Sprintf("➕ %d | ➖ %d | 📄 %d", pr.GetAdditions(), pr.GetDeletions(), pr.GetChangedFiles()), true)
	embed.Footer = &discord.Footer{
		Text:    fmt.Sprintf(l.PRFooter, e.GetRepo().GetName()),
		IconURL: GitHubIcon,
	}
	return embed
}

func (t *Translator) reviewComment(e *github.PullRequestReviewCommentEvent) *discord.Embed {
	l := t.Locale
	comment := e.GetComment()
	sender := e.GetSender()

	embed := t.newEmbed(ColorReviewComment)
	embed.Title = fmt.Sprintf(l.ReviewCommentTitle, e.GetPullRequest().GetNumber())
	embed.URL = comment.GetHTMLURL()
	embed.Description = fmt.Sprintf(l.ReviewCommentBody, t.body(comment.GetBody(), CommentBodyLimit))
	embed.Author = t.author(sender)
	embed.Author.Name = fmt.Sprintf(l.ReviewCommentAuthor, t.value(sender.GetLogin()))
	embed.AddField(l.FieldFile, "`"+t.value(comment.GetPath())+"`", false)
	embed.AddField(l.FieldCode, "```diff\n"+Truncate(comment.GetDiffHunk(), DiffHunkLimit)+"\n```", false)
	embed.Footer = repoFooter(t.value(e.GetRepo().GetFullName()))
	return embed
}

func (t *Translator) issueComment(e *github.IssueCommentEvent) *discord.Embed {
	l := t.Locale
	issue := e.GetIssue()

	context := l.IssueContext
	if issue.GetPullRequestLinks() != nil {
		context = l.PRContext
	}

	embed := t.newEmbed(ColorComment)
	embed.Title = fmt.Sprintf(l.CommentTitle, context, issue.GetNumber())
	embed.URL = e.GetComment().GetHTMLURL()
	embed.Description = t.body(e.GetComment().GetBody(), CommentBodyLimit)
	embed.Author = t.author(e.GetSender())
	embed.Footer = repoFooter(t.value(e.GetRepo().GetFullName()))
	return embed
}

func (t *Translator) review(e *github.PullRequestReviewEvent) *discord.Embed {
	l := t.Locale
	review := e.GetReview()
	pr := e.GetPullRequest()

	title, color := l.ReviewCommented, ColorNeutral
	switch strings.ToLower(review.GetState()) {
	case "approved":
		title, color = l.ReviewApproved, ColorApproved
	case "changes_requested":
		title, color = l.ReviewChangesRequested, ColorChangesRequested
	}

	embed := t.newEmbed(color)
	embed.Title = fmt.Sprintf(title, pr.GetNumber())
	embed.URL = review.GetHTMLURL()
	embed.Description = fmt.Sprintf("**%s**\n\n%s", pr.GetTitle(), t.body(review.GetBody(), CommentBodyLimit))
	embed.Author = t.author(e.GetSender())
	embed.Footer = repoFooter(t.value(e.GetRepo().GetFullName()))
	return embed
}

func (t *Translator) release(e *github.ReleaseEvent) *discord.Embed {
	l := t.Locale
	release := e.GetRelease()

	name := release.GetName()
	if strings.TrimSpace(name) == "" {
		name = release.GetTagName()
	}

	embed := t.newEmbed(ColorRelease)
	embed.Title = fmt.Sprintf(l.ReleaseTitle, release.GetTagName())
	embed.URL = release.GetHTMLURL()
	embed.Description = fmt.Sprintf("**%s**\n\n%s", name, t.body(release.GetBody(), ReleaseBodyLimit))
	embed.Thumbnail = thumbnail(e.GetRepo().GetOwner().GetAvatarURL())
	embed.Author = t.author(e.GetSender())
	embed.Footer = repoFooter(t.value(e.GetRepo().GetFullName()))
	return embed
}

func (t *Translator) star(e *github.WatchEvent) *discord.Embed {
	l := t.Locale
	repo := e.GetRepo()
	sender := e.GetSender()

	embed := t.newEmbed(ColorStar)
	embed.Title = l.StarTitle
	embed.URL = repo.GetHTMLURL()
	embed.Description = fmt.Sprintf(l.StarDescription, t.value(sender.GetLogin()))
	embed.Thumbnail = thumbnail(sender.GetAvatarURL())
	embed.Author = t.author(sender)
	embed.AddField(l.FieldStars, fmt.Sprintf("%d ⭐", repo.GetStargazersCount()), true)
	embed.Footer = repoFooter(t.value(repo.GetFullName()))
	return embed
}

func (t *Translator) ping() *discord.Embed {
	embed := t.newEmbed(ColorPing)
	embed.Title = t.Locale.PingTitle
	embed.Footer = &discord.Footer{Text: "GitHub", IconURL: GitHubIcon}
	return embed
}

// body truncates free text, substituting the placeholder when it is empty.
func (t *Translator) body(s string, limit int) string {
	return orPlaceholder(Truncate(s, limit), t.Locale.NoDescription)
}

// value keeps required embed strings non-empty.
func (t *Translator) value(s string) string {
	return orPlaceholder(s, t.Locale.None)
}
