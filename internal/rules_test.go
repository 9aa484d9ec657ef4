package internal

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func mustEvent(t *testing.T, name, payload string) Event {
	t.Helper()
	event, err := NewEvent("github", name, "", []byte(payload))
	if err != nil {
		t.Fatalf("new event: %v", err)
	}
	return event
}

func mustEngine(t *testing.T, filters ...Filter) *FilterEngine {
	t.Helper()
	engine, err := NewFilterEngine(filters, log.New(&bytes.Buffer{}, "", 0))
	if err != nil {
		t.Fatalf("new filter engine: %v", err)
	}
	return engine
}

// TestFilterEngineMatch tests that a simple expression mutes a matching event.
func TestFilterEngineMatch(t *testing.T) {
	engine := mustEngine(t,
		Filter{When: `action == "closed" && pull_request.merged == false`},
	)

	if _, muted := engine.Match(mustEvent(t, "pull_request", `{"action":"closed","pull_request":{"merged":false}}`)); !muted {
		t.Fatalf("expected closed unmerged pull request to be muted")
	}
	if _, muted := engine.Match(mustEvent(t, "pull_request", `{"action":"closed","pull_request":{"merged":true}}`)); muted {
		t.Fatalf("expected merged pull request to pass")
	}
}

// TestFilterEngineMissingField tests that an expression over a missing field never mutes.
func TestFilterEngineMissingField(t *testing.T) {
	var logs bytes.Buffer
	engine, err := NewFilterEngine([]Filter{{When: "missing == true"}}, log.New(&logs, "", 0))
	if err != nil {
		t.Fatalf("new filter engine: %v", err)
	}

	if _, muted := engine.Match(mustEvent(t, "push", `{}`)); muted {
		t.Fatalf("expected no match")
	}
	if !strings.Contains(logs.String(), "eval failed") {
		t.Fatalf("expected eval failure to be logged, got %q", logs.String())
	}
}

// TestFilterEngineEvents tests that a filter only applies to its listed kinds.
func TestFilterEngineEvents(t *testing.T) {
	engine := mustEngine(t, Filter{When: `[sender.login] == "dependabot[bot]"`, Events: []string{"push"}})
	payload := `{"sender":{"login":"dependabot[bot]"}}`

	if _, muted := engine.Match(mustEvent(t, "push", payload)); !muted {
		t.Fatalf("expected push from bot to be muted")
	}
	if _, muted := engine.Match(mustEvent(t, "issues", payload)); muted {
		t.Fatalf("expected issues to be unaffected")
	}
}

// TestFilterEngineJSONPath tests JSONPath tokens resolved against the raw payload.
func TestFilterEngineJSONPath(t *testing.T) {
	tests := []struct {
		name    string
		when    string
		payload string
		muted   bool
	}{
		{name: "dot", when: "$.pull_request.draft == true", payload: `{"pull_request":{"draft":true}}`, muted: true},
		{name: "index", when: "$.commits[0].distinct == false", payload: `{"commits":[{"distinct":false},{"distinct":true}]}`, muted: true},
		{name: "wildcard", when: `contains($.issue.labels[*].name, "wontfix")`, payload: `{"issue":{"labels":[{"name":"bug"},{"name":"wontfix"}]}}`, muted: true},
		{name: "missing path", when: "$.pull_request.draft == true", payload: `{}`, muted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mustEngine(t, Filter{When: tt.when})
			if _, muted := engine.Match(mustEvent(t, "pull_request", tt.payload)); muted != tt.muted {
				t.Fatalf("expected muted=%v", tt.muted)
			}
		})
	}
}

// TestFilterEngineBarePaths tests dotted and indexed identifiers without brackets.
func TestFilterEngineBarePaths(t *testing.T) {
	engine := mustEngine(t,
		Filter{When: `action == "opened" && pull_request.draft == true`},
		Filter{When: `commits[0].message == "wip"`},
	)

	if _, muted := engine.Match(mustEvent(t, "pull_request", `{"action":"opened","pull_request":{"draft":true}}`)); !muted {
		t.Fatalf("expected draft pull request to be muted")
	}
	if when, muted := engine.Match(mustEvent(t, "push", `{"commits":[{"message":"wip"}]}`)); !muted || when != `commits[0].message == "wip"` {
		t.Fatalf("expected wip push to be muted by the second filter, got %q", when)
	}
}

// TestFilterEngineQuotedPaths tests that string literals are never rewritten.
func TestFilterEngineQuotedPaths(t *testing.T) {
	engine := mustEngine(t, Filter{When: `ref == "refs/heads/release.v1"`})
	if _, muted := engine.Match(mustEvent(t, "push", `{"ref":"refs/heads/release.v1"}`)); !muted {
		t.Fatalf("expected literal with dots to match")
	}
}

// TestFilterEngineFunctions tests contains and like over strings and lists of any length.
func TestFilterEngineFunctions(t *testing.T) {
	tests := []struct {
		name    string
		when    string
		kind    string
		payload string
		muted   bool
	}{
		{name: "list with several items", when: `contains(labels, "bug")`, kind: "issues", payload: `{"labels":["bug","ui"]}`, muted: true},
		{name: "list missing item", when: `contains(labels, "bug")`, kind: "issues", payload: `{"labels":["docs","ui"]}`, muted: false},
		{name: "single item list", when: `contains(labels, "bug")`, kind: "issues", payload: `{"labels":["bug"]}`, muted: true},
		{name: "single item list is not a substring match", when: `contains(labels, "bug")`, kind: "issues", payload: `{"labels":["bug-fix"]}`, muted: false},
		{name: "empty list", when: `contains(labels, "bug")`, kind: "issues", payload: `{"labels":[]}`, muted: false},
		{name: "string", when: `contains(ref, "dependabot")`, kind: "push", payload: `{"ref":"refs/heads/dependabot/npm"}`, muted: true},
		{name: "list combined with comparison", when: `contains(labels, "ui") && action == "opened"`, kind: "issues", payload: `{"action":"opened","labels":["bug","ui"]}`, muted: true},
		{name: "jsonpath wildcard", when: `contains($.issue.labels[*].name, "ui")`, kind: "issues", payload: `{"issue":{"labels":[{"name":"bug"},{"name":"ui"}]}}`, muted: true},
		{name: "jsonpath wildcard single label", when: `contains($.issue.labels[*].name, "bug")`, kind: "issues", payload: `{"issue":{"labels":[{"name":"bug-fix"}]}}`, muted: false},
		{name: "like", when: `like(ref, "refs/heads/dependabot/%")`, kind: "push", payload: `{"ref":"refs/heads/dependabot/npm/lodash"}`, muted: true},
		{name: "like miss", when: `like(ref, "refs/heads/dependabot/%")`, kind: "push", payload: `{"ref":"refs/heads/main"}`, muted: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := mustEngine(t, Filter{When: tt.when})
			if _, muted := engine.Match(mustEvent(t, tt.kind, tt.payload)); muted != tt.muted {
				t.Fatalf("expected muted=%v for %s", tt.muted, tt.payload)
			}
		})
	}
}

// TestFilterEngineLeavesEventData tests that evaluation does not change the event's lists.
func TestFilterEngineLeavesEventData(t *testing.T) {
	engine := mustEngine(t, Filter{When: `contains(labels, "bug")`})
	event := mustEvent(t, "issues", `{"labels":["bug","ui"]}`)

	if _, muted := engine.Match(event); !muted {
		t.Fatalf("expected contains to match")
	}
	if _, ok := event.Data["labels"].([]interface{}); !ok {
		t.Fatalf("expected labels to stay a plain list, got %T", event.Data["labels"])
	}
}

func TestFilterEngineInvalidExpression(t *testing.T) {
	if _, err := NewFilterEngine([]Filter{{When: "action == "}}, nil); err == nil {
		t.Fatalf("expected compile error")
	}
}

func TestNilFilterEngine(t *testing.T) {
	var engine *FilterEngine
	if _, muted := engine.Match(Event{Name: "push"}); muted {
		t.Fatalf("expected nil engine to mute nothing")
	}
}

func TestRewriteExpression(t *testing.T) {
	got, refs := rewriteExpression(`[sender.login] == "a.b" && repository.name == 'x.y' && $.a[0].b`)
	want := `[sender.login] == "a.b" && ref__0 == 'x.y' && ref__1`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if len(refs) != 2 || refs[0].path != "repository.name" || refs[1].path != "$.a[0].b" || !refs[1].jsonPath {
		t.Fatalf("unexpected refs %+v", refs)
	}
}
