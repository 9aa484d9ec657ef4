package internal

import (
	"fmt"
	"log"
	"reflect"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/PaesslerAG/jsonpath"
)

// Filter mutes events matching When. An empty Events list applies to every
// event kind.
type Filter struct {
	When   string   `yaml:"when"`
	Events []string `yaml:"events"`
}

type compiledFilter struct {
	when   string
	events map[string]struct{}
	expr   *govaluate.EvaluableExpression
	refs   []paramRef
}

// paramRef binds a generated parameter name to a payload path.
type paramRef struct {
	name     string
	path     string
	jsonPath bool
}

// FilterEngine decides which notable events are muted.
type FilterEngine struct {
	filters []compiledFilter
	logger  *log.Logger
}

// pathPattern finds payload references in the unquoted parts of an
// expression: bracketed names (left untouched), JSONPath tokens, and dotted
// or indexed identifiers.
var pathPattern = regexp.MustCompile(`\[[^\]]*\]|\$(?:\.[A-Za-z_][A-Za-z0-9_-]*|\[\d+\]|\[\*\])+|[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*|\[\d+\])+`)

var filterFunctions = map[string]govaluate.ExpressionFunction{
	"contains": containsFunc,
	"like":     likeFunc,
}

func NewFilterEngine(filters []Filter, logger *log.Logger) (*FilterEngine, error) {
	if logger == nil {
		logger = log.Default()
	}
	compiled := make([]compiledFilter, 0, len(filters))
	for i, filter := range filters {
		rewritten, refs := rewriteExpression(filter.When)
		expr, err := govaluate.NewEvaluableExpressionWithFunctions(rewritten, filterFunctions)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		var events map[string]struct{}
		if len(filter.Events) > 0 {
			events = make(map[string]struct{}, len(filter.Events))
			for _, name := range filter.Events {
				events[name] = struct{}{}
			}
		}
		compiled = append(compiled, compiledFilter{
			when:   filter.When,
			events: events,
			expr:   expr,
			refs:   refs,
		})
	}
	return &FilterEngine{filters: compiled, logger: logger}, nil
}

// Match reports whether any filter mutes event, and which one.
func (f *FilterEngine) Match(event Event) (string, bool) {
	if f == nil {
		return "", false
	}
	return f.MatchWithLogger(event, f.logger)
}

// MatchWithLogger is Match with evaluation failures logged to logger.
func (f *FilterEngine) MatchWithLogger(event Event, logger *log.Logger) (string, bool) {
	if f == nil || len(f.filters) == 0 {
		return "", false
	}
	if logger == nil {
		logger = f.logger
	}
	for _, filter := range f.filters {
		if filter.events != nil {
			if _, ok := filter.events[event.Name]; !ok {
				continue
			}
		}
		params := filterParams{data: event.Data, refs: resolveRefs(filter.refs, event)}
		result, err := filter.expr.Eval(params)
		if err != nil {
			logger.Printf("filter %q eval failed: %v", filter.when, err)
			continue
		}
		if ok, _ := result.(bool); ok {
			return filter.when, true
		}
	}
	return "", false
}

// rewriteExpression replaces payload references outside string literals with
// generated parameter names govaluate can parse.
func rewriteExpression(expr string) (string, []paramRef) {
	expr = strings.TrimSpace(expr)
	var b strings.Builder
	var refs []paramRef
	replace := func(segment string) string {
		return pathPattern.ReplaceAllStringFunc(segment, func(match string) string {
			if strings.HasPrefix(match, "[") {
				return match
			}
			ref := paramRef{
				name:     fmt.Sprintf("ref__%d", len(refs)),
				path:     match,
				jsonPath: strings.HasPrefix(match, "$"),
			}
			refs = append(refs, ref)
			return ref.name
		})
	}

	rest := expr
	for rest != "" {
		q := strings.IndexAny(rest, "\"'`")
		if q < 0 {
			b.WriteString(replace(rest))
			break
		}
		b.WriteString(replace(rest[:q]))
		end := strings.IndexByte(rest[q+1:], rest[q])
		if end < 0 {
			b.WriteString(rest[q:])
			break
		}
		end += q + 1
		b.WriteString(rest[q : end+1])
		rest = rest[end+1:]
	}
	return b.String(), refs
}

func resolveRefs(refs []paramRef, event Event) map[string]interface{} {
	if len(refs) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(refs))
	for _, ref := range refs {
		if ref.jsonPath {
			if event.RawObject == nil {
				continue
			}
			value, err := jsonpath.Get(ref.path, event.RawObject)
			if err != nil {
				continue
			}
			values[ref.name] = asParam(value)
			continue
		}
		if value, ok := event.Data[ref.path]; ok {
			values[ref.name] = asParam(value)
		}
	}
	return values
}

// listValue hides a list from govaluate, which spreads []interface{}
// arguments into separate function parameters.
type listValue []interface{}

func asParam(value interface{}) interface{} {
	if list, ok := value.([]interface{}); ok {
		return listValue(list)
	}
	return value
}

type filterParams struct {
	data map[string]interface{}
	refs map[string]interface{}
}

func (p filterParams) Get(name string) (interface{}, error) {
	if value, ok := p.refs[name]; ok {
		return value, nil
	}
	if value, ok := p.data[name]; ok {
		return asParam(value), nil
	}
	return nil, fmt.Errorf("no parameter %q found", name)
}

func containsFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("contains expects 2 arguments, got %d", len(args))
	}
	switch haystack := args[0].(type) {
	case nil:
		return false, nil
	case string:
		return strings.Contains(haystack, fmt.Sprint(args[1])), nil
	case listValue:
		for _, item := range haystack {
			if reflect.DeepEqual(item, args[1]) {
				return true, nil
			}
		}
		return false, nil
	default:
		return nil, fmt.Errorf("contains: unsupported type %T", args[0])
	}
}

// likeFunc matches SQL LIKE patterns: % is any run, _ is one character.
func likeFunc(args ...interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("like expects 2 arguments, got %d", len(args))
	}
	value, ok := args[0].(string)
	if !ok {
		return false, nil
	}
	pattern, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("like: pattern must be a string")
	}
	var b strings.Builder
	b.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, err
	}
	return re.MatchString(value), nil
}
