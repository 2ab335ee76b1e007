package run

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"

	"github.com/onsi/gomega"
	"github.com/toejough/imprecord"
	"github.com/toejough/imprecord/match"
	"gopkg.in/yaml.v3"
)

// Recorded is one expectation in a scenario: the call to record plus what to declare
// about it.
type Recorded struct {
	Step `yaml:",inline"`

	// Matchers replace equality per argument: "" or "=" (equal), "any", "prefix:<s>",
	// "regexp:<re>", "type:<name>".
	Matchers   []string `yaml:"matchers"`
	OnInstance string   `yaml:"onInstance"`
	Results    []any    `yaml:"results"`
	Panic      any      `yaml:"panic"`
	Times      *int     `yaml:"times"`
	Min        *int     `yaml:"min"`
	Max        *int     `yaml:"max"`
	Message    string   `yaml:"message"`
	NonStrict  bool     `yaml:"nonStrict"`
}

// Scenario is a scripted test: expectations to record, then calls to replay.
type Scenario struct {
	NonStrict  bool       `yaml:"nonStrict"`
	Iterations int        `yaml:"iterations"`
	Record     []Recorded `yaml:"record"`
	Replay     []Step     `yaml:"replay"`
}

// Step is one call on a mocked member. Target names the mock instance; calls with no
// target are package-level.
type Step struct {
	Target  string `yaml:"target"`
	Class   string `yaml:"class"`
	Member  string `yaml:"member"`
	Args    []any  `yaml:"args"`
	Returns string `yaml:"returns"`
}

// String renders the step for output.
func (s Step) String() string {
	args := make([]string, len(s.Args))
	for i, value := range s.Args {
		args[i] = fmt.Sprintf("%#v", value)
	}

	rendered := fmt.Sprintf("%s.%s(%s)", s.Class, s.Member, strings.Join(args, ", "))
	if s.Target != "" {
		rendered += " on " + s.Target
	}

	return rendered
}

// call builds the engine call for the step, resolving its target among instances.
func (s Step) call(instances *instances) imprecord.Call {
	call := imprecord.Call{
		ClassDesc:   s.Class,
		NameAndDesc: s.Member,
		Args:        s.Args,
		ReturnType:  returnTypes[s.Returns],
	}

	if s.Target == "" {
		call.Access = imprecord.AccessStatic
	} else {
		call.Target = instances.get(s.Target)
	}

	return call
}

func (s Step) validate() error {
	if s.Member == "" {
		return errMissingMember
	}

	if _, ok := returnTypes[s.Returns]; !ok {
		return fmt.Errorf("%w: %q", errUnknownReturnType, s.Returns)
	}

	return nil
}

// LoadScenario parses a YAML scenario. Unknown fields are rejected.
func LoadScenario(r io.Reader) (Scenario, error) {
	var scenario Scenario

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	err := decoder.Decode(&scenario)
	if errors.Is(err, io.EOF) {
		return Scenario{}, errEmptyScenario
	}

	if err != nil {
		return Scenario{}, fmt.Errorf("failed to parse scenario: %w", err)
	}

	err = scenario.validate()
	if err != nil {
		return Scenario{}, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

func (s Scenario) validate() error {
	for i, entry := range s.Record {
		err := entry.validate()
		if err != nil {
			return fmt.Errorf("record[%d]: %w", i, err)
		}

		for j, spec := range entry.Matchers {
			_, err := parseMatcher(spec)
			if err != nil {
				return fmt.Errorf("record[%d].matchers[%d]: %w", i, j, err)
			}
		}
	}

	for i, step := range s.Replay {
		err := step.validate()
		if err != nil {
			return fmt.Errorf("replay[%d]: %w", i, err)
		}
	}

	return nil
}

// matchers returns the entry's parsed matchers, nil where equality applies. Specs are
// checked when the scenario loads.
func (r Recorded) matchers() []any {
	parsed := make([]any, len(r.Matchers))

	for i, spec := range r.Matchers {
		matcher, _ := parseMatcher(spec)
		if matcher != nil {
			parsed[i] = matcher
		}
	}

	return parsed
}

// declare applies the entry's results, limits and message to the invocation just recorded.
func declare(rec *imprecord.Recorder, entry Recorded) {
	if len(entry.Results) > 0 {
		rec.Returns(entry.Results[0], entry.Results[1:]...)
	}

	if entry.Panic != nil {
		rec.Result(imprecord.Panic{Value: entry.Panic})
	}

	switch {
	case entry.Times != nil:
		rec.Times(*entry.Times)
	case entry.Min != nil || entry.Max != nil:
		rec.Limits(valueOr(entry.Min, 0), valueOr(entry.Max, imprecord.Unbounded))
	}

	if entry.Message != "" {
		rec.Message("%s", entry.Message)
	}
}

// recordGroup is a run of consecutive entries recorded in one expectations block.
type recordGroup struct {
	nonStrict bool
	entries   []Recorded
}

// groupByStrictness splits entries into consecutive runs of equal strictness,
// keeping declaration order.
func groupByStrictness(entries []Recorded) []recordGroup {
	var groups []recordGroup

	for _, entry := range entries {
		last := len(groups) - 1
		if last >= 0 && groups[last].nonStrict == entry.NonStrict {
			groups[last].entries = append(groups[last].entries, entry)

			continue
		}

		groups = append(groups, recordGroup{nonStrict: entry.NonStrict, entries: []Recorded{entry}})
	}

	return groups
}

// instance stands in for a named mock object.
type instance struct {
	name string
}

// instances hands out one instance per target name.
type instances struct {
	byName map[string]*instance
}

func newInstances() *instances {
	return &instances{byName: make(map[string]*instance)}
}

func (i *instances) get(name string) *instance {
	found, ok := i.byName[name]
	if !ok {
		found = &instance{name: name}
		i.byName[name] = found
	}

	return found
}

// parseMatcher turns a matcher spec into a matcher, or nil for equality.
func parseMatcher(spec string) (imprecord.Matcher, error) {
	kind, operand, _ := strings.Cut(spec, ":")

	switch kind {
	case "", "=":
		return nil, nil //nolint:nilnil // nil matcher selects equality
	case "any":
		return match.BeAny, nil
	case "prefix":
		return gomega.HavePrefix(operand), nil
	case "regexp":
		_, err := regexp.Compile(operand)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errUnknownMatcher, err)
		}

		return gomega.MatchRegexp(operand), nil
	case "type":
		matcher, ok := typeMatchers[operand]
		if !ok {
			return nil, fmt.Errorf("%w: type %q", errUnknownMatcher, operand)
		}

		return matcher, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownMatcher, spec)
	}
}

func valueOr(value *int, fallback int) int {
	if value == nil {
		return fallback
	}

	return *value
}

// unexported variables.
var (
	errEmptyScenario     = errors.New("empty scenario")
	errMissingMember     = errors.New("member is required")
	errUnknownMatcher    = errors.New("unknown matcher")
	errUnknownReturnType = errors.New("unknown return type")
	//nolint:gochecknoglobals // lookup table
	returnTypes = map[string]reflect.Type{
		"":        nil,
		"any":     reflect.TypeFor[any](),
		"bool":    reflect.TypeFor[bool](),
		"error":   reflect.TypeFor[error](),
		"float64": reflect.TypeFor[float64](),
		"int":     reflect.TypeFor[int](),
		"string":  reflect.TypeFor[string](),
	}
	//nolint:gochecknoglobals // lookup table
	typeMatchers = map[string]imprecord.Matcher{
		"bool":    match.BeInstanceOf[bool](),
		"float64": match.BeInstanceOf[float64](),
		"int":     match.BeInstanceOf[int](),
		"map":     match.BeInstanceOf[map[string]any](),
		"list":    match.BeInstanceOf[[]any](),
		"string":  match.BeInstanceOf[string](),
	}
)
