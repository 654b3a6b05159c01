package rules

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vigil-dev/vigil/pkg/errors"
	"github.com/vigil-dev/vigil/pkg/logging"
	"github.com/vigil-dev/vigil/pkg/params"
	"github.com/vigil-dev/vigil/pkg/types"
	"github.com/vigil-dev/vigil/pkg/validators"
)

// ProjectRulesFile is the default project-local rules file, relative to
// the project root
const ProjectRulesFile = ".vigil/rules.yaml"

// defaultFetchTimeout bounds remote rule fetches
const defaultFetchTimeout = 30 * time.Second

// LoadOptions configures rule loading.
//
// A non-nil ExternalRefs switches the loader into isolation mode: only
// the referenced files are loaded and the default sources (inline
// definitions and the project rules file) are excluded entirely.
type LoadOptions struct {
	// Inline are rule definitions embedded in the project config,
	// lowest priority
	Inline []Definition

	// ExternalRefs are local paths or http(s) URLs of rules files
	ExternalRefs []string

	// FetchTimeout bounds each remote fetch; zero uses the default
	FetchTimeout time.Duration

	// Registry validates each phase at load time when set
	Registry *validators.Registry

	// Overrides are validated alongside the rules so malformed override
	// files abort before any rule runs
	Overrides []types.Override
}

// RuleSet is an ordered, merged collection of rules
type RuleSet struct {
	Rules []types.Rule

	byID map[string]int
}

// Get returns the rule with the given ID
func (rs *RuleSet) Get(id string) (types.Rule, bool) {
	i, ok := rs.byID[id]
	if !ok {
		return types.Rule{}, false
	}
	return rs.Rules[i], true
}

// Len returns the number of rules in the set
func (rs *RuleSet) Len() int { return len(rs.Rules) }

// merge adds rules, replacing any same-ID rule wholesale while keeping
// its original position
func (rs *RuleSet) merge(rules []types.Rule) {
	if rs.byID == nil {
		rs.byID = make(map[string]int)
	}
	for _, r := range rules {
		if i, ok := rs.byID[r.ID()]; ok {
			rs.Rules[i] = r
			continue
		}
		rs.byID[r.ID()] = len(rs.Rules)
		rs.Rules = append(rs.Rules, r)
	}
}

// ruleFile is the shape of a YAML rules file
type ruleFile struct {
	Rules []Definition `yaml:"rules"`
}

// Load assembles the rule set for a project root.
//
// Default sources in ascending priority: opts.Inline, then the project
// rules file. When opts.ExternalRefs is non-nil only the referenced
// files are loaded, in the order given, later references winning.
func Load(root string, opts LoadOptions) (*RuleSet, error) {
	logger := logging.GetLogger("rules")
	set := &RuleSet{}

	if opts.ExternalRefs != nil {
		for _, ref := range opts.ExternalRefs {
			rules, err := loadRef(root, ref, opts.FetchTimeout)
			if err != nil {
				return nil, err
			}
			set.merge(rules)
		}
		logger.Debug().Int("rules", set.Len()).Int("refs", len(opts.ExternalRefs)).
			Msg("loaded rule set in isolation mode")
	} else {
		inline := make([]types.Rule, 0, len(opts.Inline))
		for _, def := range opts.Inline {
			r, err := def.ToRule("config")
			if err != nil {
				return nil, err
			}
			inline = append(inline, r)
		}
		set.merge(inline)

		path := filepath.Join(root, filepath.FromSlash(ProjectRulesFile))
		if _, err := os.Stat(path); err == nil {
			rules, err := loadFile(path)
			if err != nil {
				return nil, err
			}
			set.merge(rules)
		}
		logger.Debug().Int("rules", set.Len()).Msg("loaded rule set")
	}

	if err := validate(set, opts); err != nil {
		return nil, err
	}
	return set, nil
}

// validate performs all load-time checks so configuration problems
// abort before any rule runs
func validate(set *RuleSet, opts LoadOptions) error {
	if opts.Registry != nil {
		for _, r := range set.Rules {
			for _, phase := range r.Phases {
				if err := opts.Registry.ValidatePhase(phase); err != nil {
					return errors.Wrapf(err, errors.ErrRuleInvalid,
						"rule %q", r.ID())
				}
			}
		}
	}

	if len(opts.Overrides) > 0 {
		if _, err := params.NewResolver(opts.Overrides); err != nil {
			return err
		}
	}
	return nil
}

// loadRef loads one external reference, remote or local
func loadRef(root, ref string, timeout time.Duration) ([]types.Rule, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return fetchRemote(ref, timeout)
	}

	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, filepath.FromSlash(ref))
	}
	return loadFile(path)
}

func loadFile(path string) ([]types.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleLoad,
			"reading rules file %s", path)
	}
	return parse(data, path)
}

func fetchRemote(url string, timeout time.Duration) ([]types.Rule, error) {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(url)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleFetch,
			"fetching rules from %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrRuleFetch,
			"fetching rules from %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleFetch,
			"reading rules body from %s", url)
	}
	return parse(data, url)
}

func parse(data []byte, source string) ([]types.Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleParse,
			"parsing rules from %s", source)
	}

	rules := make([]types.Rule, 0, len(f.Rules))
	for _, def := range f.Rules {
		r, err := def.ToRule(source)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}
