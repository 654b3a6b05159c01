package execution

import (
	"runtime"
	"time"

	"github.com/vigil-dev/vigil/pkg/prompt"
	"github.com/vigil-dev/vigil/pkg/types"
	"github.com/vigil-dev/vigil/pkg/validators"
)

// Options configures one orchestrated run
type Options struct {
	// DisableParallel runs units sequentially in declaration order
	DisableParallel bool

	// DisableCache bypasses the response cache entirely
	DisableCache bool

	// CacheDir overrides the default cache location
	CacheDir string

	// CacheTTL bounds cached entry lifetime; zero uses DefaultCacheTTL
	CacheTTL time.Duration

	// RuleFilter restricts the run to the named rules (name or
	// group::name). Empty runs everything.
	RuleFilter []string

	// ClientFilter restricts conversation rules to sessions from one
	// agent tool
	ClientFilter string

	// MaxWorkers caps concurrent units; zero sizes from the CPU count
	MaxWorkers int

	// UnitTimeout bounds each (rule, bundle) unit; zero disables it
	UnitTimeout time.Duration

	// Overrides adjust validator parameters for this run
	Overrides []types.Override

	// ResourceDirs are scanned for resource definitions, relative to
	// the project root
	ResourceDirs []string

	// Prompt executes model calls for LLM-backed validators; nil makes
	// llm-computation units error
	Prompt prompt.Runner

	// Registry supplies validators; nil uses the core registry
	Registry *validators.Registry
}

// DefaultCacheTTL applies when no TTL is configured
const DefaultCacheTTL = 24 * time.Hour

func (o Options) workers() int {
	if o.DisableParallel {
		return 1
	}
	if o.MaxWorkers > 0 {
		return o.MaxWorkers
	}
	return runtime.NumCPU()
}

func (o Options) cacheTTL() time.Duration {
	if o.CacheTTL > 0 {
		return o.CacheTTL
	}
	return DefaultCacheTTL
}

func (o Options) wantsRule(r types.Rule) bool {
	if len(o.RuleFilter) == 0 {
		return true
	}
	for _, f := range o.RuleFilter {
		if f == r.Name || f == r.ID() {
			return true
		}
	}
	return false
}
