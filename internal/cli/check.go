package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/pkg/config"
	"github.com/vigil-dev/vigil/pkg/conversation"
	"github.com/vigil-dev/vigil/pkg/execution"
	"github.com/vigil-dev/vigil/pkg/rules"
	"github.com/vigil-dev/vigil/pkg/types"
	"github.com/vigil-dev/vigil/pkg/validators"
)

// ErrChecksFailed signals a completed run with at least one failed or
// errored check. The result has already been rendered, so main exits
// non-zero without printing another message.
var ErrChecksFailed = errors.New("one or more checks failed")

func newCheckCmd() *cobra.Command {
	var (
		jsonOut     bool
		ruleRefs    []string
		ruleFilter  []string
		client      string
		noCache     bool
		noParallel  bool
		workers     int
		unitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Run all validation rules against a project",
		Long: `check loads the rule set for the project at path (default: current
directory) and runs every applicable rule. Exit code 0 means all
checks passed, 1 means at least one failed or errored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			abs, err := filepath.Abs(root)
			if err != nil {
				return err
			}

			cfg, err := config.Load(abs)
			if err != nil {
				return err
			}

			registry := validators.NewCoreRegistry()

			refs := ruleRefs
			if refs == nil && len(cfg.RuleRefs) > 0 {
				refs = cfg.RuleRefs
			}
			set, err := rules.Load(abs, rules.LoadOptions{
				Inline:       cfg.RuleDefinitions,
				ExternalRefs: refs,
				Registry:     registry,
				Overrides:    cfg.TypedOverrides(),
			})
			if err != nil {
				return err
			}

			opts := execution.Options{
				DisableParallel: noParallel || !cfg.Execution.Parallel,
				DisableCache:    noCache || !cfg.Cache.Enabled,
				CacheDir:        cfg.Cache.Dir,
				CacheTTL:        cfg.Cache.ParsedTTL(execution.DefaultCacheTTL),
				RuleFilter:      ruleFilter,
				ClientFilter:    client,
				MaxWorkers:      workers,
				UnitTimeout:     cfg.Execution.ParsedUnitTimeout(),
				Overrides:       cfg.TypedOverrides(),
				ResourceDirs:    cfg.Project.ResourceDirs,
				Registry:        registry,
			}
			if unitTimeout > 0 {
				opts.UnitTimeout = unitTimeout
			}
			if workers == 0 && cfg.Execution.MaxWorkers > 0 {
				opts.MaxWorkers = cfg.Execution.MaxWorkers
			}

			var source conversation.Source
			if cfg.Conversation.Dir != "" {
				source = &conversation.DirSource{
					Dir: filepath.Join(abs, filepath.FromSlash(cfg.Conversation.Dir)),
				}
			}

			result, err := execution.Run(cmd.Context(), set, abs, source, opts)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else {
				renderResult(os.Stdout, result)
			}

			if !result.Passed() {
				return ErrChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the full result as JSON")
	cmd.Flags().StringSliceVar(&ruleRefs, "rules", nil,
		"Rule file references (path or URL); excludes the default sources")
	cmd.Flags().StringSliceVar(&ruleFilter, "rule", nil, "Run only the named rules")
	cmd.Flags().StringVar(&client, "client", "", "Restrict conversation rules to one agent tool")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the response cache")
	cmd.Flags().BoolVar(&noParallel, "no-parallel", false, "Run units sequentially")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent unit limit (0 = CPU count)")
	cmd.Flags().DurationVar(&unitTimeout, "unit-timeout", 0, "Per-unit timeout override")

	return cmd
}

func renderResult(w *os.File, result *execution.Result) {
	for _, c := range result.Checks {
		switch c.Status {
		case types.StatusPassed:
			fmt.Fprintf(w, "pass  %s  %s\n", c.RuleID, firstOf(c.Files))
		case types.StatusFailed:
			fmt.Fprintf(w, "FAIL  %s  %s\n", c.RuleID, firstOf(c.Files))
			if c.Finding != nil {
				fmt.Fprintf(w, "      %s\n", c.Finding.ObservedIssue)
				if c.Finding.DraftInstruction != "" {
					fmt.Fprintf(w, "      fix: %s\n", c.Finding.DraftInstruction)
				}
			}
		case types.StatusErrored:
			fmt.Fprintf(w, "ERROR %s  %s\n", c.RuleID, firstOf(c.Files))
			if c.Error != "" {
				fmt.Fprintf(w, "      %s\n", c.Error)
			}
		}
	}

	passed, failed, errored := result.Counts()
	fmt.Fprintf(w, "\n%d passed, %d failed, %d errored in %s\n",
		passed, failed, errored, result.Duration.Round(time.Millisecond))
}

func firstOf(files []string) string {
	if len(files) > 0 {
		return files[0]
	}
	return "-"
}
