package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vigil-dev/vigil/pkg/config"
	"github.com/vigil-dev/vigil/pkg/rules"
	"github.com/vigil-dev/vigil/pkg/validators"
)

func newRulesCmd() *cobra.Command {
	var (
		jsonOut  bool
		ruleRefs []string
	)

	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the merged rule set for a project",
		Args:  cobra.MaximumNArgs(1),
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

			refs := ruleRefs
			if refs == nil && len(cfg.RuleRefs) > 0 {
				refs = cfg.RuleRefs
			}
			set, err := rules.Load(abs, rules.LoadOptions{
				Inline:       cfg.RuleDefinitions,
				ExternalRefs: refs,
				Registry:     validators.NewCoreRegistry(),
				Overrides:    cfg.TypedOverrides(),
			})
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(set.Rules)
			}

			for _, r := range set.Rules {
				fmt.Printf("%-40s %-20s %d phase(s)  %s\n",
					r.ID(), r.Scope, len(r.Phases), r.Source)
			}
			fmt.Printf("\n%d rule(s)\n", set.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the rule set as JSON")
	cmd.Flags().StringSliceVar(&ruleRefs, "rules", nil,
		"Rule file references (path or URL); excludes the default sources")

	return cmd
}
