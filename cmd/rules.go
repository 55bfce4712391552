package cmd

import (
	"fmt"

	"github.com/khanhnv2901/seca-pagescan/internal/checker"
	"github.com/khanhnv2901/seca-pagescan/internal/compliance"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List audit rules with their OWASP and CWE classification",
	Example: `  pagescan rules
  pagescan rules --framework iso27001 --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getAppContext(cmd).Config
		framework, _ := cmd.Flags().GetString("framework")

		if err := validateFormat(cfg.Output.Format); err != nil {
			return err
		}
		rules, err := selectRules(framework)
		if err != nil {
			return err
		}
		return writeRules(cmd.OutOrStdout(), cfg.Output.Format, rules)
	},
}

func init() {
	rulesCmd.Flags().String("framework", "", "only rules mapped to this compliance framework")
}

func selectRules(framework string) ([]ruleView, error) {
	if framework != "" && compliance.GetFramework(framework) == nil {
		return nil, fmt.Errorf("framework %q: %w", framework, apperrors.ErrInvalidInput)
	}

	catalog := checker.Catalog()
	out := make([]ruleView, 0, len(catalog))
	for _, rule := range catalog {
		view := ruleView{Rule: rule}
		if framework != "" {
			view.Requirements = compliance.RequirementsFor(rule.ID, framework)
			if len(view.Requirements) == 0 {
				continue
			}
		}
		out = append(out, view)
	}
	return out, nil
}
