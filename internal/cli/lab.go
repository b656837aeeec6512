package cli

import (
	"fmt"
	"strconv"

	"github.com/smarthealth/internal/labref"
	"github.com/spf13/cobra"
)

func newLabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lab",
		Short: "Look up laboratory reference ranges",
	}
	cmd.AddCommand(newLabListCmd(), newLabGetCmd(), newLabEvalCmd())
	return cmd
}

func newLabListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reference entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := labref.Default()
			if err != nil {
				return err
			}

			var tests []*labref.Test
			if category != "" {
				tests = table.ByCategory(category)
			} else {
				for _, name := range table.Names() {
					if t, ok := table.Lookup(name); ok {
						tests = append(tests, t)
					}
				}
			}

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, tests); done {
				return err
			}
			for _, t := range tests {
				fmt.Fprintf(w, "%-22s %-14s %-16s %s\n", t.Key, t.Category, t.NormalRange, t.Unit)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only list this category (e.g. CBC, LFT)")
	return cmd
}

func newLabGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show one reference entry by name or alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := labref.Default()
			if err != nil {
				return err
			}
			test, ok := table.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown test %q", args[0])
			}

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, test); done {
				return err
			}
			printHeader(w, test.Name)
			printField(w, "Key", test.Key)
			printField(w, "Category", test.Category)
			printField(w, "Normal range", test.NormalRange+" "+test.Unit)
			for gender, r := range test.GenderSpecific {
				printField(w, "Range ("+gender+")", r)
			}
			return nil
		},
	}
}

func newLabEvalCmd() *cobra.Command {
	var gender string

	cmd := &cobra.Command{
		Use:   "eval NAME VALUE",
		Short: "Evaluate a measured value against its reference range",
		Long: `Evaluate a measured value against its reference range.

Examples:
  healthctl lab eval hemoglobin 10.2
  healthctl lab eval hgb 14 --gender male -o yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[1], err)
			}

			table, err := labref.Default()
			if err != nil {
				return err
			}
			ev, err := table.Evaluate(args[0], value, gender)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, ev); done {
				return err
			}
			printHeader(w, ev.TestName)
			printField(w, "Value", fmt.Sprintf("%g %s", ev.Value, ev.Unit))
			printField(w, "Normal range", ev.NormalRange)
			status := ev.Status
			if ev.Critical {
				status += " (critical)"
			}
			printField(w, "Status", statusColor(ev).Sprint(status))
			for _, band := range ev.Bands {
				printField(w, "Band", band)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&gender, "gender", "", "Use the gender-specific range (male, female)")
	return cmd
}
