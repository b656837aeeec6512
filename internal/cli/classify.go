package cli

import (
	"fmt"
	"strings"

	"github.com/smarthealth/internal/classifier"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newClassifyCmd() *cobra.Command {
	var symptoms []string

	cmd := &cobra.Command{
		Use:   "classify TEXT",
		Short: "Classify free text with the keyword rules",
		Long: `Run free text through the keyword classifier used when the model reply is
not JSON. No model server is contacted.

Examples:
  healthctl classify "persistent cough and high fever, feels severe"
  healthctl classify "sneezing and itchy eyes" -s sneezing -s "itchy eyes" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result := classifier.New(zap.NewNop()).Classify(args[0], symptoms)

			w := cmd.OutOrStdout()
			if done, err := render(w, outputFormat, result); done {
				return err
			}

			printHeader(w, "Classification")
			printField(w, "Condition", result.Condition)
			printField(w, "Probability", fmt.Sprintf("%.0f%%", float64(result.Probability)))
			printField(w, "Severity", severityColor(string(result.Severity)).Sprint(strings.ToUpper(string(result.Severity))))
			printField(w, "When to seek care", result.WhenToSeekCare)
			fmt.Fprintln(w, "  Recommendations:")
			for i, r := range result.Recommendations {
				fmt.Fprintf(w, "    %d. %s\n", i+1, r)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&symptoms, "symptom", "s", nil, "Symptom to attach to the result (repeatable)")
	return cmd
}
