package cli

import (
	"context"
	"fmt"

	"github.com/smarthealth/internal/ai"
	"github.com/smarthealth/internal/classifier"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/service"
	"github.com/smarthealth/pkg/sanitizer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newModelCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "model-check",
		Short: "Ping the model server with a one-line prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var client ai.Client
			if cfg.Model.MockMode {
				client = ai.NewMockClient(zap.NewNop())
			} else {
				client = ai.NewOllamaClient(&cfg.Model, nil, zap.NewNop())
			}

			w := cmd.OutOrStdout()
			s := newSpinner(cmd.ErrOrStderr(), "Contacting "+cfg.Model.BaseURL+"...")
			s.Start()
			status, err := checkModel(cmd.Context(), client)
			s.Stop()
			if err != nil {
				return err
			}

			if done, err := render(w, outputFormat, status); done {
				return err
			}
			if !status.Success {
				severityColor("severe").Fprintf(w, "✗ %s\n", status.Message)
				return fmt.Errorf("model check failed: %s", status.Error)
			}
			printSuccess(w, status.Message)
			printField(w, "Model", status.Model)
			printField(w, "Reply", status.Response)
			return nil
		},
	}
}

func checkModel(ctx context.Context, client ai.Client) (*domain.ModelStatus, error) {
	prompts, err := ai.NewDefaultPromptBuilder()
	if err != nil {
		return nil, err
	}
	analyzer := service.NewAnalyzer(
		client,
		prompts,
		ai.NewDefaultValidator(),
		classifier.New(zap.NewNop()),
		sanitizer.New(0),
		nil,
		service.AnalyzerConfig{},
		nil,
		zap.NewNop(),
	)
	return analyzer.CheckModel(ctx), nil
}
