// Package predictor calls the disease-prediction script.
package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/subprocess"
	"go.uber.org/zap"
)

// Envelope messages.
const (
	MsgFailed      = "Prediction failed"
	MsgParseFailed = "Failed to parse prediction results"
	MsgTimeout     = "Prediction timed out. Please try again."
)

// Runner runs a process. Satisfied by *subprocess.Runner.
type Runner interface {
	Run(ctx context.Context, cmd subprocess.Command) (*subprocess.Result, error)
}

// Predictor writes symptoms as JSON to the script's stdin and decodes the
// JSON array it prints.
type Predictor struct {
	runner Runner
	python string
	script string
	dir    string
	logger *zap.Logger
}

// New creates a predictor from configuration.
func New(cfg *config.PredictorConfig, runner Runner, logger *zap.Logger) *Predictor {
	return &Predictor{
		runner: runner,
		python: cfg.Python,
		script: cfg.Script,
		dir:    cfg.WorkDir,
		logger: logger.Named("predictor"),
	}
}

// Predict runs the script. Script failures are reported in the envelope;
// the returned error is only set for encoding failures.
func (p *Predictor) Predict(ctx context.Context, symptoms []string) (*domain.PredictionEnvelope, error) {
	input, err := json.Marshal(symptoms)
	if err != nil {
		return nil, domain.WrapError("marshal_symptoms", err, domain.KindInternal)
	}

	res, err := p.runner.Run(ctx, subprocess.Command{
		Name:  p.python,
		Args:  []string{p.script},
		Dir:   p.dir,
		Stdin: input,
	})
	if err != nil {
		return failure(err), nil
	}

	var predictions []domain.AnalysisResult
	if err := json.Unmarshal(res.Stdout, &predictions); err != nil {
		p.logger.Warn("prediction output is not a JSON array",
			zap.Error(err),
			zap.Int("stdout_bytes", len(res.Stdout)),
		)
		return &domain.PredictionEnvelope{
			Success: false,
			Error:   MsgParseFailed,
			Details: string(res.Stdout),
		}, nil
	}

	p.logger.Debug("prediction completed", zap.Int("predictions", len(predictions)))

	return &domain.PredictionEnvelope{Success: true, Predictions: predictions}, nil
}

func failure(err error) *domain.PredictionEnvelope {
	if domain.IsTimeout(err) {
		return &domain.PredictionEnvelope{Success: false, Error: MsgTimeout}
	}

	var pe *domain.ProcessError
	if errors.As(err, &pe) {
		return &domain.PredictionEnvelope{Success: false, Error: MsgFailed, Details: pe.Stderr}
	}

	return &domain.PredictionEnvelope{
		Success: false,
		Error:   MsgFailed,
		Details: strings.TrimSpace(fmt.Sprint(err)),
	}
}
