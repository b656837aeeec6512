package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/subprocess"
	"go.uber.org/zap"
)

// MsgOCRFailed is returned in place of text when the script fails.
const MsgOCRFailed = "OCR processing failed"

// processorBootstrap loads the OCR processor module and prints the cleaned
// text of the file given as argv[1] (argv[2] is "pdf" or "image").
const processorBootstrap = `
import sys
import os
sys.path.append(os.path.join(os.getcwd(), %q))
from ocr_processor import OCRProcessor

file_path = sys.argv[1]
file_type = sys.argv[2]

with open(file_path, 'rb') as f:
    file_bytes = f.read()

processor = OCRProcessor()
result = processor.process_document(file_bytes, file_type)

print(result)
`

// Runner runs a process. Satisfied by *subprocess.Runner.
type Runner interface {
	Run(ctx context.Context, cmd subprocess.Command) (*subprocess.Result, error)
}

// ScriptRunner extracts text by running the OCR processor on a temp copy of the upload.
type ScriptRunner struct {
	runner  Runner
	python  string
	args    func(path, kind string) []string
	tempDir string
	logger  *zap.Logger
}

// NewScriptRunner creates a runner that invokes the Python OCR processor.
func NewScriptRunner(cfg *config.OCRConfig, runner Runner, logger *zap.Logger) *ScriptRunner {
	code := fmt.Sprintf(processorBootstrap, cfg.ModuleDir)
	return &ScriptRunner{
		runner: runner,
		python: cfg.Python,
		args: func(path, kind string) []string {
			return []string{"-c", code, path, kind}
		},
		tempDir: cfg.TempDir,
		logger:  logger.Named("ocr_script"),
	}
}

// NewCommandScriptRunner runs an arbitrary executable as "<name> <path> <kind>".
func NewCommandScriptRunner(name, tempDir string, runner Runner, logger *zap.Logger) *ScriptRunner {
	return &ScriptRunner{
		runner: runner,
		python: name,
		args: func(path, kind string) []string {
			return []string{path, kind}
		},
		tempDir: tempDir,
		logger:  logger.Named("ocr_script"),
	}
}

// Extract writes the upload to a temp file, runs the processor and removes
// the file. Failures are reported in the result, never as an error.
func (s *ScriptRunner) Extract(ctx context.Context, upload Upload) *domain.OCRTextResult {
	path, err := s.writeTemp(upload)
	if err != nil {
		s.logger.Error("failed to write upload", zap.Error(err))
		return &domain.OCRTextResult{Error: MsgOCRFailed}
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warn("could not delete temp file", zap.String("path", path), zap.Error(err))
		}
	}()

	res, err := s.runner.Run(ctx, subprocess.Command{
		Name: s.python,
		Args: s.args(path, upload.FileKind()),
	})
	if err != nil {
		return &domain.OCRTextResult{Error: MsgOCRFailed}
	}

	return &domain.OCRTextResult{CleanedText: strings.TrimSpace(string(res.Stdout))}
}

func (s *ScriptRunner) writeTemp(upload Upload) (string, error) {
	dir := s.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("upload_%d_%s", time.Now().UnixMilli(), filepath.Base(upload.Filename))
	f, err := os.CreateTemp(dir, name+"_*")
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := f.Write(upload.Data); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
