package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
)

const (
	modelDir      = "./internal/transformers/models"
	bartModelPath = modelDir + "/facebook_bart.onnx"
)

// LocalSummarizer runs BART through a local ONNX session so summaries
// keep working without an OpenAI key. The session loads once and is
// reused for the process lifetime.
type LocalSummarizer struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

type bartGeneratedResponse struct {
	SummaryText string `json:"summary_text"`
}

func NewLocalSummarizer() (*LocalSummarizer, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	if _, err := os.Stat(bartModelPath); os.IsNotExist(err) {
		slog.Info("[LocalSummarizer] Model not found, downloading...")
		modelPath, err := hugot.DownloadModel("facebook/bart-large-cnn", modelDir, hugot.NewDownloadOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to download BART model: %w", err)
		}
		slog.Info("[LocalSummarizer] Model downloaded successfully", slog.String("path", modelPath))
	} else {
		slog.Info("[LocalSummarizer] Using existing model", slog.String("path", bartModelPath))
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Hugot session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: bartModelPath,
		Name:      "bartSummarizationPipeline",
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("failed to initialize BART pipeline: %w", err)
	}

	return &LocalSummarizer{session: session, pipeline: pipeline}, nil
}

func (s *LocalSummarizer) Close() {
	if s.session != nil {
		s.session.Destroy()
	}
}

func (s *LocalSummarizer) SummarizeText(ctx context.Context, conversationText string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	output, err := s.pipeline.RunPipeline([]string{conversationText})
	if err != nil {
		return "", fmt.Errorf("summarization pipeline failed: %w", err)
	}

	raw := output.GetOutput()
	if len(raw) == 0 {
		return "", fmt.Errorf("summarization pipeline produced no output")
	}
	first, ok := raw[0].(string)
	if !ok {
		return "", fmt.Errorf("unexpected output format from summarization pipeline")
	}

	var summary bartGeneratedResponse
	if err := json.Unmarshal([]byte(first), &summary); err != nil {
		return "", fmt.Errorf("failed to decode summarization output: %w", err)
	}
	if summary.SummaryText == "" {
		return "", fmt.Errorf("summarization pipeline returned an empty summary")
	}
	return summary.SummaryText, nil
}
