// Package judge provides AI review of task documents via the Anthropic API.
//
// A judge run is the only network I/O in the tool. It is synchronous,
// bounded by judge.timeout, and leaves its findings in two places: the
// document's Judge section and judge.log next to the document.
package judge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/gatework/tasks/internal/config"
	"github.com/gatework/tasks/internal/taskstore"
	"github.com/gatework/tasks/internal/telemetry"
	"github.com/gatework/tasks/internal/templates"
	"github.com/gatework/tasks/internal/workspace"
)

// LogName is the per-task file that accumulates judge output.
const LogName = "judge.log"

// ModePlan reviews a task before any code is written; ModeImpl reviews a
// completed implementation.
const (
	ModePlan = "plan"
	ModeImpl = "impl"
)

// ErrAPIKeyRequired is returned when ANTHROPIC_API_KEY is not set.
var ErrAPIKeyRequired = errors.New("API key required")

// Result captures one judge run.
type Result struct {
	Findings     string        `json:"findings"`
	Model        string        `json:"model"`
	Mode         string        `json:"mode"`
	InputTokens  int64         `json:"input_tokens"`
	OutputTokens int64         `json:"output_tokens"`
	Elapsed      time.Duration `json:"-"`
}

// Judge wraps the Anthropic client with the configured model and budget.
type Judge struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	timeout   time.Duration
}

// New builds a Judge from config and the environment.
func New() (*Judge, error) {
	key := os.Getenv("ANTHROPIC_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("%w: set the ANTHROPIC_API_KEY environment variable", ErrAPIKeyRequired)
	}

	judgeMetricsOnce.Do(initJudgeMetrics)

	model := config.GetString("judge.model")
	if model == "" {
		model = config.DefaultJudgeModel
	}
	maxTokens := config.GetInt("judge.max-tokens")
	if maxTokens <= 0 {
		maxTokens = config.DefaultJudgeMaxTokens
	}

	return &Judge{
		client:    anthropic.NewClient(option.WithAPIKey(key)),
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		timeout:   config.JudgeTimeout(),
	}, nil
}

// Model returns the configured model identifier.
func (j *Judge) Model() string {
	return string(j.model)
}

// Evaluate reviews the task in the given mode, writes the findings into
// the document's Judge section, and appends them to the task's judge.log.
func (j *Judge) Evaluate(ctx context.Context, store *taskstore.Store, task *taskstore.Task, mode string) (*Result, error) {
	if mode != ModePlan && mode != ModeImpl {
		return nil, fmt.Errorf("unknown judge mode %q (want %s or %s)", mode, ModePlan, ModeImpl)
	}

	doc, err := task.Load()
	if err != nil {
		return nil, err
	}

	relDoc, relErr := filepath.Rel(store.Root(), task.DocPath())
	if relErr != nil {
		relDoc = task.DocPath()
	}

	system := systemContext(store.Root(), relDoc, doc.Content())
	prompt := templates.JudgePrompt(task.ID.String(), mode, false)

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	res, err := j.call(ctx, system, prompt)
	if err != nil {
		return nil, err
	}
	res.Mode = mode
	res.Elapsed = time.Since(start)

	doc.SetJudgeFindings(res.Findings)
	if err := doc.Save(); err != nil {
		return res, fmt.Errorf("saving findings: %w", err)
	}
	if err := appendLog(task.Dir, res); err != nil {
		return res, fmt.Errorf("writing %s: %w", LogName, err)
	}

	return res, nil
}

// systemContext assembles the review context: the mind map (capped) plus
// the full task document, each under a file banner.
func systemContext(root, relDoc, docContent string) string {
	var parts []string
	if mm, ok := workspace.MindMap(root, config.GetInt("mindmap.max-chars")); ok {
		parts = append(parts, fmt.Sprintf("=== %s ===\n%s", workspace.MindMapName, mm))
	}
	parts = append(parts, fmt.Sprintf("=== %s ===\n%s", relDoc, docContent))
	return strings.Join(parts, "\n\n")
}

// judgeMetrics holds lazily-initialized OTel instruments for API calls.
var judgeMetrics struct {
	inputTokens  metric.Int64Counter
	outputTokens metric.Int64Counter
	duration     metric.Float64Histogram
}

var judgeMetricsOnce sync.Once

func initJudgeMetrics() {
	m := telemetry.Meter("github.com/gatework/tasks/judge")
	judgeMetrics.inputTokens, _ = m.Int64Counter("tasks.judge.input_tokens",
		metric.WithDescription("Anthropic API input tokens consumed"),
		metric.WithUnit("{token}"),
	)
	judgeMetrics.outputTokens, _ = m.Int64Counter("tasks.judge.output_tokens",
		metric.WithDescription("Anthropic API output tokens generated"),
		metric.WithUnit("{token}"),
	)
	judgeMetrics.duration, _ = m.Float64Histogram("tasks.judge.request.duration",
		metric.WithDescription("Anthropic API request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
}

func (j *Judge) call(ctx context.Context, system, prompt string) (*Result, error) {
	tracer := telemetry.Tracer("github.com/gatework/tasks/judge")
	ctx, span := tracer.Start(ctx, "anthropic.messages.new")
	defer span.End()
	span.SetAttributes(attribute.String("tasks.judge.model", string(j.model)))

	params := anthropic.MessageNewParams{
		Model:     j.model,
		MaxTokens: j.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	var res *Result
	op := func() error {
		t0 := time.Now()
		message, err := j.client.Messages.New(ctx, params)
		ms := float64(time.Since(t0).Milliseconds())

		if err != nil {
			if !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		modelAttr := attribute.String("tasks.judge.model", string(j.model))
		if judgeMetrics.inputTokens != nil {
			judgeMetrics.inputTokens.Add(ctx, message.Usage.InputTokens, metric.WithAttributes(modelAttr))
			judgeMetrics.outputTokens.Add(ctx, message.Usage.OutputTokens, metric.WithAttributes(modelAttr))
			judgeMetrics.duration.Record(ctx, ms, metric.WithAttributes(modelAttr))
		}
		span.SetAttributes(
			attribute.Int64("tasks.judge.input_tokens", message.Usage.InputTokens),
			attribute.Int64("tasks.judge.output_tokens", message.Usage.OutputTokens),
		)

		if len(message.Content) == 0 {
			return backoff.Permanent(errors.New("unexpected response format: no content blocks"))
		}
		content := message.Content[0]
		if content.Type != "text" {
			return backoff.Permanent(fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type))
		}

		res = &Result{
			Findings:     content.Text,
			Model:        string(j.model),
			InputTokens:  message.Usage.InputTokens,
			OutputTokens: message.Usage.OutputTokens,
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = j.timeout
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("judge call failed: %w", err)
	}
	return res, nil
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}

	return false
}

// appendLog appends one timestamped entry to the task's judge.log.
func appendLog(taskDir string, res *Result) error {
	f, err := os.OpenFile(filepath.Join(taskDir, LogName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	entry := fmt.Sprintf("=== %s UTC mode=%s model=%s ===\n%s\n\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"), res.Mode, res.Model,
		strings.TrimRight(res.Findings, "\n"))
	_, err = f.WriteString(entry)
	return err
}
