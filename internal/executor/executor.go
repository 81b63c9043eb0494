// Package executor performs one scripted action against a screen capture:
// locate the element's reference image, then click it or type into it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strconv"
	"time"

	"github.com/mj1618/visual-runner/internal/model"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/mj1618/visual-runner/internal/reference"
	"go.uber.org/zap"
)

// References resolves element ids to grayscale reference images.
type References interface {
	Get(id string) (*image.Gray, error)
}

// Matcher locates a reference image on a screen capture.
type Matcher interface {
	Locate(ctx context.Context, screen image.Image, ref *image.Gray, threshold float64) (model.MatchResult, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the fixed parameters of every action.
type Config struct {
	Threshold         float64
	ClickSettle       time.Duration
	KeystrokeInterval time.Duration
	// Button is pressed by clicks. The zero value is the left button.
	Button platform.MouseButton
	// DryRun locates elements without sending any input.
	DryRun bool
	// Secret lists field names whose payload is masked in log lines.
	Secret map[string]bool
}

// DefaultConfig mirrors the configuration defaults.
func DefaultConfig() Config {
	return Config{
		Threshold:         0.8,
		ClickSettle:       time.Second,
		KeystrokeInterval: 100 * time.Millisecond,
	}
}

// Executor performs actions. It is not safe for concurrent use: the
// pointer and keyboard it drives are a single shared resource.
type Executor struct {
	cfg     Config
	refs    References
	locator Matcher
	input   platform.Inputter
	logger  *zap.Logger
	sleep   SleepFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger for per-step diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSleep replaces the settle wait, mainly for tests.
func WithSleep(fn SleepFunc) Option {
	return func(e *Executor) { e.sleep = fn }
}

// New creates an Executor.
func New(cfg Config, refs References, locator Matcher, input platform.Inputter, opts ...Option) *Executor {
	e := &Executor{
		cfg:     cfg,
		refs:    refs,
		locator: locator,
		input:   input,
		logger:  zap.NewNop(),
		sleep:   Sleep,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Sleep waits for d, returning early with ctx's error when it is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Execute runs desc against screen with value as the payload. Every
// failure is reported in the returned result; Execute never panics on
// missing assets or input errors.
func (e *Executor) Execute(ctx context.Context, desc model.ActionDescriptor, value any, screen image.Image) model.StepResult {
	start := time.Now()
	res := e.execute(ctx, desc, value, screen)
	res.Field = desc.FieldName
	res.Action = desc.Action
	res.ObjectID = desc.ObjectID
	res.Elapsed = time.Since(start)
	return res
}

func (e *Executor) execute(ctx context.Context, desc model.ActionDescriptor, value any, screen image.Image) model.StepResult {
	log := e.logger.With(zap.String("object_id", desc.ObjectID), zap.Stringer("action", desc.Action))

	if desc.ObjectID == "" {
		log.Warn("Skipping action due to missing objectId")
		return model.StepResult{Outcome: model.OutcomeSkipped, Reason: "missing objectId"}
	}

	ref, err := e.refs.Get(desc.ObjectID)
	if err != nil {
		if errors.Is(err, reference.ErrNotFound) || errors.Is(err, reference.ErrInvalidID) {
			log.Warn("Image not found", zap.Error(err))
			return model.StepResult{Outcome: model.OutcomeSkipped, Reason: err.Error()}
		}
		log.Error("Could not load reference image", zap.Error(err))
		return model.StepResult{Outcome: model.OutcomeFailed, Reason: err.Error()}
	}

	match, err := e.locator.Locate(ctx, screen, ref, e.cfg.Threshold)
	if err != nil {
		log.Error("Locate failed", zap.Error(err))
		return model.StepResult{Outcome: model.OutcomeFailed, Reason: err.Error()}
	}
	if !match.Found {
		log.Warn("Could not find element",
			zap.Float64("confidence", match.Score),
			zap.Float64("threshold", e.cfg.Threshold))
		return model.StepResult{
			Outcome: model.OutcomeNotFound,
			Reason:  fmt.Sprintf("best score %.3f below threshold %.3f", match.Score, e.cfg.Threshold),
			Score:   match.Score,
		}
	}

	loc := match.Location
	res := model.StepResult{Score: match.Score, Location: &loc}
	if e.cfg.DryRun {
		log.Info("Located", zap.Stringer("location", loc), zap.Float64("score", match.Score))
		res.Outcome = model.OutcomeLocated
		return res
	}

	switch desc.Action {
	case model.ActionClick:
		err = e.click(ctx, loc)
	case model.ActionSetText:
		err = e.setText(ctx, loc, desc.FieldName, PayloadText(value), log)
	default:
		err = fmt.Errorf("unsupported action %s", desc.Action)
	}
	if err != nil {
		log.Error("Action failed", zap.Error(err))
		res.Outcome = model.OutcomeFailed
		res.Reason = err.Error()
		return res
	}
	res.Outcome = model.OutcomePerformed
	return res
}

// click moves to loc, presses and releases the configured button, then waits for
// the UI to react. A cancelled settle wait still counts as a delivered click.
func (e *Executor) click(ctx context.Context, loc model.Point) error {
	if err := e.input.MoveMouse(loc.X, loc.Y); err != nil {
		return err
	}
	if err := e.input.Click(loc.X, loc.Y, e.cfg.Button, 1); err != nil {
		return err
	}
	_ = e.sleep(ctx, e.cfg.ClickSettle)
	return nil
}

func (e *Executor) setText(ctx context.Context, loc model.Point, field, text string, log *zap.Logger) error {
	if err := e.click(ctx, loc); err != nil {
		return err
	}
	if err := e.input.TypeText(text, int(e.cfg.KeystrokeInterval/time.Millisecond)); err != nil {
		return err
	}
	shown := text
	if e.cfg.Secret[field] {
		shown = "********"
	}
	log.Info("Entered", zap.String("text", shown))
	return nil
}

// PayloadText coerces a cell value to the text that gets typed.
func PayloadText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
