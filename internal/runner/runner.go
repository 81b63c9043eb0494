// Package runner drives the data-driven run: for every record it launches
// the target application, waits for it to settle, then executes every
// scripted action against a fresh screen capture.
package runner

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/visual-runner/internal/executor"
	"github.com/mj1618/visual-runner/internal/metrics"
	"github.com/mj1618/visual-runner/internal/model"
	"github.com/mj1618/visual-runner/internal/platform"
	"go.uber.org/zap"
)

// State is a phase of the run loop.
type State int

const (
	LaunchingApp State = iota + 1
	AwaitingSettle
	ExecutingAction
	RecordComplete
	RunComplete
)

func (s State) String() string {
	switch s {
	case LaunchingApp:
		return "LaunchingApp"
	case AwaitingSettle:
		return "AwaitingSettle"
	case ExecutingAction:
		return "ExecutingAction"
	case RecordComplete:
		return "RecordComplete"
	case RunComplete:
		return "RunComplete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Capturer returns a fresh screen capture. label names the diagnostic copy.
type Capturer interface {
	Capture(label string) (image.Image, error)
}

// Executor performs one action.
type Executor interface {
	Execute(ctx context.Context, desc model.ActionDescriptor, value any, screen image.Image) model.StepResult
}

// Observer is notified on every state transition. record and step are
// 1-based; step is 0 outside ExecutingAction.
type Observer func(state State, record, step int)

// Config is the immutable run configuration.
type Config struct {
	URL         string
	LaunchDelay time.Duration
	// Credentials maps field names whose payload comes from configuration
	// instead of the data record.
	Credentials map[string]string
}

// Runner executes scripts over data records. Runs are strictly sequential.
type Runner struct {
	cfg      Config
	launcher platform.Launcher
	capturer Capturer
	exec     Executor

	logger   *zap.Logger
	metrics  *metrics.Recorder
	sleep    executor.SleepFunc
	observer Observer
	runID    string
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics records step outcomes into m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithSleep replaces the settle wait.
func WithSleep(fn executor.SleepFunc) Option {
	return func(r *Runner) { r.sleep = fn }
}

// WithObserver registers a state transition callback.
func WithObserver(fn Observer) Option {
	return func(r *Runner) { r.observer = fn }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// New creates a Runner.
func New(cfg Config, launcher platform.Launcher, capturer Capturer, exec Executor, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		launcher: launcher,
		capturer: capturer,
		exec:     exec,
		logger:   zap.NewNop(),
		sleep:    executor.Sleep,
	}
	for _, o := range opts {
		o(r)
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	return r
}

// RunID identifies this runner's report and screenshot history.
func (r *Runner) RunID() string {
	return r.runID
}

// Run makes exactly len(records)*len(script) attempts, record-major. Step
// failures are recorded in the report and never stop the run. The only
// error returned is ctx's, in which case the partial report is returned too.
func (r *Runner) Run(ctx context.Context, records []model.Record, script []model.ActionDescriptor) (*model.Report, error) {
	rep := &model.Report{
		RunID:   r.runID,
		Started: time.Now(),
		Results: make([]model.StepResult, 0, len(records)*len(script)),
	}
	log := r.logger.With(zap.String("run_id", r.runID))
	defer func() { rep.Finished = time.Now() }()

	for i, rec := range records {
		recNo := i + 1
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		r.enter(LaunchingApp, recNo, 0)
		err := r.launcher.Open(r.cfg.URL)
		r.metrics.ObserveLaunch(err)
		if err != nil {
			log.Error("Could not launch application", zap.Int("record", recNo), zap.String("url", r.cfg.URL), zap.Error(err))
		} else {
			log.Info("Launched application", zap.Int("record", recNo), zap.String("url", r.cfg.URL))
		}

		r.enter(AwaitingSettle, recNo, 0)
		if err := r.sleep(ctx, r.cfg.LaunchDelay); err != nil {
			return rep, err
		}

		for j, desc := range script {
			stepNo := j + 1
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			r.enter(ExecutingAction, recNo, stepNo)
			res := r.step(ctx, log, rec, desc, recNo, stepNo)
			rep.Add(res)
			r.metrics.ObserveStep(res)
		}

		rep.Records++
		r.metrics.RecordDone()
		r.enter(RecordComplete, recNo, 0)
	}

	r.enter(RunComplete, len(records), 0)
	return rep, nil
}

func (r *Runner) step(ctx context.Context, log *zap.Logger, rec model.Record, desc model.ActionDescriptor, recNo, stepNo int) model.StepResult {
	log = log.With(zap.Int("record", recNo), zap.Int("step", stepNo))
	base := model.StepResult{
		Record:   recNo,
		Step:     stepNo,
		Field:    desc.FieldName,
		Action:   desc.Action,
		ObjectID: desc.ObjectID,
	}

	if desc.ObjectID == "" {
		log.Warn("Skipping action due to missing objectId", zap.String("field", desc.FieldName))
		base.Outcome = model.OutcomeSkipped
		base.Reason = "missing objectId"
		return base
	}

	value := r.payload(rec, desc.FieldName)

	screen, err := r.capturer.Capture(fmt.Sprintf("r%03d-s%03d", recNo, stepNo))
	if err != nil {
		log.Error("Screen capture failed", zap.Error(err))
		base.Outcome = model.OutcomeFailed
		base.Reason = fmt.Sprintf("capture: %v", err)
		return base
	}

	res := r.exec.Execute(ctx, desc, value, screen)
	res.Record = recNo
	res.Step = stepNo
	return res
}

// payload resolves the value for field: credential fields always come from
// configuration, anything else from the record ("" when absent).
func (r *Runner) payload(rec model.Record, field string) string {
	if v, ok := r.cfg.Credentials[field]; ok {
		return v
	}
	return rec.Get(field)
}

func (r *Runner) enter(s State, record, step int) {
	r.logger.Debug("State", zap.Stringer("state", s), zap.Int("record", record), zap.Int("step", step))
	if r.observer != nil {
		r.observer(s, record, step)
	}
}
