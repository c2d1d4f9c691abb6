package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sapiens-platform/sapiens/internal/observability"
	"github.com/sapiens-platform/sapiens/models"
	"github.com/sapiens-platform/sapiens/services/audit"
	"github.com/sapiens-platform/sapiens/services/pipeline"
)

// Runner executes the analysis pipeline in the background and moves the
// tracked analysis through its lifecycle. One goroutine per launch; the
// store serializes all state changes.
type Runner struct {
	store    *Store
	pipeline *pipeline.Pipeline
	auditor  *audit.Auditor
	metrics  *observability.Metrics
	logger   *zap.Logger
	timeout  time.Duration
}

// NewRunner creates a Runner. timeout bounds a single pipeline run; zero
// means no bound.
func NewRunner(store *Store, p *pipeline.Pipeline, auditor *audit.Auditor, metrics *observability.Metrics, logger *zap.Logger, timeout time.Duration) *Runner {
	return &Runner{
		store:    store,
		pipeline: p,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger,
		timeout:  timeout,
	}
}

// Launch starts the pipeline for an already-created analysis and returns
// immediately. The analysis must hold its validated files; Launch moves it
// to executing and, when the run ends, to completed or error. Panics inside
// the run are recovered into the error state.
func (r *Runner) Launch(id uuid.UUID) {
	go r.run(id)
}

func (r *Runner) run(id uuid.UUID) {
	launched := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("falha interna na análise: %v", rec)
			r.logger.Error("analysis panicked",
				zap.String("analise_id", id.String()),
				zap.Any("panic", rec))
			r.fail(id, err, time.Since(launched))
		}
	}()

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	current, err := r.store.Get(id)
	if err != nil {
		r.logger.Error("analysis not found at launch", zap.String("analise_id", id.String()))
		return
	}

	files := make([]string, 0, len(current.Files))
	for _, f := range current.Files {
		files = append(files, f.Path)
	}

	if _, err := r.store.Update(id, func(a *models.Analysis) {
		a.Status = models.StatusExecuting
		a.Progress = 10
	}); err != nil {
		r.logger.Warn("could not move analysis to executing",
			zap.String("analise_id", id.String()), zap.Error(err))
		return
	}

	start := time.Now()
	stageStart := start
	previousStage := ""
	report, err := r.pipeline.Run(ctx,
		pipeline.Inputs{Topic: current.Topic, Files: files},
		func(stage, total int, name string) {
			now := time.Now()
			if previousStage != "" {
				r.metrics.RecordStage(previousStage, now.Sub(stageStart))
			}
			previousStage, stageStart = name, now

			progress := 10 + stage*85/total
			if _, uerr := r.store.Update(id, func(a *models.Analysis) {
				a.Progress = progress
			}); uerr != nil {
				r.logger.Warn("progress update rejected",
					zap.String("analise_id", id.String()), zap.Error(uerr))
			}
			r.logger.Info("analysis stage starting",
				zap.String("analise_id", id.String()),
				zap.String("etapa", name),
				zap.Int("progresso", progress))
		})
	if previousStage != "" {
		r.metrics.RecordStage(previousStage, time.Since(stageStart))
	}
	if err != nil {
		r.auditor.RecordError(ctx, "pipeline", err,
			map[string]interface{}{"analise_id": id.String()})
		r.fail(id, err, time.Since(start))
		return
	}

	if _, err := r.store.Update(id, func(a *models.Analysis) {
		a.Status = models.StatusCompleted
		a.Progress = 100
		a.Results = report
	}); err != nil {
		r.logger.Warn("completion update rejected",
			zap.String("analise_id", id.String()), zap.Error(err))
		return
	}

	r.metrics.RecordAnalysis(string(models.StatusCompleted), time.Since(start))
	r.auditor.FinishAnalysis(ctx, id.String(), models.StatusCompleted, time.Since(start))
	r.logger.Info("analysis completed",
		zap.String("analise_id", id.String()),
		zap.Duration("duracao", time.Since(start)))
}

// fail moves the analysis to the sticky error state.
func (r *Runner) fail(id uuid.UUID, cause error, elapsed time.Duration) {
	r.metrics.RecordAnalysis(string(models.StatusError), elapsed)
	if _, err := r.store.Update(id, func(a *models.Analysis) {
		a.Status = models.StatusError
		a.Error = cause.Error()
	}); err != nil {
		r.logger.Warn("error-state update rejected",
			zap.String("analise_id", id.String()), zap.Error(err))
	}
}
