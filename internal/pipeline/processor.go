// Package pipeline runs a submission through validate, enrich, persist and
// the detached forward to Help Scout.
package pipeline

import (
	"context"
	"errors"
	"time"

	stderrors "support-desk/internal/common/errors"
	"support-desk/internal/common/logger"
	"support-desk/internal/common/metrics"
	"support-desk/internal/common/observability"
	"support-desk/internal/enrichment"
	"support-desk/internal/models"
	"support-desk/internal/storage"
	"support-desk/internal/support"
)

// ForwardFunc delivers a persisted submission to the ticketing system.
type ForwardFunc func(ctx context.Context, sub *models.Submission) error

// Processor owns the submission lifecycle. The caller is answered as soon as
// the submission is persisted; forwarding happens on a detached goroutine so
// a slow or failing Help Scout never blocks the form response.
type Processor struct {
	enricher       *enrichment.Enricher
	store          storage.SubmissionStore
	forward        ForwardFunc
	obs            *observability.Observability
	forwardTimeout time.Duration
	logger         logger.Logger
}

func New(enricher *enrichment.Enricher, store storage.SubmissionStore, forward ForwardFunc, obs *observability.Observability, forwardTimeout time.Duration, log logger.Logger) *Processor {
	return &Processor{
		enricher:       enricher,
		store:          store,
		forward:        forward,
		obs:            obs,
		forwardTimeout: forwardTimeout,
		logger:         log.WithFields(map[string]interface{}{"component": "pipeline"}),
	}
}

// Process validates and enriches the raw form, persists the result, and
// schedules the forward. cleanup runs after the detached forward finishes
// (temp upload removal); it also runs when the submission never reaches the
// forward stage. A non-empty FieldError slice means the submission was
// rejected and nothing was stored.
func (p *Processor) Process(ctx context.Context, form *support.RawForm, reqCtx enrichment.RequestContext, cleanup func()) (*models.Submission, []support.FieldError, error) {
	start := time.Now()
	metrics.SubmissionsReceived.Inc()

	sub, fieldErrs := support.Validate(form)
	if len(fieldErrs) > 0 {
		for _, fe := range fieldErrs {
			metrics.SubmissionsRejected.WithLabelValues(fe.Field).Inc()
		}
		p.obs.RecordSubmissionProcessed(ctx, "rejected")
		p.obs.RecordSubmissionDuration(ctx, time.Since(start), "rejected")
		if cleanup != nil {
			cleanup()
		}
		return nil, fieldErrs, nil
	}

	p.enricher.Enrich(sub, reqCtx)

	id, err := p.store.Create(ctx, sub)
	if err != nil {
		p.obs.RecordSubmissionProcessed(ctx, "error")
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, stderrors.NewPersistenceError(err)
	}

	metrics.SubmissionsPersisted.Inc()
	p.obs.RecordSubmissionProcessed(ctx, "accepted")
	p.obs.RecordSubmissionDuration(ctx, time.Since(start), "accepted")
	p.logger.Info("submission accepted", map[string]interface{}{
		"submissionId": id,
		"email":        sub.Email,
	})

	// The forwarder mutates its submission on failure; hand it a copy so the
	// one returned to the handler stays race free.
	forwardSub := *sub
	go p.runForward(&forwardSub, cleanup)

	return sub, nil, nil
}

// runForward executes the detached delivery with its own deadline. The
// request context is long gone by the time this runs.
func (p *Processor) runForward(sub *models.Submission, cleanup func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic during forward", map[string]interface{}{
				"submissionId": sub.ID,
				"panic":        r,
			})
		}
		if cleanup != nil {
			cleanup()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), p.forwardTimeout)
	defer cancel()

	if err := p.forward(ctx, sub); err != nil {
		p.logger.WithError(err).Error("forward failed", map[string]interface{}{
			"submissionId": sub.ID,
		})
	}
}

// Get returns a stored submission by id.
func (p *Processor) Get(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := p.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, stderrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	return sub, nil
}

// List returns the most recent submissions, newest first.
func (p *Processor) List(ctx context.Context, limit int) ([]*models.Submission, error) {
	subs, err := p.store.List(ctx, limit)
	if err != nil {
		return nil, stderrors.NewPersistenceError(err)
	}
	return subs, nil
}
