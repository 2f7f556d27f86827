package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"hubledger/internal/clock"
	apperrors "hubledger/internal/errors"
	"hubledger/internal/logger"
	"hubledger/internal/models"
	"hubledger/internal/notify"
)

// BatchError is one failed template in a batch.
type BatchError struct {
	TemplateID string `json:"template_id"`
	HubID      string `json:"hub_id"`
	Error      string `json:"error"`
}

// BatchResult aggregates the outcome of one RunBatch call.
type BatchResult struct {
	Success     int                `json:"success"`
	Failed      int                `json:"failed"`
	Skipped     int                `json:"skipped"`
	Interrupted int                `json:"interrupted"`
	Errors      []BatchError       `json:"errors"`
	SkipReasons map[SkipReason]int `json:"skip_reasons"`
	StartedAt   time.Time          `json:"started_at"`
	Duration    time.Duration      `json:"duration"`
}

func (r *BatchResult) add(o *GenerationOutcome) {
	switch {
	case o.Generated:
		r.Success++
	case o.Interrupted:
		r.Interrupted++
	case o.SkipReason != "":
		r.Skipped++
		r.SkipReasons[o.SkipReason]++
	default:
		r.Failed++
		r.Errors = append(r.Errors, BatchError{TemplateID: o.TemplateID, HubID: o.HubID, Error: o.FailureReason})
	}
}

// GenerationOutcome is the result of one attempt on one template. Exactly one
// of Generated, Interrupted, SkipReason or FailureReason is set.
// Interrupted means ctx ended before the attempt committed; nothing was
// written and the template stays due.
type GenerationOutcome struct {
	TemplateID    string              `json:"template_id"`
	HubID         string              `json:"hub_id"`
	Generated     bool                `json:"generated"`
	Interrupted   bool                `json:"interrupted,omitempty"`
	SkipReason    SkipReason          `json:"skip_reason,omitempty"`
	FailureReason string              `json:"failure_reason,omitempty"`
	Transaction   *models.Transaction `json:"transaction,omitempty"`
	NextDue       time.Time           `json:"next_due"`
}

// recurringService generates transactions from due recurring templates.
type recurringService struct {
	db           *gorm.DB
	accounts     AccountServicer
	transactions TransactionServicer
	notifier     notify.Notifier
	clock        clock.Clock
	workers      int
}

// NewRecurringService creates a new RecurringServicer. workers bounds how
// many source accounts are processed in parallel.
func NewRecurringService(
	db *gorm.DB,
	accounts AccountServicer,
	transactions TransactionServicer,
	notifier notify.Notifier,
	clk clock.Clock,
	workers int,
) RecurringServicer {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if clk == nil {
		clk = clock.Real{}
	}
	if workers < 1 {
		workers = 1
	}
	return &recurringService{
		db:           db,
		accounts:     accounts,
		transactions: transactions,
		notifier:     notifier,
		clock:        clk,
		workers:      workers,
	}
}

// RunBatch attempts every active, non-archived template once at now.
// Templates sharing a source account run sequentially; distinct accounts run
// in parallel. Per-template failures are recorded on the template and in the
// result and never abort the batch. When ctx ends mid-batch the remaining
// templates are counted as interrupted, not failed, and stay due. The error
// is non-nil only when the templates could not be loaded.
func (s *recurringService) RunBatch(ctx context.Context, now time.Time) (*BatchResult, error) {
	started := s.clock.Now()

	var templates []models.RecurringTemplate
	if err := s.db.WithContext(ctx).
		Where("status = ? AND archived_at IS NULL", models.TemplateStatusActive).
		Order("financial_account_id, start_date, id").
		Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &BatchResult{
		Errors:      []BatchError{},
		SkipReasons: make(map[SkipReason]int),
		StartedAt:   started,
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.workers)

	for _, group := range groupByAccount(templates) {
		g.Go(func() error {
			for i := range group {
				if ctx.Err() != nil {
					mu.Lock()
					result.Interrupted += len(group) - i
					mu.Unlock()
					return nil
				}
				outcome := s.process(ctx, &group[i], now)
				mu.Lock()
				result.add(outcome)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Duration = s.clock.Now().Sub(started)

	logger.Get().Infow("recurring batch finished",
		"templates", len(templates),
		"success", result.Success,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"interrupted", result.Interrupted,
		"duration", result.Duration,
	)
	return result, nil
}

// RunTemplate attempts a single template at now, the same way RunBatch does.
func (s *recurringService) RunTemplate(ctx context.Context, hubID, templateID string, now time.Time) (*GenerationOutcome, error) {
	if hubID == "" {
		return nil, apperrors.ErrHubRequired
	}

	var tpl models.RecurringTemplate
	if err := s.db.WithContext(ctx).Where("id = ? AND hub_id = ?", templateID, hubID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.process(ctx, &tpl, now), nil
}

// groupByAccount splits templates, already ordered by source account, into
// one slice per account.
func groupByAccount(templates []models.RecurringTemplate) [][]models.RecurringTemplate {
	var groups [][]models.RecurringTemplate
	for i := 0; i < len(templates); {
		j := i + 1
		for j < len(templates) && templates[j].FinancialAccountID == templates[i].FinancialAccountID {
			j++
		}
		groups = append(groups, templates[i:j])
		i = j
	}
	return groups
}

// process evaluates and, when due, generates one template. A panic is
// recorded as a failure of this template only.
func (s *recurringService) process(ctx context.Context, tpl *models.RecurringTemplate, now time.Time) (outcome *GenerationOutcome) {
	log := logger.With("template_id", tpl.ID, "hub_id", tpl.HubID)

	outcome = &GenerationOutcome{TemplateID: tpl.ID, HubID: tpl.HubID}

	defer func() {
		if r := recover(); r != nil {
			err := apperrors.Wrap(apperrors.ErrPersistence, fmt.Errorf("panic: %v", r))
			log.Errorw("recurring template panicked", "panic", r)
			outcome = &GenerationOutcome{TemplateID: tpl.ID, HubID: tpl.HubID}
			s.fail(ctx, tpl, now, err, outcome)
		}
	}()

	decision := EvaluateDue(tpl, now)
	outcome.NextDue = decision.NextDue
	if !decision.Due {
		outcome.SkipReason = decision.SkipReason
		log.Debugw("recurring template skipped", "reason", decision.SkipReason)
		return outcome
	}

	txn, err := s.generate(ctx, tpl, now)
	if errors.Is(err, errAlreadyGenerated) {
		outcome.SkipReason = SkipAlreadyGenerated
		log.Infow("recurring template already generated by a concurrent run")
		return outcome
	}
	if err != nil && interrupted(ctx, err) {
		outcome.Interrupted = true
		log.Infow("recurring generation interrupted", "error", err)
		return outcome
	}
	if err != nil {
		s.fail(ctx, tpl, now, err, outcome)
		return outcome
	}

	outcome.Generated = true
	outcome.Transaction = txn
	outcome.NextDue = NextDueDate(tpl)
	log.Infow("recurring transaction generated", "transaction_id", txn.ID, "amount", txn.Amount)

	s.notify(ctx, tpl.HubID, notify.KindRecurringGenerated, map[string]interface{}{
		"template_id":    tpl.ID,
		"transaction_id": txn.ID,
		"source":         tpl.Source,
		"type":           tpl.Type,
		"amount":         tpl.Amount,
		"date":           now,
	})
	return outcome
}

// generate runs the atomic unit: claim the next generation sequence, move
// the money and write the ledger entry. tpl is updated in memory on success.
func (s *recurringService) generate(ctx context.Context, tpl *models.RecurringTemplate, now time.Time) (*models.Transaction, error) {
	effect, err := tpl.Type.Effect(tpl.Amount)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidTransactionType, err)
	}
	if tpl.Type == models.TransactionTypeTransfer && tpl.DestinationAccountID == nil {
		return nil, apperrors.WithMessage(apperrors.ErrMissingAccount, "transfer template has no destination account")
	}

	seq := tpl.GenerationCount + 1
	txn := &models.Transaction{
		HubID:               tpl.HubID,
		AccountID:           tpl.FinancialAccountID,
		ToAccountID:         tpl.DestinationAccountID,
		CategoryID:          tpl.CategoryID,
		Type:                tpl.Type,
		Amount:              tpl.Amount,
		Description:         describe(tpl),
		Date:                now,
		RecurringTemplateID: &tpl.ID,
		GenerationSeq:       &seq,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-swap on the generation counter. A concurrent run that
		// already generated this period has bumped it, so this matches nothing.
		res := tx.Model(&models.RecurringTemplate{}).
			Where("id = ? AND generation_count = ? AND status = ? AND archived_at IS NULL",
				tpl.ID, tpl.GenerationCount, models.TemplateStatusActive).
			Updates(map[string]interface{}{
				"generation_count":     seq,
				"last_generated_date":  now,
				"consecutive_failures": 0,
				"last_failed_date":     nil,
				"failure_reason":       "",
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrPersistence, res.Error)
		}
		if res.RowsAffected == 0 {
			return errAlreadyGenerated
		}

		if err := s.accounts.ApplyEffect(tx, tpl.HubID, tpl.FinancialAccountID, effect.Source); err != nil {
			return err
		}
		if tpl.DestinationAccountID != nil && effect.Destination != 0 {
			if err := s.accounts.ApplyEffect(tx, tpl.HubID, *tpl.DestinationAccountID, effect.Destination); err != nil {
				return err
			}
		}

		return s.transactions.RecordWithDB(tx, txn)
	})
	if err != nil {
		return nil, err
	}

	tpl.GenerationCount = seq
	tpl.LastGeneratedDate = &now
	tpl.ConsecutiveFailures = 0
	tpl.LastFailedDate = nil
	tpl.FailureReason = ""
	return txn, nil
}

// interrupted reports whether err came from ctx ending rather than from the
// template itself.
func interrupted(ctx context.Context, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return ctx.Err() != nil && apperrors.CodeOf(err) == apperrors.ErrPersistence.Code
}

// fail records a failed attempt on the template, fills outcome and requests
// a warning notification. lastGeneratedDate is left alone so the template
// stays due for the next run.
func (s *recurringService) fail(ctx context.Context, tpl *models.RecurringTemplate, now time.Time, cause error, outcome *GenerationOutcome) {
	var appErr *apperrors.AppError
	if !errors.As(cause, &appErr) {
		cause = apperrors.Wrap(apperrors.ErrPersistence, cause)
	}
	reason := apperrors.CodeOf(cause)

	outcome.FailureReason = reason
	outcome.NextDue = NextDueDate(tpl)

	log := logger.With("template_id", tpl.ID, "hub_id", tpl.HubID, "reason", reason)
	log.Warnw("recurring generation failed", "error", cause)

	// The failure must be stored even if the caller gave up on ctx. The
	// guard drops the write when a concurrent run generated the template or
	// already recorded a failure for the same now, so one tick counts once.
	res := s.db.WithContext(context.WithoutCancel(ctx)).
		Model(&models.RecurringTemplate{}).
		Where("id = ? AND generation_count = ?", tpl.ID, tpl.GenerationCount).
		Where("last_failed_date IS NULL OR last_failed_date < ?", now).
		Updates(map[string]interface{}{
			"last_failed_date":     now,
			"failure_reason":       reason,
			"consecutive_failures": gorm.Expr("consecutive_failures + 1"),
		})
	if res.Error != nil {
		log.Errorw("failed to record recurring failure", "error", res.Error)
	} else if res.RowsAffected == 0 {
		log.Infow("recurring failure already recorded by a concurrent run")
		return
	} else {
		tpl.LastFailedDate = &now
		tpl.FailureReason = reason
		tpl.ConsecutiveFailures++
	}

	s.notify(ctx, tpl.HubID, notify.KindRecurringFailed, map[string]interface{}{
		"template_id":          tpl.ID,
		"source":               tpl.Source,
		"reason":               reason,
		"consecutive_failures": tpl.ConsecutiveFailures,
		"date":                 now,
	})
}

// notify requests a notification; errors are logged and dropped.
func (s *recurringService) notify(ctx context.Context, hubID string, kind notify.Kind, payload map[string]interface{}) {
	if err := s.notifier.Notify(ctx, hubID, kind, payload); err != nil {
		logger.Get().Warnw("notification failed",
			"hub_id", hubID,
			"kind", kind,
			"error", err,
		)
	}
}

func describe(tpl *models.RecurringTemplate) string {
	if tpl.Note != "" {
		return tpl.Source + " - " + tpl.Note
	}
	return tpl.Source
}
