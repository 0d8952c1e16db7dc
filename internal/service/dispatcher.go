package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sfgs/mail-dispatch/internal/content"
	"github.com/sfgs/mail-dispatch/internal/domain"
	"github.com/sfgs/mail-dispatch/internal/mailer"
	"github.com/sfgs/mail-dispatch/internal/observability"
	"github.com/sfgs/mail-dispatch/internal/ratelimit"
	"github.com/sfgs/mail-dispatch/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	minSendConcurrency  = 1
	defaultTickPoll     = time.Minute
	fallbackDailyLimit  = 100
	fallbackTickSpacing = 5 * time.Minute
)

// AttachmentResolver loads the attachment payload a document message
// references. The payload reference is opaque to the dispatcher.
type AttachmentResolver interface {
	Resolve(ctx context.Context, payloadRef string) (*mailer.Attachment, error)
}

// TickResult summarizes one dispatch tick.
type TickResult struct {
	Skipped  bool
	Admitted int
	Sent     int
	Failed   int
}

// Dispatcher pulls admitted pending messages and drives each through the
// PENDING -> PROCESSING -> SENT/FAILED state machine. One tick runs at a
// time; the guard also enforces the operator-configured tick spacing.
type Dispatcher struct {
	messages    repository.MessageRepository
	students    repository.StudentRepository
	settings    repository.SettingsRepository
	guard       ratelimit.TickGuard
	mailer      mailer.Mailer
	renderer    *content.Renderer
	attachments AttachmentResolver
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
}

func NewDispatcher(
	messages repository.MessageRepository,
	students repository.StudentRepository,
	settings repository.SettingsRepository,
	guard ratelimit.TickGuard,
	m mailer.Mailer,
	renderer *content.Renderer,
	attachments AttachmentResolver,
	concurrency int,
	logger *zap.Logger,
) (*Dispatcher, error) {
	if messages == nil {
		return nil, fmt.Errorf("message repository is required")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	if guard == nil {
		return nil, fmt.Errorf("tick guard is required")
	}
	if m == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if renderer == nil {
		renderer = content.NewRenderer("")
	}
	if concurrency < minSendConcurrency {
		concurrency = minSendConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		messages:    messages,
		students:    students,
		settings:    settings,
		guard:       guard,
		mailer:      m,
		renderer:    renderer,
		attachments: attachments,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (d *Dispatcher) SetMetrics(metrics *observability.Metrics) {
	if d == nil {
		return
	}
	d.metrics = metrics
}

// Start polls RunTick until context cancellation. The poll is deliberately
// tighter than the configured tick spacing; the guard decides whether a
// poll becomes an actual tick.
func (d *Dispatcher) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ticker := time.NewTicker(defaultTickPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			result, err := d.RunTick(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				d.logger.Error("dispatch tick failed", zap.Error(err))
				continue
			}
			if !result.Skipped && result.Admitted > 0 {
				d.logger.Info("dispatch tick completed",
					zap.Int("admitted", result.Admitted),
					zap.Int("sent", result.Sent),
					zap.Int("failed", result.Failed),
				)
			}
		}
	}
}

// RunTick executes one dispatch tick. Store failures before admission abort
// the tick with ErrStoreUnavailable; transitions already committed stand.
func (d *Dispatcher) RunTick(ctx context.Context) (*TickResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := d.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load settings: %v", domain.ErrStoreUnavailable, err)
	}

	dailyLimit := settings.DailyEmailLimit
	if dailyLimit < 1 {
		dailyLimit = fallbackDailyLimit
	}
	spacing := settings.TickInterval()
	if spacing <= 0 {
		spacing = fallbackTickSpacing
	}

	acquired, err := d.guard.Acquire(ctx, spacing)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire tick guard: %w", err)
	}
	if !acquired {
		if d.metrics != nil {
			d.metrics.IncTickSkipped()
		}
		return &TickResult{Skipped: true}, nil
	}
	defer func() {
		if releaseErr := d.guard.Release(context.WithoutCancel(ctx)); releaseErr != nil {
			d.logger.Warn("failed to release tick guard", zap.Error(releaseErr))
		}
	}()

	now := d.now()
	sentToday, err := d.messages.CountSentSince(ctx, startOfDay(now))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to count today's sends: %v", domain.ErrStoreUnavailable, err)
	}

	budget := admissionBudget(dailyLimit, sentToday)
	if budget == 0 {
		return &TickResult{}, nil
	}

	batch, err := d.messages.GetPendingBatch(ctx, budget)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load pending batch: %v", domain.ErrStoreUnavailable, err)
	}
	if len(batch) == 0 {
		return &TickResult{}, nil
	}

	result := &TickResult{}
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for i := range batch {
		message := batch[i]
		g.Go(func() error {
			claimed, err := d.messages.MarkProcessing(groupCtx, message.ID)
			if err != nil {
				d.logger.Error("failed to claim message",
					zap.String("messageId", message.ID),
					zap.Error(err),
				)
				return nil
			}
			if !claimed {
				// Another owner moved it first (operator cancel, overlapping claim).
				return nil
			}

			mu.Lock()
			result.Admitted++
			mu.Unlock()

			sent := d.dispatchOne(groupCtx, &message)

			mu.Lock()
			if sent {
				result.Sent++
			} else {
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	return result, nil
}

// dispatchOne sends a single claimed message and commits its terminal
// transition. Failures never propagate; the message is parked FAILED with a
// human-readable reason instead.
func (d *Dispatcher) dispatchOne(ctx context.Context, message *domain.Message) bool {
	email, err := d.buildEmail(ctx, message)
	if err != nil {
		d.fail(ctx, message, fmt.Sprintf("failed to prepare message: %v", err))
		return false
	}

	sendStart := d.now()
	_, sendErr := d.mailer.Send(ctx, *email)
	if d.metrics != nil {
		d.metrics.ObserveSendDuration(message.Type.String(), d.now().Sub(sendStart))
	}

	if sendErr != nil {
		d.fail(ctx, message, sendErr.Error())
		return false
	}

	if err := d.messages.MarkSent(ctx, message.ID, d.now().UTC()); err != nil {
		d.logger.Error("failed to mark message sent",
			zap.String("messageId", message.ID),
			zap.Error(err),
		)
		return false
	}

	if d.metrics != nil {
		d.metrics.IncEmailSent(message.Type.String())
	}
	return true
}

func (d *Dispatcher) buildEmail(ctx context.Context, message *domain.Message) (*mailer.Email, error) {
	studentName := d.studentName(ctx, message)

	var body content.Body
	var err error
	var attachments []mailer.Attachment

	switch message.Type {
	case domain.TypeBirthday:
		body, err = d.renderer.Birthday(studentName)
	case domain.TypeDocument:
		body, err = d.renderer.DocumentReady(studentName)
		if err == nil {
			attachments, err = d.resolveAttachments(ctx, message)
		}
	default:
		err = fmt.Errorf("unsupported message type %q", message.Type)
	}
	if err != nil {
		return nil, err
	}

	return &mailer.Email{
		RecipientEmail: message.RecipientEmail,
		Subject:        body.Subject,
		HTMLBody:       body.HTMLBody,
		TextBody:       body.TextBody,
		Attachments:    attachments,
	}, nil
}

func (d *Dispatcher) resolveAttachments(ctx context.Context, message *domain.Message) ([]mailer.Attachment, error) {
	if message.PayloadRef == nil || d.attachments == nil {
		return nil, nil
	}

	attachment, err := d.attachments.Resolve(ctx, *message.PayloadRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve attachment %s: %w", *message.PayloadRef, err)
	}
	if attachment == nil {
		return nil, nil
	}
	return []mailer.Attachment{*attachment}, nil
}

func (d *Dispatcher) studentName(ctx context.Context, message *domain.Message) string {
	if message.StudentID == nil || d.students == nil {
		return ""
	}

	student, err := d.students.GetByID(ctx, *message.StudentID)
	if err != nil {
		d.logger.Warn("failed to load student for message",
			zap.String("messageId", message.ID),
			zap.Error(err),
		)
		return ""
	}
	return student.Name
}

func (d *Dispatcher) fail(ctx context.Context, message *domain.Message, reason string) {
	if err := d.messages.MarkFailed(ctx, message.ID, reason); err != nil {
		d.logger.Error("failed to mark message failed",
			zap.String("messageId", message.ID),
			zap.Error(err),
		)
		return
	}

	d.logger.Warn("message send failed",
		zap.String("messageId", message.ID),
		zap.String("type", message.Type.String()),
		zap.String("reason", reason),
	)
	if d.metrics != nil {
		d.metrics.IncEmailFailed(message.Type.String())
	}
}

// admissionBudget is the number of sends the daily cap still allows.
func admissionBudget(dailyLimit, sentToday int) int {
	remaining := dailyLimit - sentToday
	if remaining < 0 {
		return 0
	}
	return remaining
}
