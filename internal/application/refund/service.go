package refund

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
	"github.com/vendorhub/console/internal/infrastructure/logger"
	"github.com/vendorhub/console/internal/infrastructure/telemetry"
)

// Operator messages for sections that failed to load
const (
	msgOrderLoadFailed          = "Không thể tải thông tin đơn hàng."
	msgBankAccountsLoadFailed   = "Không thể tải danh sách tài khoản ngân hàng."
	msgSupportedBanksLoadFailed = "Không thể tải danh sách ngân hàng hỗ trợ."
	msgIdentityLoadFailed       = "Không thể tải danh sách số lô/số seri của sản phẩm."
)

// Session close reasons carried by SessionClosedEvent
const (
	CloseReasonClosed   = "closed"
	CloseReasonExpired  = "expired"
	CloseReasonShutdown = "shutdown"
)

// ServiceConfig holds the tunables of the processing service
type ServiceConfig struct {
	Policy                   refund.Policy
	SessionTTL               time.Duration
	CleanupInterval          time.Duration
	IdentityFetchConcurrency int
	SubmitLeaseTTL           time.Duration
	HistoryLimit             int
}

// DefaultServiceConfig returns the settings used when nothing is configured
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		Policy:                   refund.DefaultPolicy(),
		SessionTTL:               30 * time.Minute,
		CleanupInterval:          time.Minute,
		IdentityFetchConcurrency: 4,
		SubmitLeaseTTL:           30 * time.Second,
		HistoryLimit:             50,
	}
}

// ServiceOption configures optional collaborators
type ServiceOption func(*ProcessingService)

// WithSubmissionHistory enables ListSubmissions
func WithSubmissionHistory(repo refund.SubmissionRepository) ServiceOption {
	return func(s *ProcessingService) {
		s.history = repo
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m Metrics) ServiceOption {
	return func(s *ProcessingService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ProcessingService) {
		s.now = now
	}
}

// WithSessionIDGenerator replaces the ULID session ID generator
func WithSessionIDGenerator(gen func() string) ServiceOption {
	return func(s *ProcessingService) {
		s.newID = gen
	}
}

// ProcessingService runs refund sessions: it loads the ticket's order,
// tracks the operator's selection and submits the refund upstream.
type ProcessingService struct {
	backend   Backend
	guard     shared.LeaseStore
	publisher shared.EventPublisher
	history   refund.SubmissionRepository
	metrics   Metrics
	logger    *zap.Logger
	cfg       ServiceConfig

	sessions *SessionStore
	now      func() time.Time
	newID    func() string

	// background identity fetches
	wg sync.WaitGroup
}

// NewProcessingService creates the service. Call Start to begin evicting
// idle sessions and Shutdown to release them.
func NewProcessingService(
	backend Backend,
	guard shared.LeaseStore,
	publisher shared.EventPublisher,
	log *zap.Logger,
	cfg ServiceConfig,
	opts ...ServiceOption,
) *ProcessingService {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.IdentityFetchConcurrency <= 0 {
		cfg.IdentityFetchConcurrency = 1
	}
	s := &ProcessingService{
		backend:   backend,
		guard:     guard,
		publisher: publisher,
		metrics:   nopMetrics{},
		logger:    log.Named("refund"),
		cfg:       cfg,
		now:       time.Now,
		newID:     func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sessions = NewSessionStore(s.now)
	return s
}

// Start launches the idle session cleanup loop
func (s *ProcessingService) Start() {
	s.sessions.StartCleanup(s.cfg.CleanupInterval, s.cfg.SessionTTL, func(e *sessionEntry) {
		s.closeEntry(context.Background(), e, CloseReasonExpired)
	})
}

// Shutdown closes every open session and waits for background fetches
func (s *ProcessingService) Shutdown(ctx context.Context) error {
	s.sessions.Stop()
	for _, e := range s.sessions.drain() {
		s.closeEntry(ctx, e, CloseReasonShutdown)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OpenSession starts a refund session for a support ticket. The order,
// bank accounts and supported banks load concurrently; a failed section is
// recorded on the session instead of failing the call. Identity numbers
// load per line in the background.
func (s *ProcessingService) OpenSession(ctx context.Context, vendorID string, ticketID int64) (*SessionView, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "refund_session", "open",
		telemetry.Attr(telemetry.SpanAttrTicketID, ticketID))
	defer span.End()

	ticket, err := s.backend.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, refund.ErrTicketNotFound
		}
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to load ticket %d: %w", ticketID, err)
	}
	orderID, ok := refund.ExtractOrderID(ticket)
	if !ok {
		return nil, refund.ErrOrderReferenceMissing
	}

	now := s.now()
	session := refund.NewSession(s.newID(), vendorID, ticketID, s.cfg.Policy, now)
	if err := session.BeginLoading(orderID, now); err != nil {
		return nil, err
	}

	var (
		order      *refund.Order
		accounts   []refund.BankAccount
		banks      []refund.SupportedBank
		orderErr   error
		accountErr error
		bankErr    error
	)
	var g errgroup.Group
	g.Go(func() error {
		order, orderErr = s.backend.GetOrder(ctx, orderID)
		return nil
	})
	g.Go(func() error {
		accounts, accountErr = s.backend.GetVendorBankAccounts(ctx, vendorID)
		return nil
	})
	g.Go(func() error {
		banks, bankErr = s.backend.GetSupportedBanks(ctx)
		return nil
	})
	_ = g.Wait()

	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("session_id", session.ID),
		zap.Int64("ticket_id", ticketID),
		zap.Int64("order_id", orderID),
	)

	now = s.now()
	if orderErr != nil {
		log.Warn("failed to load order", zap.Error(orderErr))
		session.FailSection(refund.SectionOrder, msgOrderLoadFailed, now)
	} else {
		session.SetOrder(order, now)
	}
	if accountErr != nil {
		log.Warn("failed to load vendor bank accounts", zap.Error(accountErr))
		session.FailSection(refund.SectionBankAccounts, msgBankAccountsLoadFailed, now)
	} else {
		session.SetBankAccounts(accounts, now)
	}
	if bankErr != nil {
		log.Warn("failed to load supported banks", zap.Error(bankErr))
		session.FailSection(refund.SectionSupportedBanks, msgSupportedBanksLoadFailed, now)
	} else {
		session.SetSupportedBanks(banks, now)
	}
	session.MarkReady(now)

	lineIDs := make([]int64, 0, len(session.Forms))
	for _, f := range session.Forms {
		lineIDs = append(lineIDs, f.OrderDetailID)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSessionID, session.ID,
		telemetry.SpanAttrOrderID, orderID,
		telemetry.SpanAttrLineCount, len(lineIDs),
	)

	entry := newSessionEntry(context.WithoutCancel(ctx), session, now)
	view := ToSessionView(session, now)
	opened := refund.NewSessionOpenedEvent(session, now)
	s.sessions.put(entry)

	s.wg.Add(1)
	go s.loadIdentityNumbers(entry, lineIDs)

	s.publish(ctx, opened)
	log.Info("refund session opened", zap.Int("lines", len(lineIDs)))
	return view, nil
}

// loadIdentityNumbers fetches every line's identity numbers, bounded by
// IdentityFetchConcurrency. Each result lands only in its own line.
func (s *ProcessingService) loadIdentityNumbers(e *sessionEntry, lineIDs []int64) {
	defer s.wg.Done()
	defer close(e.identitiesLoaded)

	telemetry.WithProfilingLabels(e.ctx, telemetry.OperationLabels("identity_fetch", nil), func(ctx context.Context) {
		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.IdentityFetchConcurrency)
		for _, id := range lineIDs {
			g.Go(func() error {
				s.fetchLineIdentities(ctx, e, id)
				return nil
			})
		}
		_ = g.Wait()
	})
}

func (s *ProcessingService) fetchLineIdentities(ctx context.Context, e *sessionEntry, orderDetailID int64) {
	items, err := s.backend.GetExportedIdentityNumbers(ctx, orderDetailID)
	s.metrics.IdentityFetched(ctx, err == nil)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctx.Err() != nil {
		return
	}
	now := s.now()
	if err != nil {
		s.logger.Warn("failed to load identity numbers",
			zap.String("session_id", e.session.ID),
			zap.Int64("order_detail_id", orderDetailID),
			zap.Error(err),
		)
		_ = e.session.FailIdentityNumbers(orderDetailID, msgIdentityLoadFailed, now)
		return
	}
	_ = e.session.ApplyIdentityNumbers(orderDetailID, items, now)
}

// AwaitIdentityNumbers blocks until the initial identity fetches of a
// session finished or ctx is done, then returns the session
func (s *ProcessingService) AwaitIdentityNumbers(ctx context.Context, vendorID, sessionID string) (*SessionView, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}
	select {
	case <-e.identitiesLoaded:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.view(e)
}

// RefreshIdentityNumbers refetches one line's identity numbers and waits for
// the result
func (s *ProcessingService) RefreshIdentityNumbers(ctx context.Context, vendorID, sessionID string, orderDetailID int64) (*SessionView, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	err = e.session.BeginIdentityFetch(orderDetailID, s.now())
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := mergeCancel(ctx, e.ctx)
	defer cancel()
	s.fetchLineIdentities(fetchCtx, e, orderDetailID)
	return s.view(e)
}

// GetSession returns the current state of a session
func (s *ProcessingService) GetSession(_ context.Context, vendorID, sessionID string) (*SessionView, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(e)
}

// ToggleLine includes or excludes an order line
func (s *ProcessingService) ToggleLine(_ context.Context, vendorID, sessionID string, orderDetailID int64, include bool) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.ToggleLine(orderDetailID, include, now)
	})
}

// SetLineQuantity changes the refunded quantity of a line
func (s *ProcessingService) SetLineQuantity(_ context.Context, vendorID, sessionID string, orderDetailID int64, quantity int) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.SetLineQuantity(orderDetailID, quantity, now)
	})
}

// SetLineSerial sets the serial number at index for a line
func (s *ProcessingService) SetLineSerial(_ context.Context, vendorID, sessionID string, orderDetailID int64, index int, serial string) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.SetLineSerial(orderDetailID, index, serial, now)
	})
}

// SetLineLot sets the lot number of a line
func (s *ProcessingService) SetLineLot(_ context.Context, vendorID, sessionID string, orderDetailID int64, lot string) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.SetLineLot(orderDetailID, lot, now)
	})
}

// SetRefundAmount overrides the computed refund amount
func (s *ProcessingService) SetRefundAmount(_ context.Context, vendorID, sessionID string, amount decimal.Decimal) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.SetRefundAmount(amount, now)
	})
}

// ResetRefundAmount returns to the computed refund amount
func (s *ProcessingService) ResetRefundAmount(_ context.Context, vendorID, sessionID string) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		return sess.ResetRefundAmount(now)
	})
}

// PaymentInput is the payment section of the refund dialog
type PaymentInput struct {
	BankAccountID    int64
	ManualMode       bool
	GatewayPaymentID string
}

// UpdatePayment selects the bank account and the payment mode
func (s *ProcessingService) UpdatePayment(_ context.Context, vendorID, sessionID string, in PaymentInput) (*SessionView, error) {
	return s.mutate(vendorID, sessionID, func(sess *refund.Session, now time.Time) error {
		if err := sess.SelectBankAccount(in.BankAccountID, now); err != nil {
			return err
		}
		return sess.SetPaymentMode(in.ManualMode, in.GatewayPaymentID, now)
	})
}

// LotAvailability lists the lots exported against a line with the quantity
// still available in each
func (s *ProcessingService) LotAvailability(_ context.Context, vendorID, sessionID string, orderDetailID int64) ([]refund.LotQuantity, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	line, err := e.session.Line(orderDetailID)
	if err != nil {
		return nil, err
	}
	return refund.SortedLotAvailability(line.ExportedIdentityNumbers), nil
}

// Validate runs the submission rules. A violation is returned as a
// *refund.ValidationError together with the updated session.
func (s *ProcessingService) Validate(ctx context.Context, vendorID, sessionID string) (*SessionView, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	now := s.now()
	verr, err := e.session.Validate(now)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	view := ToSessionView(e.session, now)
	e.mu.Unlock()

	if verr != nil {
		s.metrics.ValidationFailed(ctx, verr.Rule)
		return view, verr
	}
	return view, nil
}

// Submit validates the session and posts the refund upstream. Only one
// submission per ticket runs at a time across instances. Upstream failures,
// including transport errors, come back as a failed SubmitResult rather
// than an error.
func (s *ProcessingService) Submit(ctx context.Context, vendorID, sessionID string) (*SubmitResult, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}
	ticketID := e.session.TicketID
	leaseKey := submissionLeaseKey(ticketID)

	ctx, span := telemetry.StartServiceSpan(ctx, "refund", "submit",
		telemetry.Attr(telemetry.SpanAttrSessionID, sessionID),
		telemetry.Attr(telemetry.SpanAttrTicketID, ticketID),
	)
	defer span.End()

	acquired, err := s.guard.TryAcquire(ctx, leaseKey, s.cfg.SubmitLeaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire submission lease: %w", err)
	}
	if !acquired {
		return nil, refund.ErrSubmissionInProgress
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), leaseKey); err != nil {
			s.logger.Warn("failed to release submission lease", zap.String("key", leaseKey), zap.Error(err))
		}
	}()

	e.mu.Lock()
	payload, verr, err := e.session.BeginSubmit(s.now())
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if verr != nil {
		view := ToSessionView(e.session, s.now())
		e.mu.Unlock()
		s.metrics.ValidationFailed(ctx, verr.Rule)
		return &SubmitResult{Session: view}, verr
	}
	amount := e.session.RefundAmount
	e.mu.Unlock()

	log := logger.WithLogger(ctx, s.logger).With(
		zap.String("session_id", sessionID),
		zap.Int64("ticket_id", ticketID),
	)

	start := s.now()
	reply, callErr := s.backend.SubmitRefund(context.WithoutCancel(ctx), ticketID, *payload)
	took := s.now().Sub(start)
	if callErr != nil {
		log.Error("refund request failed", zap.Error(callErr))
		telemetry.RecordError(span, callErr)
		reply = refund.UpstreamReply{Accepted: false}
	}

	e.mu.Lock()
	now := s.now()
	result := e.session.CompleteSubmission(reply, now)
	view := ToSessionView(e.session, now)
	event := refund.NewSubmissionEvent(e.session, amount, *payload, result, took, now)
	e.mu.Unlock()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, amount,
		telemetry.SpanAttrOutcome, string(result.Outcome),
	)
	s.publish(ctx, event)
	log.Info("refund submission completed",
		zap.String("outcome", string(result.Outcome)),
		zap.String("amount", amount.String()),
		zap.Duration("took", took),
	)

	return &SubmitResult{
		SubmissionResult:      result,
		TicketRefreshRequired: result.Outcome == refund.OutcomeSucceeded,
		Session:               view,
	}, nil
}

// CloseSession discards a session. Pending identity fetches are cancelled.
func (s *ProcessingService) CloseSession(ctx context.Context, vendorID, sessionID string) error {
	if _, err := s.entry(vendorID, sessionID); err != nil {
		return err
	}
	e, ok := s.sessions.remove(sessionID)
	if !ok {
		return refund.ErrSessionNotFound
	}
	s.closeEntry(ctx, e, CloseReasonClosed)
	return nil
}

// ListSubmissions returns the vendor's submission history for a ticket,
// newest first
func (s *ProcessingService) ListSubmissions(ctx context.Context, vendorID string, ticketID int64) ([]SubmissionView, error) {
	if s.history == nil {
		return []SubmissionView{}, nil
	}
	records, err := s.history.FindByTicket(ctx, ticketID, s.cfg.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list refund submissions: %w", err)
	}
	views := make([]SubmissionView, 0, len(records))
	for _, r := range records {
		if r.VendorID != vendorID {
			continue
		}
		views = append(views, ToSubmissionView(r))
	}
	return views, nil
}

// OpenSessions returns the number of sessions held in memory
func (s *ProcessingService) OpenSessions() int {
	return s.sessions.Len()
}

func (s *ProcessingService) closeEntry(ctx context.Context, e *sessionEntry, reason string) {
	e.cancel()

	e.mu.Lock()
	now := s.now()
	e.session.Close(now)
	event := refund.NewSessionClosedEvent(e.session, reason, now)
	e.mu.Unlock()

	s.publish(ctx, event)
	s.logger.Info("refund session closed",
		zap.String("session_id", e.session.ID),
		zap.String("reason", reason),
	)
}

// entry looks up a session owned by vendorID. Sessions of other vendors
// are reported as not found.
func (s *ProcessingService) entry(vendorID, sessionID string) (*sessionEntry, error) {
	e, ok := s.sessions.get(sessionID)
	if !ok || e.session.VendorID != vendorID {
		return nil, refund.ErrSessionNotFound
	}
	return e, nil
}

func (s *ProcessingService) mutate(vendorID, sessionID string, fn func(*refund.Session, time.Time) error) (*SessionView, error) {
	e, err := s.entry(vendorID, sessionID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	now := s.now()
	if err := fn(e.session, now); err != nil {
		return nil, err
	}
	return ToSessionView(e.session, now), nil
}

func (s *ProcessingService) view(e *sessionEntry) (*SessionView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.IsClosed() {
		return nil, refund.ErrSessionClosed
	}
	return ToSessionView(e.session, s.now()), nil
}

func (s *ProcessingService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish refund events", zap.Error(err))
	}
}

func submissionLeaseKey(ticketID int64) string {
	return "ticket:" + strconv.FormatInt(ticketID, 10)
}

// mergeCancel returns a context derived from a that is also cancelled when b is done
func mergeCancel(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(a)
	stop := context.AfterFunc(b, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}
