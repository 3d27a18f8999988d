package refund

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vendorhub/console/internal/domain/refund"
	"github.com/vendorhub/console/internal/domain/shared"
)

// MockBackend is a mock implementation of Backend
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GetTicket(ctx context.Context, ticketID int64) (*refund.Ticket, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refund.Ticket), args.Error(1)
}

func (m *MockBackend) GetOrder(ctx context.Context, orderID int64) (*refund.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refund.Order), args.Error(1)
}

func (m *MockBackend) GetExportedIdentityNumbers(ctx context.Context, orderDetailID int64) ([]refund.IdentityNumberItem, error) {
	args := m.Called(ctx, orderDetailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]refund.IdentityNumberItem), args.Error(1)
}

func (m *MockBackend) GetVendorBankAccounts(ctx context.Context, userID string) ([]refund.BankAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]refund.BankAccount), args.Error(1)
}

func (m *MockBackend) GetSupportedBanks(ctx context.Context) ([]refund.SupportedBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]refund.SupportedBank), args.Error(1)
}

func (m *MockBackend) SubmitRefund(ctx context.Context, ticketID int64, payload refund.Payload) (refund.UpstreamReply, error) {
	args := m.Called(ctx, ticketID, payload)
	return args.Get(0).(refund.UpstreamReply), args.Error(1)
}

// MockSubmissionRepository is a mock implementation of refund.SubmissionRepository
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Save(ctx context.Context, record *refund.SubmissionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSubmissionRepository) FindByTicket(ctx context.Context, ticketID int64, limit int) ([]refund.SubmissionRecord, error) {
	args := m.Called(ctx, ticketID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]refund.SubmissionRecord), args.Error(1)
}

func (m *MockSubmissionRepository) FindByEventID(ctx context.Context, eventID uuid.UUID) (*refund.SubmissionRecord, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*refund.SubmissionRecord), args.Error(1)
}

// recordingPublisher keeps published events in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.DomainEvent
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// fakeLeases is an in-process LeaseStore without expiry
type fakeLeases struct {
	mu         sync.Mutex
	held       map[string]bool
	acquired   []string
	acquireErr error
}

func newFakeLeases() *fakeLeases {
	return &fakeLeases{held: make(map[string]bool)}
}

func (l *fakeLeases) TryAcquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.acquireErr != nil {
		return false, l.acquireErr
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	l.acquired = append(l.acquired, key)
	return true, nil
}

func (l *fakeLeases) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func (l *fakeLeases) Close() error { return nil }

func (l *fakeLeases) isHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

// recordingMetrics counts calls per metric
type recordingMetrics struct {
	mu          sync.Mutex
	opened      int
	outcomes    []refund.SubmissionOutcome
	rules       []refund.ValidationRule
	fetchOK     int
	fetchFailed int
}

func (m *recordingMetrics) SessionOpened(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened++
}

func (m *recordingMetrics) SubmissionCompleted(_ context.Context, outcome refund.SubmissionOutcome, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *recordingMetrics) ValidationFailed(_ context.Context, rule refund.ValidationRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, rule)
}

func (m *recordingMetrics) IdentityFetched(_ context.Context, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.fetchOK++
	} else {
		m.fetchFailed++
	}
}

func (m *recordingMetrics) fetches() (ok, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchOK, m.fetchFailed
}

// testClock is a settable clock safe for use from background goroutines
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
