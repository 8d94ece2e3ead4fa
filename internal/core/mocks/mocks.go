package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/arvik/support-analytics-backend/internal/core/domain"
	"github.com/arvik/support-analytics-backend/internal/core/ports"
)

// MockScopeResolver is a mock implementation of ports.ScopeResolver
type MockScopeResolver struct {
	mock.Mock
}

func NewMockScopeResolver() *MockScopeResolver {
	return &MockScopeResolver{}
}

func (m *MockScopeResolver) Resolve(ctx context.Context, ref domain.ScopeRef) (ports.ScopeReader, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ports.ScopeReader), args.Error(1)
}

// MockScopeReader is a mock implementation of ports.ScopeReader
type MockScopeReader struct {
	mock.Mock
}

func NewMockScopeReader() *MockScopeReader {
	return &MockScopeReader{}
}

func (m *MockScopeReader) ConversationCountsByDay(ctx context.Context, r domain.DateRange) ([]ports.DailyCount, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DailyCount), args.Error(1)
}

func (m *MockScopeReader) MessageCountsByDay(ctx context.Context, r domain.DateRange, direction domain.MessageDirection) ([]ports.DailyCount, error) {
	args := m.Called(ctx, r, direction)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DailyCount), args.Error(1)
}

func (m *MockScopeReader) ResolvedConversationCountsByDay(ctx context.Context, r domain.DateRange) ([]ports.DailyCount, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DailyCount), args.Error(1)
}

func (m *MockScopeReader) EventValueAveragesByDay(ctx context.Context, r domain.DateRange, name domain.ReportingEventName) ([]ports.DailyAverage, error) {
	args := m.Called(ctx, r, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.DailyAverage), args.Error(1)
}

// MockConversationRepository is a mock implementation of ports.ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func NewMockConversationRepository() *MockConversationRepository {
	return &MockConversationRepository{}
}

func (m *MockConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) (*domain.Conversation, error) {
	args := m.Called(ctx, conversation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) GetByID(ctx context.Context, accountID, conversationID int64) (*domain.Conversation, error) {
	args := m.Called(ctx, accountID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationRepository) Update(ctx context.Context, conversation *domain.Conversation) error {
	args := m.Called(ctx, conversation)
	return args.Error(0)
}

func (m *MockConversationRepository) CreateMessage(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockConversationRepository) SoftDeleteMessage(ctx context.Context, accountID, conversationID, messageID int64) error {
	args := m.Called(ctx, accountID, conversationID, messageID)
	return args.Error(0)
}

func (m *MockConversationRepository) CreateReportingEvent(ctx context.Context, event *domain.ReportingEvent) (*domain.ReportingEvent, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReportingEvent), args.Error(1)
}

// MockInboxRepository is a mock implementation of ports.InboxRepository
type MockInboxRepository struct {
	mock.Mock
}

func NewMockInboxRepository() *MockInboxRepository {
	return &MockInboxRepository{}
}

func (m *MockInboxRepository) GetByID(ctx context.Context, accountID, inboxID int64) (*domain.Inbox, error) {
	args := m.Called(ctx, accountID, inboxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Inbox), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, accountID, userID int64) (*domain.User, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockTransactionManager is a mock implementation of ports.TransactionManager.
// WithTransaction runs the callback inline so service logic inside the
// transaction stays observable to the test.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

// MockEventDispatcher is a mock implementation of ports.EventDispatcher
type MockEventDispatcher struct {
	mock.Mock
}

func NewMockEventDispatcher() *MockEventDispatcher {
	return &MockEventDispatcher{}
}

func (m *MockEventDispatcher) Dispatch(event domain.Event) {
	m.Called(event)
}

func (m *MockEventDispatcher) Shutdown() {
	m.Called()
}

// MockEventListener is a mock implementation of ports.EventListener
type MockEventListener struct {
	mock.Mock
}

func NewMockEventListener() *MockEventListener {
	return &MockEventListener{}
}

func (m *MockEventListener) HandleEvent(event domain.Event) {
	m.Called(event)
}

// MockReportService is a mock implementation of ports.ReportService
type MockReportService struct {
	mock.Mock
}

func NewMockReportService() *MockReportService {
	return &MockReportService{}
}

func (m *MockReportService) TimeSeries(ctx context.Context, query ports.ReportQuery) (*domain.TimeSeries, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSeries), args.Error(1)
}

func (m *MockReportService) LegacySeries(ctx context.Context, query ports.ReportQuery) ([]domain.LegacyPoint, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LegacyPoint), args.Error(1)
}

func (m *MockReportService) Summary(ctx context.Context, query ports.SummaryQuery) (*domain.Summary, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

// MockConversationService is a mock implementation of ports.ConversationService
type MockConversationService struct {
	mock.Mock
}

func NewMockConversationService() *MockConversationService {
	return &MockConversationService{}
}

func (m *MockConversationService) CreateConversation(ctx context.Context, params ports.CreateConversationParams) (*domain.Conversation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationService) CreateMessage(ctx context.Context, params ports.CreateMessageParams) (*domain.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockConversationService) ResolveConversation(ctx context.Context, params ports.ResolveConversationParams) (*domain.Conversation, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *MockConversationService) DeleteMessage(ctx context.Context, params ports.DeleteMessageParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Register(ctx context.Context, fullName, email, password string, accountID int64, role domain.UserRole) (*domain.User, error) {
	args := m.Called(ctx, fullName, email, password, accountID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
