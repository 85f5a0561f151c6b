package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/onbongo-leads/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id int64) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) List(ctx context.Context, limit, offset int) ([]entity.Lead, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]entity.Lead), args.Int(1), args.Error(2)
}

func (m *MockLeadRepository) SetWebhookDelivered(ctx context.Context, id int64, delivered bool) error {
	args := m.Called(ctx, id, delivered)
	return args.Error(0)
}

func (m *MockLeadRepository) SetConversionReported(ctx context.Context, id int64, reported bool) error {
	args := m.Called(ctx, id, reported)
	return args.Error(0)
}

func (m *MockLeadRepository) Stats(ctx context.Context, now time.Time) (*entity.LeadStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadStats), args.Error(1)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(lead *entity.Lead) {
	m.Called(lead)
}

type MockConversionMarker struct {
	mock.Mock
}

func (m *MockConversionMarker) MarkConversionReported(ctx context.Context, leadID int64) error {
	args := m.Called(ctx, leadID)
	return args.Error(0)
}

// memorySettings é um SettingRepositoryInterface em memória.
type memorySettings struct {
	mu     sync.Mutex
	values map[string]string
	setErr error
	getErr error
}

func newMemorySettings(values map[string]string) *memorySettings {
	if values == nil {
		values = map[string]string{}
	}
	return &memorySettings{values: values}
}

func (s *memorySettings) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *memorySettings) All(_ context.Context) ([]entity.Setting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Setting, 0, len(s.values))
	for k, v := range s.values {
		out = append(out, entity.Setting{Key: k, Value: v})
	}
	return out, nil
}

func (s *memorySettings) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

type fakeReporter struct {
	platform string
	result   entity.DeliveryResult
	panics   bool

	mu    sync.Mutex
	calls int
}

func (f *fakeReporter) Platform() string { return f.platform }

func (f *fakeReporter) Report(_ context.Context, _ *entity.Lead) entity.DeliveryResult {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panics {
		panic("platform exploded")
	}
	return f.result
}

func (f *fakeReporter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
