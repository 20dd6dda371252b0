package member

import (
	"context"

	"solomanager/internal/api"

	"github.com/stretchr/testify/mock"
)

// MockClient is a mock implementation of Client
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetMembers(ctx context.Context, page int, filter Filter) (*Page, error) {
	args := m.Called(ctx, page, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Page), args.Error(1)
}

func (m *MockClient) Search(ctx context.Context, query string, filter Filter) (*SearchResult, error) {
	args := m.Called(ctx, query, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SearchResult), args.Error(1)
}

func (m *MockClient) GetMember(ctx context.Context, id string) (*Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockClient) AddMember(ctx context.Context, req AddMemberRequest) (*Member, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockClient) UpdateMember(ctx context.Context, id string, fields map[string]any) (*Member, error) {
	args := m.Called(ctx, id, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockClient) UpdateMemberWithPhoto(ctx context.Context, id string, fields map[string]any, photo *api.Upload) (*Member, error) {
	args := m.Called(ctx, id, fields, photo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Member), args.Error(1)
}

func (m *MockClient) GetSubscriptions(ctx context.Context, memberID string, filter SubscriptionFilter) ([]Subscription, error) {
	args := m.Called(ctx, memberID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Subscription), args.Error(1)
}

func (m *MockClient) AddSubscription(ctx context.Context, memberID string, req SubscriptionRequest) error {
	args := m.Called(ctx, memberID, req)
	return args.Error(0)
}

func (m *MockClient) UpdateSubscription(ctx context.Context, subID string, req SubscriptionRequest) error {
	args := m.Called(ctx, subID, req)
	return args.Error(0)
}

func (m *MockClient) DeleteSubscription(ctx context.Context, subID string) error {
	args := m.Called(ctx, subID)
	return args.Error(0)
}

func (m *MockClient) GetExpired(ctx context.Context) ([]Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}

func (m *MockClient) GetExpiringSoon(ctx context.Context) ([]Member, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Member), args.Error(1)
}
