package notion

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	args := m.Called(ctx, dbID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.DatabaseQueryResponse), args.Error(1)
}

func (m *MockClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	args := m.Called(ctx, pageID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notionapi.Page), args.Error(1)
}

func TestMockClientSatisfiesInterface(t *testing.T) {
	t.Parallel()
	var _ Client = (*MockClient)(nil)
}

func TestQueryAll_SinglePage(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-123", mock.AnythingOfType("*notionapi.DatabaseQueryRequest")).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-1"}, {ID: "page-2"}},
			HasMore: false,
		}, nil)

	pages, err := QueryAll(ctx, mc, "db-123", nil)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	mc.AssertExpectations(t)
}

func TestQueryAll_Paginates(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	first := mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == ""
	})
	second := mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		return req.StartCursor == "cursor-2"
	})

	mc.On("QueryDatabase", ctx, "db-123", first).
		Return(&notionapi.DatabaseQueryResponse{
			Results:    []notionapi.Page{{ID: "page-1"}},
			HasMore:    true,
			NextCursor: "cursor-2",
		}, nil).Once()
	mc.On("QueryDatabase", ctx, "db-123", second).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "page-2"}},
			HasMore: false,
		}, nil).Once()

	pages, err := QueryAll(ctx, mc, "db-123", nil)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, notionapi.ObjectID("page-1"), pages[0].ID)
	assert.Equal(t, notionapi.ObjectID("page-2"), pages[1].ID)
	mc.AssertExpectations(t)
}

func TestQueryAll_PropagatesError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-123", mock.Anything).
		Return(nil, errors.New("boom"))

	_, err := QueryAll(ctx, mc, "db-123", nil)
	assert.Error(t, err)
}

func TestQueryQueuedLeads_FiltersOnStatus(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	queuedFilter := mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		return ok && pf.Property == "Status" &&
			pf.Status != nil && pf.Status.Equals == StatusQueued
	})

	mc.On("QueryDatabase", ctx, "lead-db", queuedFilter).
		Return(&notionapi.DatabaseQueryResponse{
			Results: []notionapi.Page{{ID: "lead-1"}},
			HasMore: false,
		}, nil)

	pages, err := QueryQueuedLeads(ctx, mc, "lead-db")
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	mc.AssertExpectations(t)
}

func TestUpdateLeadStatus_WithEmail(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	withEmail := mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		status, ok := req.Properties["Status"].(notionapi.StatusProperty)
		if !ok || status.Status.Name != StatusEnriched {
			return false
		}
		email, ok := req.Properties["Email"].(notionapi.EmailProperty)
		if !ok || email.Email != "pc@stripe.com" {
			return false
		}
		_, hasDate := req.Properties["Last Enriched"]
		return hasDate
	})

	mc.On("UpdatePage", ctx, "lead-1", withEmail).
		Return(&notionapi.Page{ID: "lead-1"}, nil)

	err := UpdateLeadStatus(ctx, mc, "lead-1", StatusEnriched, "pc@stripe.com")
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestUpdateLeadStatus_NoEmailOmitted(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	noEmail := mock.MatchedBy(func(req *notionapi.PageUpdateRequest) bool {
		status, ok := req.Properties["Status"].(notionapi.StatusProperty)
		if !ok || status.Status.Name != StatusFailed {
			return false
		}
		_, hasEmail := req.Properties["Email"]
		return !hasEmail
	})

	mc.On("UpdatePage", ctx, "lead-1", noEmail).
		Return(&notionapi.Page{ID: "lead-1"}, nil)

	err := UpdateLeadStatus(ctx, mc, "lead-1", StatusFailed, "")
	require.NoError(t, err)
	mc.AssertExpectations(t)
}

func TestUpdateLeadStatus_PropagatesError(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("UpdatePage", ctx, "lead-1", mock.Anything).
		Return(nil, errors.New("rate limited"))

	err := UpdateLeadStatus(ctx, mc, "lead-1", StatusEnriched, "")
	assert.Error(t, err)
}
