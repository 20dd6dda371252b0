package finance

import (
	"context"
	"fmt"
	"net/url"

	"solomanager/internal/api"
)

// Client reads the finance report endpoints.
type Client interface {
	GetData(ctx context.Context, period Period) (*Data, error)
	GetSummary(ctx context.Context) (*Summary, error)
}

type restClient struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) Client {
	return &restClient{api: apiClient}
}

type dataEnvelope struct {
	Data Data `json:"data"`
}

type summaryEnvelope struct {
	Summary Summary `json:"summary"`
}

func (c *restClient) GetData(ctx context.Context, period Period) (*Data, error) {
	if !ValidPeriod(period) {
		return nil, &api.ValidationError{Message: fmt.Sprintf("unknown period %q", period)}
	}

	q := url.Values{}
	q.Set("period", string(period))

	var out dataEnvelope
	if err := c.api.Get(ctx, "/api/finance/data?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func (c *restClient) GetSummary(ctx context.Context) (*Summary, error) {
	var out summaryEnvelope
	if err := c.api.Get(ctx, "/api/finance/summary", &out); err != nil {
		return nil, err
	}
	return &out.Summary, nil
}
