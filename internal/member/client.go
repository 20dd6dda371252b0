package member

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"solomanager/internal/api"
	"solomanager/internal/metrics"
)

type restClient struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) Client {
	return &restClient{api: apiClient}
}

func (c *restClient) GetMembers(ctx context.Context, page int, filter Filter) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if filter == "" {
		filter = FilterAll
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(PageSize))
	q.Set("filter", string(filter))

	var out Page
	if err := c.api.Get(ctx, "/api/member/get-members?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) Search(ctx context.Context, query string, filter Filter) (*SearchResult, error) {
	if filter == "" {
		filter = FilterAll
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("filter", string(filter))

	metrics.RecordSearch()
	var out SearchResult
	if err := c.api.Get(ctx, "/api/member/search?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *restClient) GetMember(ctx context.Context, id string) (*Member, error) {
	var out struct {
		Member Member `json:"member"`
	}
	if err := c.api.Get(ctx, "/api/member/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out.Member, nil
}

func (c *restClient) AddMember(ctx context.Context, req AddMemberRequest) (*Member, error) {
	if err := api.ValidateStruct(req); err != nil {
		return nil, err
	}

	var out struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Member  Member `json:"member"`
	}
	if err := c.api.Post(ctx, "/api/member/add", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &api.ValidationError{Message: out.Message}
	}
	metrics.RecordMemberMutation("add")
	return &out.Member, nil
}

func (c *restClient) UpdateMember(ctx context.Context, id string, fields map[string]any) (*Member, error) {
	var out struct {
		Member Member `json:"member"`
	}
	if err := c.api.Put(ctx, "/api/member/"+url.PathEscape(id), fields, &out); err != nil {
		return nil, err
	}
	metrics.RecordMemberMutation("update")
	return &out.Member, nil
}

func (c *restClient) UpdateMemberWithPhoto(ctx context.Context, id string, fields map[string]any, photo *api.Upload) (*Member, error) {
	form := make(map[string]string, len(fields))
	for k, v := range fields {
		form[k] = fmt.Sprint(v)
	}

	var out struct {
		Member Member `json:"member"`
	}
	if err := c.api.PutMultipart(ctx, "/api/member/"+url.PathEscape(id), form, photo, &out); err != nil {
		return nil, err
	}
	metrics.RecordMemberMutation("update")
	return &out.Member, nil
}

func (c *restClient) GetSubscriptions(ctx context.Context, memberID string, filter SubscriptionFilter) ([]Subscription, error) {
	if filter == "" {
		filter = SubFilterAll
	}
	var out struct {
		Subscriptions []Subscription `json:"subscriptions"`
	}
	path := "/api/member/" + url.PathEscape(memberID) + "/subscriptions?filter=" + url.QueryEscape(string(filter))
	if err := c.api.Get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out.Subscriptions, nil
}

func validateSubscription(req SubscriptionRequest) error {
	if err := api.ValidateStruct(req); err != nil {
		return err
	}
	if !ValidPlan(req.Plan) {
		return &api.ValidationError{Message: fmt.Sprintf("unknown plan %q", req.Plan)}
	}
	if req.Status != "" && req.Status != StatusActive && req.Status != StatusUpcoming {
		return &api.ValidationError{Message: fmt.Sprintf("status %q cannot be assigned", req.Status)}
	}
	return nil
}

func (c *restClient) AddSubscription(ctx context.Context, memberID string, req SubscriptionRequest) error {
	if err := validateSubscription(req); err != nil {
		return err
	}
	path := "/api/member/" + url.PathEscape(memberID) + "/subscription"
	if err := c.api.Post(ctx, path, req, nil); err != nil {
		return err
	}
	metrics.RecordMemberMutation("subscription_add")
	return nil
}

func (c *restClient) UpdateSubscription(ctx context.Context, subID string, req SubscriptionRequest) error {
	if err := validateSubscription(req); err != nil {
		return err
	}
	path := "/api/member/subscription/" + url.PathEscape(subID)
	if err := c.api.Put(ctx, path, req, nil); err != nil {
		return err
	}
	metrics.RecordMemberMutation("subscription_update")
	return nil
}

func (c *restClient) DeleteSubscription(ctx context.Context, subID string) error {
	path := "/api/member/subscription/" + url.PathEscape(subID)
	if err := c.api.Delete(ctx, path, nil); err != nil {
		return err
	}
	metrics.RecordMemberMutation("subscription_delete")
	return nil
}

func (c *restClient) GetExpired(ctx context.Context) ([]Member, error) {
	var out struct {
		ExpiredSubscriptions []Member `json:"expiredSubscriptions"`
	}
	if err := c.api.Get(ctx, "/api/member/expired", &out); err != nil {
		return nil, err
	}
	return out.ExpiredSubscriptions, nil
}

func (c *restClient) GetExpiringSoon(ctx context.Context) ([]Member, error) {
	var out struct {
		ExpiringSoon []Member `json:"expiringSoon"`
	}
	if err := c.api.Post(ctx, "/api/member/expiring-soon", struct{}{}, &out); err != nil {
		return nil, err
	}
	return out.ExpiringSoon, nil
}
