package member

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"solomanager/internal/api"
	"solomanager/internal/confirm"
	"solomanager/internal/notify"
)

var (
	ErrUnknownField     = errors.New("unknown member field")
	ErrFieldNotEditable = errors.New("field is not editable")
	ErrNotLoaded        = errors.New("no member loaded")
)

// DetailController owns one member's full detail: loading it, staging
// local edits against a draft, committing them, and mutating the nested
// subscription collection. After every successful mutation it reloads the
// detail and fires the refresh signal so list rows stay consistent.
type DetailController struct {
	client    Client
	notifier  notify.Notifier
	confirmer confirm.Confirmer
	onMutate  func()

	mu      sync.Mutex
	loading bool
	member  *Member
	draft   map[string]string
}

func NewDetailController(client Client, notifier notify.Notifier, confirmer confirm.Confirmer, onMutate func()) *DetailController {
	if onMutate == nil {
		onMutate = func() {}
	}
	return &DetailController{
		client:    client,
		notifier:  notifier,
		confirmer: confirmer,
		onMutate:  onMutate,
		draft:     map[string]string{},
	}
}

// Load fetches the full detail. The previous entity is dropped before the
// fetch so consumers render a loading state, never stale partial fields.
func (c *DetailController) Load(ctx context.Context, id string) error {
	c.mu.Lock()
	c.loading = true
	c.member = nil
	c.draft = map[string]string{}
	c.mu.Unlock()

	m, err := c.client.GetMember(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.notifier.Error("Failed to load member")
		return err
	}
	c.member = m
	return nil
}

func (c *DetailController) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Member returns a copy of the last-loaded baseline. Staged edits are not
// reflected here until Commit succeeds.
func (c *DetailController) Member() (Member, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.member == nil {
		return Member{}, false
	}
	return *c.member, true
}

// StageEdit records a local draft edit. The baseline is untouched until
// Commit.
func (c *DetailController) StageEdit(field, value string) error {
	f, ok := fieldByName(field)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !f.Editable {
		return fmt.Errorf("%w: %s", ErrFieldNotEditable, field)
	}
	if f.Kind == KindNumber && value != "" {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return &api.ValidationError{Message: f.Label + " must be a number"}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.member == nil {
		return ErrNotLoaded
	}
	c.draft[field] = value
	return nil
}

func (c *DetailController) Draft() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.draft))
	for k, v := range c.draft {
		out[k] = v
	}
	return out
}

// Commit sends the staged edits merged over the baseline. Server-managed
// and nested fields never enter the payload; an empty-but-present
// start_date goes out as the "Pending start" sentinel so the server can
// tell "never set" from "not provided". The server's canonical entity
// becomes the new baseline.
func (c *DetailController) Commit(ctx context.Context) (*Member, error) {
	return c.commit(ctx, nil)
}

// CommitWithPhoto is Commit with a binary image attached; the payload
// switches to multipart form encoding.
func (c *DetailController) CommitWithPhoto(ctx context.Context, photo *api.Upload) (*Member, error) {
	return c.commit(ctx, photo)
}

func (c *DetailController) commit(ctx context.Context, photo *api.Upload) (*Member, error) {
	c.mu.Lock()
	if c.member == nil {
		c.mu.Unlock()
		return nil, ErrNotLoaded
	}
	id := c.member.ID
	payload := buildPayload(c.member, c.draft)
	c.mu.Unlock()

	var updated *Member
	var err error
	if photo != nil {
		updated, err = c.client.UpdateMemberWithPhoto(ctx, id, payload, photo)
	} else {
		updated, err = c.client.UpdateMember(ctx, id, payload)
	}
	if err != nil {
		c.notifier.Error("Error updating member")
		return nil, err
	}

	c.mu.Lock()
	c.member = updated
	c.draft = map[string]string{}
	c.mu.Unlock()

	c.notifier.Success("Member updated successfully")
	c.onMutate()
	return updated, nil
}

// buildPayload merges the draft over the baseline's editable fields. A
// field enters the payload when it was staged or has a baseline value.
func buildPayload(m *Member, draft map[string]string) map[string]any {
	payload := map[string]any{}
	for _, f := range MemberFields {
		if !f.Editable {
			continue
		}
		if raw, staged := draft[f.Name]; staged {
			payload[f.Name] = convertField(f, raw)
			continue
		}
		if v, present := baselineValue(m, f.Name); present {
			payload[f.Name] = v
		}
	}
	if v, ok := payload["start_date"]; ok {
		if s, isStr := v.(string); isStr && s == "" {
			payload["start_date"] = PendingStart
		}
	}
	return payload
}

func convertField(f Field, raw string) any {
	if f.Kind != KindNumber || raw == "" {
		return raw
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	if n == float64(int64(n)) {
		return int(n)
	}
	return n
}

// Subscriptions lists the loaded member's subscription history.
func (c *DetailController) Subscriptions(ctx context.Context, filter SubscriptionFilter) ([]Subscription, error) {
	c.mu.Lock()
	if c.member == nil {
		c.mu.Unlock()
		return nil, ErrNotLoaded
	}
	id := c.member.ID
	c.mu.Unlock()

	subs, err := c.client.GetSubscriptions(ctx, id, filter)
	if err != nil {
		c.notifier.Error("Failed to fetch subscriptions")
		return nil, err
	}
	return subs, nil
}

// AddSubscription creates a subscription for the loaded member, then
// reloads the detail and signals the list.
func (c *DetailController) AddSubscription(ctx context.Context, req SubscriptionRequest) error {
	c.mu.Lock()
	if c.member == nil {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	id := c.member.ID
	c.mu.Unlock()

	if req.StartDate == "" {
		req.StartDate = PendingStart
	}
	if err := c.client.AddSubscription(ctx, id, req); err != nil {
		c.notifier.Error("Failed to add subscription")
		return err
	}
	c.notifier.Success("Subscription added successfully!")
	return c.afterSubscriptionChange(ctx, id)
}

func (c *DetailController) UpdateSubscription(ctx context.Context, subID string, req SubscriptionRequest) error {
	c.mu.Lock()
	if c.member == nil {
		c.mu.Unlock()
		return ErrNotLoaded
	}
	id := c.member.ID
	c.mu.Unlock()

	if req.StartDate == "" {
		req.StartDate = PendingStart
	}
	if err := c.client.UpdateSubscription(ctx, subID, req); err != nil {
		c.notifier.Error("Failed to update subscription")
		return err
	}
	c.notifier.Success("Subscription updated successfully!")
	return c.afterSubscriptionChange(ctx, id)
}

// DeleteSubscription asks for confirmation before sending anything.
// Declining performs no request and reports deleted=false.
func (c *DetailController) DeleteSubscription(ctx context.Context, sub Subscription) (bool, error) {
	c.mu.Lock()
	if c.member == nil {
		c.mu.Unlock()
		return false, ErrNotLoaded
	}
	id := c.member.ID
	c.mu.Unlock()

	prompt := fmt.Sprintf("Are you sure you want to delete the %s subscription? This action cannot be undone.", sub.Plan)
	ok, err := c.confirmer.Confirm(ctx, prompt)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := c.client.DeleteSubscription(ctx, sub.ID); err != nil {
		c.notifier.Error("Failed to delete subscription")
		return false, err
	}
	c.notifier.Success("Subscription deleted successfully!")
	if err := c.afterSubscriptionChange(ctx, id); err != nil {
		return true, err
	}
	return true, nil
}

// afterSubscriptionChange reloads the parent detail so derived fields
// like plan and days_left stay consistent, then fires the list refresh.
// The mutation already landed on the server, so the refresh signal fires
// even when the reload fails.
func (c *DetailController) afterSubscriptionChange(ctx context.Context, id string) error {
	m, err := c.client.GetMember(ctx, id)
	if err != nil {
		c.notifier.Error("Failed to refresh member")
		c.onMutate()
		return err
	}
	c.mu.Lock()
	c.member = m
	c.mu.Unlock()
	c.onMutate()
	return nil
}
