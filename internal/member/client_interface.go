package member

import (
	"context"

	"solomanager/internal/api"
)

// Page is one page of the paged member listing.
type Page struct {
	Members      []Member `json:"members"`
	TotalPages   int      `json:"totalPages"`
	TotalMembers int      `json:"totalMembers"`
	CurrentPage  int      `json:"currentPage"`
}

// SearchResult is an unpaginated search hit list with its own total.
type SearchResult struct {
	Members      []Member `json:"members"`
	TotalMembers int      `json:"totalMembers"`
}

type AddMemberRequest struct {
	RollNo      string  `json:"roll_no" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	PhoneNumber string  `json:"phone_number" validate:"required"`
	Age         int     `json:"age,omitempty" validate:"gte=0,lte=120"`
	Gender      string  `json:"gender,omitempty"`
	Height      float64 `json:"height,omitempty" validate:"gte=0"`
	Weight      float64 `json:"weight,omitempty" validate:"gte=0"`
	Address     string  `json:"address,omitempty"`
}

type SubscriptionRequest struct {
	Plan      Plan    `json:"plan" validate:"required"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	ExtraDays int     `json:"extra_days" validate:"gte=0"`
	StartDate string  `json:"start_date"`
	Status    Status  `json:"status,omitempty"`
}

type Client interface {
	GetMembers(ctx context.Context, page int, filter Filter) (*Page, error)
	Search(ctx context.Context, query string, filter Filter) (*SearchResult, error)
	GetMember(ctx context.Context, id string) (*Member, error)
	AddMember(ctx context.Context, req AddMemberRequest) (*Member, error)
	UpdateMember(ctx context.Context, id string, fields map[string]any) (*Member, error)
	UpdateMemberWithPhoto(ctx context.Context, id string, fields map[string]any, photo *api.Upload) (*Member, error)
	GetSubscriptions(ctx context.Context, memberID string, filter SubscriptionFilter) ([]Subscription, error)
	AddSubscription(ctx context.Context, memberID string, req SubscriptionRequest) error
	UpdateSubscription(ctx context.Context, subID string, req SubscriptionRequest) error
	DeleteSubscription(ctx context.Context, subID string) error
	GetExpired(ctx context.Context) ([]Member, error)
	GetExpiringSoon(ctx context.Context) ([]Member, error)
}
