package admin

import (
	"context"

	"solomanager/internal/api"
)

// Client covers the gym-owner-only operations. Callers are expected to
// gate these behind the admin role before reaching the network.
type Client struct {
	api *api.Client
}

func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

type InviteManagerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type resultEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UpdateGymName renames the gym. The server echoes the change back on the
// next identity fetch; callers overwrite the stored session themselves.
func (c *Client) UpdateGymName(ctx context.Context, name string) error {
	if name == "" {
		return &api.ValidationError{Message: "gym name is required"}
	}

	body := map[string]string{"gym_name": name}
	var out resultEnvelope
	if err := c.api.Put(ctx, "/api/admin/update-gym-name", body, &out); err != nil {
		return err
	}
	if !out.Success {
		return &api.ValidationError{Message: out.Message}
	}
	return nil
}

// InviteManager creates a manager account scoped to the caller's gym.
func (c *Client) InviteManager(ctx context.Context, req InviteManagerRequest) error {
	if err := api.ValidateStruct(req); err != nil {
		return err
	}

	var out resultEnvelope
	if err := c.api.Post(ctx, "/api/admin/invite-manager", req, &out); err != nil {
		return err
	}
	if !out.Success {
		return &api.ValidationError{Message: out.Message}
	}
	return nil
}
