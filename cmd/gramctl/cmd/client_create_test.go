package cmd

import (
	"bytes"
	stdcontext "context"
	"testing"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/stretchr/testify/assert"
)

func TestClientCreateCommand(t *testing.T) {
	mockClient := &api.MockDispatcher{
		CreateClientFunc: func(ctx stdcontext.Context, req *api.CreateClientRequest) (*api.CreateClientResponse, error) {
			assert.Equal(t, "acme", req.TenantID)
			assert.Equal(t, "17841400000000000", req.AccountID)
			assert.Equal(t, "IGQWRP...", req.AccessToken)
			if assert.Len(t, req.Keywords, 2) {
				assert.Equal(t, "price", req.Keywords[0].Keyword)
				assert.Equal(t, "Prices start at $10", req.Keywords[0].Response)
				assert.Equal(t, "hours", req.Keywords[1].Keyword)
			}
			if assert.NotNil(t, req.DailyLimit) {
				assert.Equal(t, 500, *req.DailyLimit)
			}

			return &api.CreateClientResponse{
				Client: api.Client{
					TenantID:   req.TenantID,
					AccountID:  req.AccountID,
					Active:     true,
					DailyLimit: *req.DailyLimit,
				},
				WebhookURL: "/webhook/tok123",
			}, nil
		},
	}

	cmd := newClientCreateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{
		"acme", "17841400000000000", "IGQWRP...",
		"--keyword", "price=Prices start at $10",
		"--keyword", "hours=Open 9-5",
		"--daily-limit", "500",
	})

	err := cmd.Execute()
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "acme")
	assert.Contains(t, output, "/webhook/tok123")
}

func TestClientCreateCommand_MissingArgs(t *testing.T) {
	mockClient := &api.MockDispatcher{}

	cmd := newClientCreateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"acme"})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestClientCreateCommand_BadKeywordFlag(t *testing.T) {
	mockClient := &api.MockDispatcher{}

	cmd := newClientCreateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"acme", "17841400000000000", "tok", "--keyword", "no-separator"})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestClientCreateCommand_DefaultLimit(t *testing.T) {
	mockClient := &api.MockDispatcher{
		CreateClientFunc: func(ctx stdcontext.Context, req *api.CreateClientRequest) (*api.CreateClientResponse, error) {
			if assert.NotNil(t, req.DailyLimit) {
				assert.Equal(t, 1000, *req.DailyLimit) // Default
			}
			return &api.CreateClientResponse{
				Client: api.Client{TenantID: req.TenantID, Active: true, DailyLimit: 1000},
			}, nil
		},
	}

	cmd := newClientCreateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme", "17841400000000000", "tok"})

	err := cmd.Execute()
	assert.NoError(t, err)
}
