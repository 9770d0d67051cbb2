package cmd

import (
	"bytes"
	stdcontext "context"
	"testing"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/stretchr/testify/assert"
)

func TestClientUpdateCommand(t *testing.T) {
	mockClient := &api.MockDispatcher{
		UpdateClientFunc: func(ctx stdcontext.Context, id string, req *api.UpdateClientRequest) (*api.Client, error) {
			assert.Equal(t, "acme", id)
			if assert.NotNil(t, req.DailyLimit) {
				assert.Equal(t, 50, *req.DailyLimit)
			}
			assert.Nil(t, req.AccessToken)
			assert.Nil(t, req.Keywords)
			assert.Nil(t, req.Active)

			return &api.Client{TenantID: id, Active: true, DailyLimit: 50}, nil
		},
	}

	cmd := newClientUpdateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme", "--daily-limit", "50"})

	err := cmd.Execute()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "updated")
}

func TestClientUpdateCommand_ReplacesKeywords(t *testing.T) {
	mockClient := &api.MockDispatcher{
		UpdateClientFunc: func(ctx stdcontext.Context, id string, req *api.UpdateClientRequest) (*api.Client, error) {
			if assert.NotNil(t, req.Keywords) {
				assert.Len(t, *req.Keywords, 1)
				assert.Equal(t, "shipping", (*req.Keywords)[0].Keyword)
			}
			return &api.Client{TenantID: id, Active: true, Keywords: *req.Keywords}, nil
		},
	}

	cmd := newClientUpdateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme", "--keyword", "shipping=Ships in 2 days"})

	err := cmd.Execute()
	assert.NoError(t, err)
}

func TestClientUpdateCommand_Deactivate(t *testing.T) {
	mockClient := &api.MockDispatcher{
		UpdateClientFunc: func(ctx stdcontext.Context, id string, req *api.UpdateClientRequest) (*api.Client, error) {
			if assert.NotNil(t, req.Active) {
				assert.False(t, *req.Active)
			}
			return &api.Client{TenantID: id, Active: false}, nil
		},
	}

	cmd := newClientUpdateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme", "--active=false"})

	err := cmd.Execute()
	assert.NoError(t, err)
}

func TestClientUpdateCommand_NoFlags(t *testing.T) {
	mockClient := &api.MockDispatcher{}

	cmd := newClientUpdateCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"acme"})

	err := cmd.Execute()
	assert.Error(t, err)
}
