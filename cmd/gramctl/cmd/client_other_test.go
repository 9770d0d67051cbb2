package cmd

import (
	"bytes"
	stdcontext "context"
	"errors"
	"testing"

	"github.com/dmelo/gram-dispatch/internal/cli/api"
	"github.com/stretchr/testify/assert"
)

func TestClientListCommand(t *testing.T) {
	mockClient := &api.MockDispatcher{
		ListClientsFunc: func(ctx stdcontext.Context) ([]api.Client, error) {
			return []api.Client{
				{TenantID: "acme", AccountID: "178414", Active: true, DailyLimit: 1000},
				{TenantID: "globex", AccountID: "178415", Active: false, DailyLimit: 0},
			}, nil
		},
	}

	cmd := newClientListCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)

	err := cmd.Execute()
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "acme")
	assert.Contains(t, output, "globex")
	assert.Contains(t, output, "unlimited")
}

func TestClientGetCommand(t *testing.T) {
	mockClient := &api.MockDispatcher{
		GetClientFunc: func(ctx stdcontext.Context, id string) (*api.Client, error) {
			assert.Equal(t, "acme", id)
			return &api.Client{
				TenantID:   "acme",
				AccountID:  "178414",
				Active:     true,
				DailyLimit: 250,
				Keywords: []api.KeywordRule{
					{Keyword: "price", Response: "Prices start at $10"},
				},
			}, nil
		},
	}

	cmd := newClientGetCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme"})

	err := cmd.Execute()
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "acme")
	assert.Contains(t, output, "250/day")
	assert.Contains(t, output, "price -> Prices start at $10")
}

func TestClientGetCommand_Error(t *testing.T) {
	mockClient := &api.MockDispatcher{
		GetClientFunc: func(ctx stdcontext.Context, id string) (*api.Client, error) {
			return nil, errors.New("dispatcher returned 404: not found")
		},
	}

	cmd := newClientGetCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"missing"})

	err := cmd.Execute()
	assert.Error(t, err)
}

func TestClientDeleteCommand(t *testing.T) {
	var gotPurge bool
	mockClient := &api.MockDispatcher{
		DeleteClientFunc: func(ctx stdcontext.Context, id string, purge bool) error {
			assert.Equal(t, "acme", id)
			gotPurge = purge
			return nil
		},
	}

	cmd := newClientDeleteCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme"})

	err := cmd.Execute()
	assert.NoError(t, err)
	assert.False(t, gotPurge)
	assert.Contains(t, buf.String(), "deactivated")
}

func TestClientDeleteCommand_Purge(t *testing.T) {
	mockClient := &api.MockDispatcher{
		DeleteClientFunc: func(ctx stdcontext.Context, id string, purge bool) error {
			assert.True(t, purge)
			return nil
		},
	}

	cmd := newClientDeleteCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme", "--purge"})

	err := cmd.Execute()
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "purged")
}

func TestClientStatsCommand(t *testing.T) {
	remaining := 40
	mockClient := &api.MockDispatcher{
		GetStatsFunc: func(ctx stdcontext.Context, id string) (*api.Stats, error) {
			assert.Equal(t, "acme", id)
			return &api.Stats{
				TenantID:   "acme",
				Active:     true,
				DailyLimit: 100,
				UsedToday:  60,
				Remaining:  &remaining,
			}, nil
		},
	}

	cmd := newClientStatsCmd(mockClient)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"acme"})

	err := cmd.Execute()
	assert.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Used Today:    60")
	assert.Contains(t, output, "Remaining:     40")
}
