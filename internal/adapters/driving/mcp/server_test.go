package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil story service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingStoryService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{Story: &mockStoryService{}})
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.Handler())
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("story only is valid", func(t *testing.T) {
		assert.NoError(t, (&Ports{Story: &mockStoryService{}}).Validate())
	})

	t.Run("retrieval alone is not enough", func(t *testing.T) {
		err := (&Ports{Retrieval: &mockRetrievalService{}}).Validate()
		assert.ErrorIs(t, err, ErrMissingStoryService)
	})
}
