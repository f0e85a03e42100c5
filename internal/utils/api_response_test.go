package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSuccessResponse(t *testing.T) {
	resp := CreateSuccessResponse(map[string]int64{"policy_id": 7})
	assert.True(t, resp.Success)
	assert.False(t, resp.GeneratedAt.IsZero())

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"policy_id":7`)
	assert.Contains(t, string(raw), `"generated_at"`)
}

func TestCreateErrorResponse(t *testing.T) {
	resp := CreateErrorResponse("DUPLICATE_INSURANCE", "flight already covered")
	assert.False(t, resp.Success)
	assert.Equal(t, "DUPLICATE_INSURANCE", resp.Error.Code)
	assert.Equal(t, "flight already covered", resp.Error.Message)
}
