package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("request_id", "abc12345")

	Error(c, 404, "TRANSACTION_NOT_FOUND", "Transaction not found")

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, 404, resp.Code)
	require.Equal(t, "TRANSACTION_NOT_FOUND", resp.Error.Code)
	require.Equal(t, "abc12345", resp.Meta.RequestID)
	require.NotEmpty(t, resp.Meta.Timestamp)
}

func TestSuccessWithPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithPagination(c, 200, "ok", []int{1, 2}, 2, 10, 25)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, 3, resp.Meta.Pagination.TotalPages)
	require.Len(t, resp.Meta.RequestID, 8)
}

func TestErrorWithData(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	ErrorWithData(c, 503, "SERVICE_DEGRADED", "Service is degraded", gin.H{"status": "degraded"})

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 503, w.Code)
	require.False(t, resp.Success)
	require.Equal(t, "SERVICE_DEGRADED", resp.Error.Code)
	require.Equal(t, map[string]any{"status": "degraded"}, resp.Data)
}
