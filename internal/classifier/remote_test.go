package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRemoteClassifier_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/activity/classify", r.URL.Path)

		var req RemoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Events, 2)
		assert.Equal(t, "M003", req.Events[0].Sensor)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RemoteResponse{
			Status: 0,
			Msg:    "success",
			Data:   json.RawMessage(`{"prediction":"Bed_to_Toilet","confidence":"92%"}`),
		})
	}))
	defer server.Close()

	cls := NewRemoteClassifier(server.URL, zap.NewNop())
	result, err := cls.Classify(context.Background(), testBatch("M003"))
	require.NoError(t, err)

	assert.Equal(t, "Bed_to_Toilet", result.Prediction)
	assert.Equal(t, "92%", result.ConfidenceScore)
	assert.NotEmpty(t, result.ResultID)
	assert.Len(t, result.SourceBatch, 2)
}

func TestRemoteClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RemoteResponse{
			Status: 5001,
			Msg:    "model not loaded",
		})
	}))
	defer server.Close()

	cls := NewRemoteClassifier(server.URL, zap.NewNop())
	_, err := cls.Classify(context.Background(), testBatch("M003"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestRemoteClassifier_EmptyBatch(t *testing.T) {
	// 空批次不应该触发任何网络调用
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	cls := NewRemoteClassifier(server.URL, zap.NewNop())
	_, err := cls.Classify(context.Background(), nil)
	assert.Error(t, err)
	assert.False(t, called)
}
