package predictionfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions":[
			{"region":"Southeast Asia","country":"Myanmar","disaster_type":"Flood","year":2026,"confidence":80},
			{"region":"South Asia","country":"Nepal","disaster_type":"Earthquake","year":2027}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	preds, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, preds, 2)

	assert.Equal(t, "Myanmar", preds[0].Country)
	require.NotNil(t, preds[0].Confidence)
	assert.Equal(t, 80.0, *preds[0].Confidence)
	assert.Equal(t, "Earthquake", preds[1].DisasterType)
	assert.Nil(t, preds[1].Confidence)
}

func TestFetch_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
