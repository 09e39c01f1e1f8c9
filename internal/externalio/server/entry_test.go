package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"gelfsend/internal/global"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupListenerRouting(t *testing.T) {
	ctx := context.Background()

	scrape := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "gelfsend_chunks_total 3\n")
	})

	server := SetupListener(ctx, "127.0.0.1:0", scrape)
	assert.Equal(t, "127.0.0.1:0", server.Addr)

	ts := httptest.NewServer(server.Handler)
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "root help",
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   global.MetricsPath,
		},
		{
			name:       "root POST rejected",
			method:     http.MethodPost,
			path:       "/",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "scrape",
			method:     http.MethodGet,
			path:       global.MetricsPath,
			wantStatus: http.StatusOK,
			wantBody:   "gelfsend_chunks_total 3",
		},
		{
			name:       "scrape incorrect method",
			method:     http.MethodPut,
			path:       global.MetricsPath,
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown path",
			method:     http.MethodGet,
			path:       "/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestSetupListenerDefaultAddress(t *testing.T) {
	server := SetupListener(context.Background(), "", http.NotFoundHandler())
	assert.Equal(t, global.HTTPListenAddr, server.Addr)
}
