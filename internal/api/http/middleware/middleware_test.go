package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DNBN-rft/dnbn-f-sub000/internal/logger"
	"github.com/DNBN-rft/dnbn-f-sub000/internal/testutil"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		preset   string
		wantSame bool
	}{
		{name: "generates id", preset: ""},
		{name: "keeps caller id", preset: "caller-id", wantSame: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			rt := NewRequestID(testutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
				seen = r.Header.Get(RequestIDHeader)
				return testutil.Response(r, http.StatusOK, ""), nil
			}))

			req, err := http.NewRequest(http.MethodGet, "http://api.test/admin/auth", nil)
			require.NoError(t, err)
			if tt.preset != "" {
				req.Header.Set(RequestIDHeader, tt.preset)
			}

			resp, err := rt.RoundTrip(req)
			require.NoError(t, err)
			resp.Body.Close()

			if tt.wantSame {
				assert.Equal(t, tt.preset, seen)
				return
			}
			_, parseErr := uuid.Parse(seen)
			assert.NoError(t, parseErr)
			assert.Empty(t, req.Header.Get(RequestIDHeader), "caller request is not modified")
		})
	}
}

func TestLogging_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rt      testutil.RoundTripFunc
		wantErr bool
		wantLog string
	}{
		{
			name: "success path",
			rt: func(r *http.Request) (*http.Response, error) {
				return testutil.Response(r, http.StatusUnauthorized, ""), nil
			},
			wantLog: "status=401",
		},
		{
			name: "transport error propagates",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			wantErr: true,
			wantLog: "error=boom",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			rt := NewLogging(tt.rt, logger.NewWithFormat(&buf, 0, "text"))

			req, err := http.NewRequest(http.MethodGet, "http://api.test/store/product", nil)
			require.NoError(t, err)

			resp, err := rt.RoundTrip(req)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, resp)
			} else {
				require.NoError(t, err)
				resp.Body.Close()
			}
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), "path=/store/product")
		})
	}
}
