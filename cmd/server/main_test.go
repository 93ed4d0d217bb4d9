package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/patrickwarner/adsignal/internal/config"
	"github.com/patrickwarner/adsignal/internal/observability"
)

func TestBuildHandlerStrictPatternsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("strict: true\n"), 0o600))

	h, engine, err := buildHandler(zap.NewNop(), config.Config{PatternsFile: path, ServiceName: "test"}, observability.NewNoOpRegistry())
	require.NoError(t, err)
	require.NotNil(t, engine)

	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(`{"url":"https://a.example/?address=1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"isAdInfluenced":false`)
}

func TestBuildHandlerMissingPatternsFile(t *testing.T) {
	_, _, err := buildHandler(zap.NewNop(), config.Config{PatternsFile: "/nonexistent/patterns.yaml"}, observability.NewNoOpRegistry())
	assert.Error(t, err)
}
