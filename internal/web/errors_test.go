package web

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JonMunkholm/telecomtrends/internal/core"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRespondError_LogLevels(t *testing.T) {
	s := newTestServer(t, sampleCSV, core.ModeMulti)

	tests := []struct {
		name   string
		err    error
		status int
		level  string
		msg    string
	}{
		{"selection warning", fmt.Errorf("%w: Mobile [Mars]", core.ErrEmptySelection), http.StatusNotFound, "WARN", "request error"},
		{"fatal data error", &core.LoadError{Path: "x.xlsx", Err: errors.New("boom")}, http.StatusUnprocessableEntity, "ERROR", "request error"},
		{"unmapped client error", errors.New("something odd"), http.StatusBadRequest, "ERROR", "unexpected request error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			rec := httptest.NewRecorder()
			s.respondError(rec, httptest.NewRequest(http.MethodGet, "/api/trend", nil), tt.err, tt.status)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, logs.String(), `"level":"`+tt.level+`"`)
			assert.Contains(t, logs.String(), `"msg":"`+tt.msg+`"`)
		})
	}
}
