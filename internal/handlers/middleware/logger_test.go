package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	msg  string
	args []any
}

func (l *recordingLogger) Info(msg string, args ...any) {
	l.msg = msg
	l.args = args
}

func TestLoggerMiddleware(t *testing.T) {
	l := &recordingLogger{}

	handler := LoggerMiddleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	require.Equal(t, http.StatusTeapot, w.Code)
	require.Equal(t, "got HTTP request", l.msg)
	require.Contains(t, l.args, http.StatusTeapot)
	require.Contains(t, l.args, len("short and stout"))
}
