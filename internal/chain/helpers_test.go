package chain

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(logger.Options{Level: "error", Writer: io.Discard})
	require.NoError(t, err)
	return log
}

// staticInvoker answers every prompt with the same response.
func staticInvoker(response string) Invoker {
	return InvokerFunc(func(_ context.Context, _ string) (string, error) {
		return response, nil
	})
}
