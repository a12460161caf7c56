package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/apiclient/apitest"
	"github.com/sakif/portfolio-cms/internal/session"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAPI(t *testing.T) (*apitest.Server, *apiclient.Client) {
	t.Helper()
	api := apitest.NewServer()
	t.Cleanup(api.Close)

	client, err := apiclient.New(api.BaseURL(), discardLogger())
	require.NoError(t, err)
	return api, client
}

// adminCtx carries a session holding the fake API's admin token.
func adminCtx() context.Context {
	sess := session.NewDetached("test-session", apitest.AdminToken, nil)
	return apiclient.WithTokenStore(context.Background(), sess)
}
