package social

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jimiolaniyan/gosocial/auth"
)

var (
	text255 = strings.Repeat("a", 255)
	text256 = strings.Repeat("a", 256)
)

func registerAccount(t *testing.T, accounts auth.Repository, username string) *auth.Account {
	t.Helper()
	acc := &auth.Account{Username: username, Password: "password"}
	require.NoError(t, accounts.Store(context.Background(), acc))
	return acc
}

func postMessage(t *testing.T, svc Service, author auth.ID, text string) *Message {
	t.Helper()
	m, err := svc.CreateMessage(context.Background(), createMessageRequest{PostedBy: author, Text: text, PostedTime: 1669947792})
	require.NoError(t, err)
	return m
}
