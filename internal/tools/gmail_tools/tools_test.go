package gmail_tools

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dennisonbertram/mcp-gmail/internal/config"
	"github.com/dennisonbertram/mcp-gmail/internal/google"
	"github.com/dennisonbertram/mcp-gmail/internal/server"
)

func testServerContext(t *testing.T) *server.ServerContext {
	t.Helper()

	paths, err := config.NewPaths(t.TempDir())
	require.NoError(t, err)

	auth := google.NewManager(&config.Credentials{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  config.DefaultRedirectURI,
	}, paths)

	return server.NewServerContext(context.Background(), auth, paths)
}

func requestWithArgs(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestRegisterGmailTools(t *testing.T) {
	s := mcpserver.NewMCPServer("test", "0.0.0")
	require.NoError(t, RegisterGmailTools(s, testServerContext(t)))
}

func TestListMessagesRequiresQuery(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleListMessages(context.Background(), requestWithArgs(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "query is required")
}

func TestGetMessageRequiresMessageID(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleGetMessage(context.Background(), requestWithArgs(map[string]any{}), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "messageId is required")
}

func TestGetProfileWithoutToken(t *testing.T) {
	sc := testServerContext(t)

	result, err := handleGetProfile(context.Background(), sc)
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "auth")
}
