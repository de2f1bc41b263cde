package gmail_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/dennisonbertram/mcp-gmail/internal/gmail"
	"github.com/dennisonbertram/mcp-gmail/internal/server"
	"github.com/dennisonbertram/mcp-gmail/internal/tools/common"
)

// RegisterGmailTools registers all Gmail tools with the MCP server. All tools
// are read-only.
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getProfileTool := mcp.NewTool("gmail_get_profile",
		mcp.WithDescription("Get the authenticated Gmail account's profile (email address, message and thread counts)"),
	)
	s.AddTool(getProfileTool, common.InstrumentedToolHandlerWithService("gmail_get_profile", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetProfile(ctx, sc)
		}))

	listLabelsTool := mcp.NewTool("gmail_list_labels",
		mcp.WithDescription("List the labels of the authenticated Gmail account"),
	)
	s.AddTool(listLabelsTool, common.InstrumentedToolHandlerWithService("gmail_list_labels", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListLabels(ctx, sc)
		}))

	listMessagesTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("List Gmail messages matching a query"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g., 'in:inbox', 'from:user@example.com')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default: 10)"),
		),
	)
	s.AddTool(listMessagesTool, common.InstrumentedToolHandlerWithService("gmail_list_messages", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListMessages(ctx, request, sc)
		}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get a Gmail message's headers and snippet by ID"),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to fetch"),
		),
	)
	s.AddTool(getMessageTool, common.InstrumentedToolHandlerWithService("gmail_get_message", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMessage(ctx, request, sc)
		}))

	return nil
}

func clientOrError(sc *server.ServerContext) (*gmail.Client, *mcp.CallToolResult) {
	client, err := sc.GmailClient()
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("Gmail client unavailable: %v", err))
	}
	return client, nil
}

func handleGetProfile(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := clientOrError(sc)
	if errResult != nil {
		return errResult, nil
	}

	profile, err := client.GetProfile(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get profile: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Email: %s\nMessages: %d\nThreads: %d",
		profile.EmailAddress, profile.MessagesTotal, profile.ThreadsTotal)), nil
}

func handleListLabels(ctx context.Context, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	client, errResult := clientOrError(sc)
	if errResult != nil {
		return errResult, nil
	}

	labels, err := client.ListLabels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list labels: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d labels:\n", len(labels))
	for i, label := range labels {
		fmt.Fprintf(&b, "%d. %s (ID: %s, type: %s)\n", i+1, label.Name, label.ID, label.Type)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleListMessages(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	maxResults := int64(10)
	if maxResultsVal, ok := args["maxResults"]; ok {
		if maxResultsFloat, ok := maxResultsVal.(float64); ok {
			maxResults = int64(maxResultsFloat)
		}
	}

	client, errResult := clientOrError(sc)
	if errResult != nil {
		return errResult, nil
	}

	messages, err := client.ListMessages(ctx, query, maxResults)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list messages: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d messages:\n", len(messages))
	for i, msg := range messages {
		fmt.Fprintf(&b, "%d. [%s] %s: %s (ID: %s)\n", i+1, msg.Date, msg.From, msg.Subject, msg.ID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetMessage(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	messageID, ok := args["messageId"].(string)
	if !ok || messageID == "" {
		return mcp.NewToolResultError("messageId is required"), nil
	}

	client, errResult := clientOrError(sc)
	if errResult != nil {
		return errResult, nil
	}

	msg, err := client.GetMessage(ctx, messageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("From: %s\nTo: %s\nSubject: %s\nDate: %s\n\n%s",
		msg.From, msg.To, msg.Subject, msg.Date, msg.Snippet)), nil
}
