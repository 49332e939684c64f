package stdio

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-toolbox-go/internal/dice"
	"mcp-toolbox-go/internal/server"
	"mcp-toolbox-go/internal/tools"
	"mcp-toolbox-go/internal/tools/qrcode"
	"mcp-toolbox-go/internal/tools/roll"
)

type lowest struct{}

func (lowest) IntN(int) int { return 0 }

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	registry := tools.NewRegistry()
	registry.Register(roll.New(dice.NewRoller(lowest{}), nil))
	registry.Register(qrcode.New(""))
	return connectRegistry(t, registry)
}

func connectRegistry(t *testing.T, registry *tools.Registry) *mcp.ClientSession {
	t.Helper()
	srv := NewServer(&mcp.Implementation{Name: "test", Version: "v0.0.1"}, registry, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "v0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { clientSession.Close() })
	return clientSession
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	session := connect(t)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{roll.Name, qrcode.Name}, names)
}

func TestServer_ExposesEveryServerTool(t *testing.T) {
	registry := server.NewToolRegistry(server.DefaultConfig(), nil, zerolog.Nop())
	session := connectRegistry(t, registry)

	result, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var want, got []string
	for _, def := range registry.Definitions() {
		want = append(want, def.Name)
	}
	for _, tool := range result.Tools {
		got = append(got, tool.Name)
	}
	assert.ElementsMatch(t, want, got)
}

func TestServer_CallRollDice(t *testing.T) {
	session := connect(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      roll.Name,
		Arguments: map[string]any{"notation": "3d6kl2", "num_rolls": 2},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "3d6kl2 #1: [1, 1, (1)] = 2\n3d6kl2 #2: [1, 1, (1)] = 2\nTotals: [2, 2]\n(discarded dice shown in parentheses)", textOf(t, result))
}

func TestServer_ToolErrorIsReported(t *testing.T) {
	session := connect(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      roll.Name,
		Arguments: map[string]any{"notation": "3d6kl4"},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.True(t, strings.HasPrefix(textOf(t, result), "InvalidModifierCount: "))
}

func TestServer_CallQRCode(t *testing.T) {
	session := connect(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      qrcode.Name,
		Arguments: map[string]any{"text": "hello"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), "data=hello")
}
