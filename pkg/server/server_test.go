package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/richard-senior/footy/pkg/analyzer"
	"github.com/richard-senior/footy/pkg/protocol"
	"github.com/richard-senior/footy/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const europaURL = "https://www.forebet.com/en/football/matches/europa-league/roma-lazio-98765"

const europaPage = `<html><body>
<h1 class="match-title">Roma vs Lazio</h1>
<div class="fprc"><span>40</span><span>30</span><span>30</span></div>
</body></html>`

type pageFetcher map[string]string

func (p pageFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	page, ok := p[pageURL]
	if !ok {
		return nil, fmt.Errorf("404 for %s", pageURL)
	}
	return []byte(page), nil
}

// runSession feeds lines to a fresh server and returns every response it wrote
func runSession(t *testing.T, store analyzer.ProfileStore, lines ...string) []protocol.JsonRpcResponse {
	t.Helper()
	a, err := analyzer.New(analyzer.DefaultConfig(), store, pageFetcher{europaURL: europaPage})
	require.NoError(t, err)

	var out bytes.Buffer
	tr := transport.NewStreamTransport(strings.NewReader(strings.Join(lines, "\n")), &out)
	s := New(tr, a)
	require.NoError(t, s.ProcessRequests(), "EOF is a clean stop")

	var responses []protocol.JsonRpcResponse
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		if line == "" {
			continue
		}
		var resp protocol.JsonRpcResponse
		require.NoError(t, json.Unmarshal([]byte(line), &resp), line)
		responses = append(responses, resp)
	}
	return responses
}

func TestInitializeHandshake(t *testing.T) {
	responses := runSession(t, analyzer.NewMemoryStore(),
		`{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2025-03-26"},"id":0}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","method":"ping","id":1}`,
	)
	require.Len(t, responses, 2, "notifications get no reply")

	var result struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name    string `json:"name"`
			Version string `json:"version"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	assert.Equal(t, "2025-03-26", result.ProtocolVersion)
	assert.Equal(t, Name, result.ServerInfo.Name)
	assert.Equal(t, Version, result.ServerInfo.Version)

	assert.Nil(t, responses[1].Error)
	assert.EqualValues(t, 1, responses[1].ID)
}

func TestToolsList(t *testing.T) {
	responses := runSession(t, analyzer.NewMemoryStore(), `{"jsonrpc":"2.0","method":"tools/list","id":1}`)
	require.Len(t, responses, 1)

	var result struct {
		Tools []protocol.Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"football_analyze", "league_stats"}, names)
}

func TestToolsCallAnalyzeAndLearn(t *testing.T) {
	store := analyzer.NewMemoryStore()
	call := fmt.Sprintf(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"mcp___football_analyze","arguments":{"url":%q,"result":"D 1-1"}},"id":2}`, europaURL)

	responses := runSession(t, store, call)
	require.Len(t, responses, 1)
	require.Nil(t, responses[0].Error)

	var result protocol.ToolResult
	require.NoError(t, json.Unmarshal(responses[0].Result, &result))
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "BET: DRAW")
	assert.Contains(t, result.Content[0].Text, analyzer.LearningPrefix)

	assert.Equal(t, 1, store.Get(analyzer.EuropaLeague).DrawCount)
}

func TestToolsCallErrors(t *testing.T) {
	responses := runSession(t, analyzer.NewMemoryStore(),
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"initialize","arguments":{}},"id":3}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"football_analyze","arguments":{"url":"http://example.com/x"}},"id":4}`,
		`{"jsonrpc":"2.0","method":"tools/call","params":{},"id":5}`,
		`{"jsonrpc":"2.0","method":"no/such/method","id":6}`,
		`{"jsonrpc":"2.0","method":"no/such/notification"}`,
		`{this is not json`,
	)
	require.Len(t, responses, 5)

	for _, resp := range responses[:3] {
		require.NotNil(t, resp.Error)
		assert.Equal(t, protocol.ErrToolExecutionFailed, resp.Error.Code)
	}
	assert.Contains(t, responses[0].Error.Message, "tool not found")
	assert.Equal(t, protocol.ErrMethodNotFound, responses[3].Error.Code)
	assert.Equal(t, protocol.ErrParse, responses[4].Error.Code)
}

func TestRegisterTool(t *testing.T) {
	s := New(transport.NewStreamTransport(strings.NewReader(""), &bytes.Buffer{}), nil)
	assert.Empty(t, s.GetTools())

	s.RegisterTool(protocol.Tool{Name: "echo"}, func(params any) (any, error) { return params, nil })
	require.Len(t, s.GetTools(), 1)
	assert.True(t, s.hasTool("mcp___echo"))
	assert.NotNil(t, s.lookup("mcp___echo"))
}
