package languageServer

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/util"
)

func TestWebSocketSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(WebSocketHandler(ctx, config.Defaults(), util.NopLogger()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	wsConn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	c := &client{}
	conn := jsonrpc2.NewConn(ctx, wsjsonrpc2.NewObjectStream(wsConn), jsonrpc2.AsyncHandler(c))
	defer conn.Close()

	callCtx, callCancel := context.WithTimeout(ctx, 5*time.Second)
	defer callCancel()

	var result InitializeResult
	require.NoError(t, conn.Call(callCtx, "initialize", InitializeParams{}, &result))
	assert.Equal(t, ServerName, result.ServerInfo.Name)
	assert.True(t, result.Capabilities.HoverProvider)

	var hover *Hover
	require.NoError(t, conn.Call(callCtx, "textDocument/hover", position("file:///nowhere/none.asm", 0, 0), &hover))
	assert.Nil(t, hover)
}
