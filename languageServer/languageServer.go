package languageServer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sourcegraph/jsonrpc2"
	wsjsonrpc2 "github.com/sourcegraph/jsonrpc2/websocket"

	"github.com/z80asm/macroasm-ls/completion"
	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/symbols"
	"github.com/z80asm/macroasm-ls/util"
	"github.com/z80asm/macroasm-ls/workspace"
)

const (
	ServerName   = "z80-macroasm"
	languageID   = "z80-macroasm"
	watchDelay   = 150 * time.Millisecond
	shutdownWait = 5 * time.Second
)

// Version is reported in the initialize result.
var Version = "dev"

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// Server is one language server session. It owns the symbol index for the
// documents and workspace of a single client connection.
type Server struct {
	logger   *slog.Logger
	overlay  *symbols.Overlay
	index    *symbols.Index
	resolver *symbols.Resolver
	renamer  *symbols.Renamer
	proposer *completion.Provider

	mu       sync.RWMutex
	props    config.Props
	conn     *jsonrpc2.Conn
	open     map[string]int // path to version of documents held by the editor
	root     string
	filter   *workspace.Filter
	stopScan context.CancelFunc
	shutdown bool
}

func NewServer(props config.Props, logger *slog.Logger) *Server {
	overlay := symbols.NewOverlay(symbols.DiskOpener{})
	index := symbols.NewIndex(overlay,
		symbols.WithLogger(logger),
		symbols.WithWorkspaceFallback(props.SeekSymbolsThroughWorkspace),
	)
	resolver := symbols.NewResolver(index)
	return &Server{
		logger:   logger,
		overlay:  overlay,
		index:    index,
		resolver: resolver,
		renamer:  symbols.NewRenamer(index, resolver),
		proposer: completion.NewProvider(index, logger),
		props:    props,
		open:     make(map[string]int),
	}
}

// Serve answers requests on stream until the client disconnects or ctx is
// cancelled.
func (s *Server) Serve(ctx context.Context, stream jsonrpc2.ObjectStream) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn := jsonrpc2.NewConn(ctx, stream, s)
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		conn.Close()
	case <-conn.DisconnectNotify():
	}
	s.stopWatching()
	return nil
}

// ListenAndServe serves a single session over stdin and stdout.
func ListenAndServe(ctx context.Context, props config.Props, logger *slog.Logger) error {
	logger.Info("serving on stdio")
	return NewServer(props, logger).Serve(ctx, jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}))
}

// ListenAndServeTCP accepts connections on addr, each with its own session,
// until ctx is cancelled.
func ListenAndServeTCP(ctx context.Context, addr string, props config.Props, logger *slog.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not bind to address %s: %w", addr, err)
	}
	defer lis.Close()

	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	logger.Info("listening for TCP connections", "addr", lis.Addr().String())

	var connectionCount atomic.Int64
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed to accept incoming connection: %w", err)
		}
		connectionID := connectionCount.Add(1)
		connLogger := logger.With("connection", connectionID)
		connLogger.Info("received incoming connection", "remote", conn.RemoteAddr().String())

		go func() {
			stream := jsonrpc2.NewBufferedStream(conn, jsonrpc2.VSCodeObjectCodec{})
			NewServer(props, connLogger).Serve(ctx, stream)
			connLogger.Info("connection closed")
		}()
	}
}

// WebSocketHandler upgrades each request to a session carrying one JSON-RPC
// message per frame.
func WebSocketHandler(ctx context.Context, props config.Props, logger *slog.Logger) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	var connectionCount atomic.Int64
	return func(w http.ResponseWriter, r *http.Request) {
		wsConn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer wsConn.Close()

		connLogger := logger.With("connection", connectionCount.Add(1))
		connLogger.Info("received websocket connection", "remote", r.RemoteAddr)
		NewServer(props, connLogger).Serve(ctx, wsjsonrpc2.NewObjectStream(wsConn))
		connLogger.Info("connection closed")
	}
}

// ListenAndServeWebSocket serves sessions on addr under /ws until ctx is
// cancelled.
func ListenAndServeWebSocket(ctx context.Context, addr string, props config.Props, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", WebSocketHandler(ctx, props, logger))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening for websocket connections", "addr", addr, "path", "/ws")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("websocket server: %w", err)
	}
	return nil
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	util.LogF("received request: %s", req.Method)

	s.mu.RLock()
	shutdown := s.shutdown
	s.mu.RUnlock()
	if shutdown && req.Method != "exit" {
		replyError(ctx, conn, req, jsonrpc2.CodeInvalidRequest, "server is shutting down")
		return
	}

	switch req.Method {
	case "initialize":
		s.handleInitialize(ctx, conn, req)
	case "initialized":
	case "textDocument/didOpen":
		s.documentOpenNotification(ctx, conn, req)
	case "textDocument/didClose":
		s.documentCloseNotification(ctx, conn, req)
	case "textDocument/didChange":
		s.documentChangeNotification(ctx, conn, req)
	case "textDocument/diagnostic":
		s.documentDiagnostics(ctx, conn, req)
	case "textDocument/hover":
		s.hoverRequest(ctx, conn, req)
	case "textDocument/definition":
		s.definitionRequest(ctx, conn, req)
	case "textDocument/completion":
		s.completionRequest(ctx, conn, req)
	case "textDocument/prepareRename":
		s.prepareRenameRequest(ctx, conn, req)
	case "textDocument/rename":
		s.renameRequest(ctx, conn, req)
	case "textDocument/documentSymbol":
		s.documentSymbolRequest(ctx, conn, req)
	case "workspace/symbol":
		s.workspaceSymbolRequest(ctx, conn, req)
	case "textDocument/formatting":
		s.formattingRequest(ctx, conn, req)
	case "textDocument/rangeFormatting":
		s.rangeFormattingRequest(ctx, conn, req)
	case "textDocument/onTypeFormatting":
		s.onTypeFormattingRequest(ctx, conn, req)
	case "workspace/didChangeConfiguration":
		s.configurationNotification(ctx, conn, req)
	case "workspace/didChangeWatchedFiles":
		s.watchedFilesNotification(ctx, conn, req)

	// quitting
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		s.stopWatching()
		conn.Reply(ctx, req.ID, nil)
	case "exit":
		conn.Close()

	default:
		replyError(ctx, conn, req, jsonrpc2.CodeMethodNotFound, "method not supported: "+req.Method)
	}
}

func replyError(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, code int64, message string) {
	if req.Notif {
		return
	}
	rpcErr := jsonrpc2.Error{Code: code, Message: message}
	conn.ReplyWithError(ctx, req.ID, &rpcErr)
}

// decodeParams unmarshals req.Params into v and answers with an error when
// that fails.
func (s *Server) decodeParams(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request, v interface{}) bool {
	if err := decode(req.Params, v); err != nil {
		s.logger.Warn("invalid parameters", "method", req.Method, "error", err)
		replyError(ctx, conn, req, jsonrpc2.CodeInvalidParams, "invalid parameters")
		return false
	}
	return true
}

func (s *Server) handleInitialize(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := InitializeParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}

	if decodedParams.InitializationOptions != nil {
		s.applySettings(decodedParams.InitializationOptions)
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync:   1,
			DiagnosticProvider: &DiagnosticOptions{InterFileDependencies: true},
			HoverProvider:      true,
			DefinitionProvider: true,
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{" ", "\t", ",", "."},
			},
			RenameProvider:                  &RenameOptions{PrepareProvider: true},
			DocumentSymbolProvider:          true,
			WorkspaceSymbolProvider:         true,
			DocumentFormattingProvider:      true,
			DocumentRangeFormattingProvider: true,
			DocumentOnTypeFormattingProvider: &DocumentOnTypeFormattingOptions{
				FirstTriggerCharacter: "\n",
				MoreTriggerCharacter:  []string{":", ","},
			},
		},
		ServerInfo: &ServerInfo{Name: ServerName, Version: Version},
	}
	conn.Reply(ctx, req.ID, result)

	s.registerRemainingCapabilities(ctx, conn)

	if root := workspaceRoot(decodedParams); root != "" {
		s.scanWorkspace(ctx, root)
	}
}

func workspaceRoot(params InitializeParams) string {
	candidates := []DocumentUri{params.RootURI}
	for _, folder := range params.WorkspaceFolders {
		candidates = append(candidates, folder.URI)
	}
	for _, uri := range candidates {
		if uri == "" {
			continue
		}
		if path, err := uriToPath(uri); err == nil {
			return path
		}
	}
	return params.RootPath
}

func (s *Server) registerRemainingCapabilities(ctx context.Context, conn *jsonrpc2.Conn) {
	util.LogF("registering remaining capabilities")

	s.mu.RLock()
	exts := s.props.Files.Include
	s.mu.RUnlock()

	watchers := make([]FileSystemWatcher, 0, len(exts))
	for _, ext := range exts {
		watchers = append(watchers, FileSystemWatcher{GlobPattern: "**/*." + ext})
	}

	params := RegistrationParams{
		Registrations: []Registration{
			{
				ID:              "workspace.didChangeWatchedFiles",
				Method:          "workspace/didChangeWatchedFiles",
				RegisterOptions: DidChangeWatchedFilesRegistrationOptions{Watchers: watchers},
			},
			{
				ID:     "workspace.didChangeConfiguration",
				Method: "workspace/didChangeConfiguration",
				RegisterOptions: TextDocumentRegistrationOptions{
					DocumentSelector: []DocumentFilter{{Scheme: "file", Language: languageID}},
				},
			},
		},
	}

	go conn.Call(ctx, "client/registerCapability", params, nil)
}

func (s *Server) settings() config.Props {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.props
}

// applySettings replaces the configuration with an editor settings payload.
// Invalid payloads keep the current configuration.
func (s *Server) applySettings(settings map[string]any) {
	props, err := config.FromMap(settings)
	if err != nil {
		s.logger.Warn("ignoring invalid settings", "error", err)
		return
	}
	s.mu.Lock()
	s.props = props
	s.mu.Unlock()
	s.index.SetWorkspaceFallback(props.SeekSymbolsThroughWorkspace)
	s.logger.Debug("settings applied")
}

func (s *Server) configurationNotification(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) {
	decodedParams := DidChangeConfigurationParams{}
	if !s.decodeParams(ctx, conn, req, &decodedParams) {
		return
	}
	if decodedParams.Settings != nil {
		s.applySettings(decodedParams.Settings)
	}
}
