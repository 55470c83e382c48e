// Command fogquest starts the FogQuest game server.
//
// It supports two modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Flags control host/port, config and session directories, the results database,
// debug logging, and optional ngrok tunneling for external access during development.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/fogquest/api"
	"github.com/wricardo/fogquest/game/config"
	"github.com/wricardo/fogquest/game/results"
	"github.com/wricardo/fogquest/game/service"
	"github.com/wricardo/fogquest/game/session"
	"github.com/wricardo/fogquest/game/setup"
	"github.com/wricardo/fogquest/transport/mcp"
	"github.com/wricardo/fogquest/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "FogQuest Server"
)

const (
	sessionMaxAge   = 24 * time.Hour
	cleanupInterval = 1 * time.Hour
	syncInterval    = 5 * time.Second
)

// Options collects everything the flags configure
type Options struct {
	Host        string
	Port        int
	ConfigDir   string
	SessionsDir string
	ResultsDSN  string
	Debug       bool
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func newCommand() *cli.Command {
	var opts Options
	serve := func(ctx context.Context, cmd *cli.Command) error {
		return runHTTPServer(ctx, opts)
	}

	return &cli.Command{
		Name:    "fogquest",
		Usage:   "turn-based fog-of-war exploration server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT"), Destination: &opts.Port},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Destination: &opts.Host},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "directory containing game configurations", Sources: cli.EnvVars("CONFIG_DIR"), Destination: &opts.ConfigDir},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "directory where sessions are persisted", Sources: cli.EnvVars("SESSIONS_DIR"), Destination: &opts.SessionsDir},
			&cli.StringFlag{Name: "results-dsn", Value: "data/results.db", Usage: "SQLite path or postgres:// URL for finished games (empty disables)", Sources: cli.EnvVars("RESULTS_DSN"), Destination: &opts.ResultsDSN},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging", Destination: &opts.Debug},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED"), Destination: &opts.Ngrok},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"), Destination: &opts.NgrokAuth},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN"), Destination: &opts.NgrokDomain},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(opts.Debug)
			return ctx, nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action:  serve,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run MCP stdio server with internal HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, opts)
				},
			},
		},
	}
}

func setupLogging(debug bool) {
	logger := log.Default()
	logger.SetReportTimestamp(true)
	logger.SetPrefix("fogquest")
	if debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportCaller(true)
	}
}

// main loads .env, parses flags and starts the selected mode.
func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warn("error loading .env file", "err", err)
		}
	} else {
		log.Info("loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal("fogquest failed", "err", err)
	}
}

// Services holds the long-lived components shared by both modes
type Services struct {
	Game        service.GameService
	Sessions    *session.Manager
	Persistence *session.FilePersistence
	Results     *results.Store
}

// initializeServices wires config, session and result storage into the game service.
func initializeServices(opts Options) (*Services, error) {
	configManager, err := config.NewManager(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(opts.SessionsDir, setup.Options{Logger: log.Default(), RemoteHumans: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, log.Default())
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn("failed to load persisted sessions", "err", err)
	}

	svc := &Services{Sessions: sessionManager, Persistence: persistence}

	// A nil interface keeps results disabled; a typed nil would not
	var store service.ResultStore
	if opts.ResultsDSN != "" {
		svc.Results, err = results.Open(opts.ResultsDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open results store: %w", err)
		}
		store = svc.Results
	}

	svc.Game = service.NewGameService(sessionManager, configManager, store, log.Default())
	return svc, nil
}

// Close saves every session and closes the results store
func (s *Services) Close() {
	if err := s.Sessions.SaveAllSessions(); err != nil {
		log.Warn("failed to save sessions", "err", err)
	}
	if s.Results != nil {
		if err := s.Results.Close(); err != nil {
			log.Warn("failed to close results store", "err", err)
		}
	}
}

// maintain prunes sessions that expired or whose files were deleted until ctx is done
func (s *Services) maintain(ctx context.Context) {
	cleanup := time.NewTicker(cleanupInterval)
	defer cleanup.Stop()
	syncTick := time.NewTicker(syncInterval)
	defer syncTick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			s.Sessions.CleanupExpiredSessions(sessionMaxAge)
		case <-syncTick.C:
			s.pruneOrphans()
		}
	}
}

// pruneOrphans drops in-memory sessions whose persisted file is gone
func (s *Services) pruneOrphans() int {
	pruned := 0
	for _, sess := range s.Sessions.List() {
		if s.Persistence.Exists(sess.ID) {
			continue
		}
		if err := s.Sessions.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			log.Info("pruned session from memory (file deleted)", "id", sess.ID)
		}
	}
	return pruned
}

// newRouter mounts the API and the MCP endpoint on one handler
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	router := mux.NewRouter()
	router.Handle("/mcp", mcpHandler(mcpClient)).Methods(http.MethodPost)
	router.PathPrefix("/").Handler(apiServer)
	return router
}

// mcpHandler answers one JSON-RPC message per POST
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	mcpServer := mcpClient.GetMCPServer()
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request", http.StatusBadRequest)
			return
		}

		response := mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}
}

// runHTTPServer serves the REST API, the WebSocket hub and /mcp until ctx is done.
// If ngrok is enabled it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, opts Options) error {
	services, err := initializeServices(opts)
	if err != nil {
		return err
	}
	defer services.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go services.maintain(ctx)

	hub := websocket.NewHub(log.Default())
	go hub.Run(ctx)

	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	apiServer := api.NewServer(services.Game, hub, log.Default())
	handler := newRouter(apiServer, mcp.NewClient("http://"+addr))

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("HTTP server listening", "addr", addr, "api", "http://"+addr+"/api", "ws", "ws://"+addr+"/ws?session=<id>", "mcp", "http://"+addr+"/mcp")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.Ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, handler)
		}()
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("HTTP server shutdown error", "err", shutdownErr)
	}

	wg.Wait()
	log.Info("server stopped")
	return err
}

// runNgrok serves handler through an ngrok tunnel until ctx is done
func runNgrok(ctx context.Context, opts Options, handler http.Handler) {
	if opts.NgrokAuth == "" {
		log.Warn("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	tunnel := ngrokConfig.HTTPEndpoint()
	if opts.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.NgrokDomain))
		log.Info("using custom ngrok domain", "domain", opts.NgrokDomain)
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.NgrokAuth))
	if err != nil {
		log.Error("failed to start ngrok tunnel", "err", err)
		return
	}
	go func() {
		<-ctx.Done()
		tun.Close()
	}()

	publicURL := tun.URL()
	log.Info("ngrok tunnel established", "url", publicURL, "api", publicURL+"/api", "mcp", publicURL+"/mcp")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Error("ngrok server error", "err", err)
	}
	log.Info("ngrok tunnel closed")
}

// externalAPI reports whether a fogquest API already answers at baseURL
func externalAPI(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// runStdioMCP runs an MCP stdio server. It reuses an API at host:port when one
// answers; otherwise it starts an internal API on a random loopback port.
func runStdioMCP(ctx context.Context, opts Options) error {
	baseURL := fmt.Sprintf("http://%s:%d", opts.Host, opts.Port)

	if externalAPI(baseURL) {
		log.Info("external API server found, using it for MCP", "url", baseURL)
	} else {
		log.Info("no external API server found, starting internal HTTP server")

		services, err := initializeServices(opts)
		if err != nil {
			return err
		}
		defer services.Close()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(log.Default())
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(services.Game, hub, log.Default())}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("internal HTTP server error", "err", err)
			}
		}()
		defer httpServer.Close()

		baseURL = "http://" + listener.Addr().String()
		log.Info("internal HTTP server started", "url", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
