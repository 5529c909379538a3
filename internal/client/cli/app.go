// Package cli implements the interactive Inkveil journal client: a small
// REPL over the application services.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/inkveil/inkveil/internal/client/client"
	"github.com/inkveil/inkveil/internal/client/config"
	"github.com/inkveil/inkveil/internal/client/services"
	"github.com/inkveil/inkveil/internal/logging"
	"github.com/inkveil/inkveil/internal/session"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config        *config.Config
	authService   services.AuthService
	journal       services.JournalService
	exportService services.ExportService
	switches      services.SwitchService
	session       *session.Session
	logger        logging.Logger
	userName      string
	Mode          Mode
	reader        *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.Default())

	repos, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient := client.NewRESTClient(c.ServerEndpointAddr)
	sess := session.New()

	auth := services.NewAuthService(apiClient, repos, sess)
	journal := services.NewJournalService(apiClient, repos, sess, logger)
	export := services.NewExportService(repos, sess, journal)
	switches := services.NewSwitchService(apiClient, repos, sess, journal,
		services.JSONRenderer{}, c.DisclosureBaseURL, logger)

	return &App{
		config:        c,
		authService:   auth,
		journal:       journal,
		exportService: export,
		switches:      switches,
		session:       sess,
		logger:        logger,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) setMode(mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.logger.Info(context.Background(), "connectivity mode changed", "mode", string(mode))
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.Unlocked()
}

// StartOnlineStatusWatcher probes server reachability on a ticker and flips
// the connectivity mode accordingly.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.authService.Ping(pingCtx)
			cancel()

			if err != nil {
				if a.Mode == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else {
				if a.Mode != ModeOnline {
					a.setMode(ModeOnline)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
