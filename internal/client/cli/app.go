package cli

import (
	"bufio"
	"context"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/newsmarks/internal/client/client"
	"github.com/dmitrijs2005/newsmarks/internal/client/config"
	"github.com/dmitrijs2005/newsmarks/internal/client/services"

	_ "modernc.org/sqlite"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config           *config.Config
	authService      services.AuthService
	highlightService services.HighlightService
	userName         string
	loggedIn         bool
	Mode             Mode
	reader           *bufio.Reader

	// the article currently opened for highlighting
	articleURL  string
	articleText string
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Printf("error initializing database: %s", err.Error())
		return nil, err
	}

	apiClient := client.NewHighlightClient(c.ServerEndpointAddr)

	as := services.NewAuthService(apiClient, db)
	hs := services.NewHighlightService(apiClient, db)

	return &App{
		config:           c,
		authService:      as,
		highlightService: hs,
		Mode:             ModeOffline,
		reader:           bufio.NewReader(os.Stdin),
	}, nil
}

func (app *App) setMode(mode Mode) {
	if app.Mode != mode {
		app.Mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Run(ctx context.Context) {
	defer a.authService.Close(ctx)
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn
}

// StartOnlineStatusWatcher periodically pings the server and flips the app
// between online and offline mode. Local commands keep working either way;
// only sync needs the server.
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
