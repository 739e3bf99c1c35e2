package cli

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/pointpool/internal/client/client"
	"github.com/dmitrijs2005/pointpool/internal/client/config"
	"github.com/dmitrijs2005/pointpool/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pointpool/internal/server/models"
)

// API is the part of client.GRPCClient the commands use.
type API interface {
	Signup(ctx context.Context, name, password string) (models.User, error)
	Login(ctx context.Context, name, password string) (models.User, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (models.User, error)
	Collect(ctx context.Context) (int64, error)
	Assign(ctx context.Context, championID int64) (int64, error)
	Balance(ctx context.Context) (models.Balance, error)
	PoolStatus(ctx context.Context) (models.Pool, bool, error)
	Champions(ctx context.Context) ([]models.Champion, error)
	Teams(ctx context.Context) ([]models.Team, error)
	SessionToken() string
	SetSessionToken(token string)
	LoggedIn() bool
	Close() error
}

type App struct {
	config   *config.Config
	api      API
	meta     metadata.Repository
	closers  []io.Closer
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	repos, err := client.InitDatabase(ctx, c.StateFile)
	if err != nil {
		log.Printf("error initializing state database: %s", err.Error())
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		api:     apiClient,
		meta:    repos.Metadata,
		closers: []io.Closer{apiClient, repos},
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	a.restoreSession(ctx)
	return a, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.close()
	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.api.LoggedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() && a.userName != "" {
		return a.userName
	}
	return "anonymous"
}
