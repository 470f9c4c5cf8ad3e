package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/bpay/bpay/internal/client/api"
	"github.com/bpay/bpay/internal/client/config"
)

// API is the server surface the commands use.
type API interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, name, email, pin, role string) (string, error)
	Login(ctx context.Context, email, pin string) (string, error)
	IssueToken(ctx context.Context, payload map[string]any) (string, error)
	ListUsers(ctx context.Context, token string) ([]api.User, error)
}

type App struct {
	config *config.Config
	api    API
	reader *bufio.Reader
	out    io.Writer

	email string
	token string
}

func NewApp(c *config.Config) *App {
	return newApp(c, api.New(c.ServerURL, c.RequestTimeout), os.Stdin, os.Stdout)
}

func newApp(c *config.Config, a API, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: a, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}

// Run checks the server once and then blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	a.println("Welcome to B-Pay CLI (type 'help' for commands)")
	if err := a.api.Ping(ctx); err != nil {
		a.println("Warning:", err.Error())
	}
	runREPL(ctx, a, a.status, a.reader, a.out)
}
