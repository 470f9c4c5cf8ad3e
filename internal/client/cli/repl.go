package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Users(ctx context.Context) error
	Token(ctx context.Context) error
	IssueToken(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line until EOF, "exit" or "quit".
//
//	Not logged in: help, register, login, jwt, exit
//	Logged in:     help, users, token, jwt, logout, exit
//
// Handlers report their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "bpay%s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: users, token, jwt, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: register, login, jwt, exit")
			}
		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "users":
			_ = a.Users(ctx)
		case "token":
			_ = a.Token(ctx)
		case "jwt":
			_ = a.IssueToken(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", parts[0])
		}
	}
}
