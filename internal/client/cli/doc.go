// Package cli provides the interactive B-Pay command-line client.
//
// The REPL offers register and login, keeps the session token returned by a
// successful login, and lets an admin list accounts with it. PINs are read
// from the terminal without echo.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits or
// input ends.
package cli
