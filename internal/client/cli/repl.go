package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Add(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Cart(ctx context.Context) error
	Ping(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line and dispatches them to a. It returns
// on EOF or when the user types "exit" or "quit". Command errors are
// reported and the loop continues. Commands prompting for input read from
// the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shop %s> ", statusFn()))
		line, readErr := reader.ReadString('\n')
		if readErr != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add <item>, remove <item>, cart, upload <path>, ping, logout, exit")
			} else {
				printlnFn("Available commands: signup, login, upload <path>, ping, exit")
			}

		case "signup":
			err = a.Signup(ctx)

		case "login":
			err = a.Login(ctx)

		case "ping":
			err = a.Ping(ctx)

		case "upload":
			err = a.Upload(ctx, args)

		case "add", "remove", "cart", "logout":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
			switch cmd {
			case "add":
				err = a.Add(ctx, args)
			case "remove":
				err = a.Remove(ctx, args)
			case "cart":
				err = a.Cart(ctx)
			case "logout":
				err = a.Logout(ctx)
			}

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}
