package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs. The real
// App type satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Sync(ctx context.Context) error
	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	SwitchCreate(ctx context.Context) error
	SwitchList(ctx context.Context) error
	CheckIn(ctx context.Context, id string) error
	Disclose(ctx context.Context, link string) error
}

// runREPL reads a line, parses the first token as the command, and
// dispatches. The loop exits on scanner EOF or "exit"/"quit". Command
// errors are printed and swallowed to keep the loop alive.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("inkveil %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		report := func(err error) {
			if err != nil {
				printlnFn("Error:", err.Error())
			}
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: add, (l)ist, show <id>, delete <id>, sync, export, import <file>, switch, switches, checkin <id>, disclose <link>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, disclose <link>, exit")
			}

		case "register":
			report(a.Register(ctx))

		case "login":
			report(a.Login(ctx))

		case "logout":
			report(a.Logout(ctx))

		case "add":
			report(a.Add(ctx))

		case "l", "list":
			report(a.List(ctx))

		case "show":
			if len(args) == 0 {
				printlnFn("Usage: show <id>")
				continue
			}
			report(a.Show(ctx, args[0]))

		case "delete":
			if len(args) == 0 {
				printlnFn("Usage: delete <id>")
				continue
			}
			report(a.Delete(ctx, args[0]))

		case "sync":
			report(a.Sync(ctx))

		case "export":
			report(a.Export(ctx, args))

		case "import":
			if len(args) == 0 {
				printlnFn("Usage: import <file> [all|new|replace]")
				continue
			}
			report(a.Import(ctx, args))

		case "switch":
			report(a.SwitchCreate(ctx))

		case "switches":
			report(a.SwitchList(ctx))

		case "checkin":
			if len(args) == 0 {
				printlnFn("Usage: checkin <id>")
				continue
			}
			report(a.CheckIn(ctx, args[0]))

		case "disclose":
			if len(args) == 0 {
				printlnFn("Usage: disclose <link>")
				continue
			}
			report(a.Disclose(ctx, args[0]))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
