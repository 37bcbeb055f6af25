package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool

	Signup(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Friends(ctx context.Context) error
	Requests(ctx context.Context) error
	AddFriend(ctx context.Context, args []string) error
	CancelRequest(ctx context.Context, args []string) error
	Accept(ctx context.Context, args []string) error
	Decline(ctx context.Context, args []string) error
	Unfriend(ctx context.Context, args []string) error

	Chats(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	History(ctx context.Context) error
	Send(ctx context.Context, text string) error
	SendFile(ctx context.Context, args []string) error

	CreateRoom(ctx context.Context, args []string) error
	JoinRoom(ctx context.Context, args []string) error
	LeaveRoom(ctx context.Context, args []string) error
	Invite(ctx context.Context, args []string) error
	Members(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Import(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: signup, login, import, exit"
	helpLoggedIn  = "Available commands: whoami, friends, requests, addfriend, cancel, accept, decline, unfriend, " +
		"chats, open, history, send, sendfile, mkroom, join, leave, invite, members, export, import, share, logout, exit"
)

// runREPL reads commands line by line from scanner and dispatches them to a.
// The first token is the command; "send" receives the rest of the line
// verbatim, every other command its remaining tokens. The loop ends on EOF,
// "exit" or "quit".
//
// Errors returned by handlers are ignored here; handlers report them to the
// user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("gc%s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "signup", "register":
			_ = a.Signup(ctx, args)
		case "login":
			_ = a.Login(ctx, args)
		case "logout":
			_ = a.Logout(ctx)
		case "whoami":
			_ = a.WhoAmI(ctx)

		case "friends":
			_ = a.Friends(ctx)
		case "requests":
			_ = a.Requests(ctx)
		case "addfriend":
			_ = a.AddFriend(ctx, args)
		case "cancel":
			_ = a.CancelRequest(ctx, args)
		case "accept":
			_ = a.Accept(ctx, args)
		case "decline":
			_ = a.Decline(ctx, args)
		case "unfriend":
			_ = a.Unfriend(ctx, args)

		case "chats", "l":
			_ = a.Chats(ctx)
		case "open":
			_ = a.Open(ctx, args)
		case "history":
			_ = a.History(ctx)
		case "send":
			_ = a.Send(ctx, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
		case "sendfile":
			_ = a.SendFile(ctx, args)

		case "mkroom":
			_ = a.CreateRoom(ctx, args)
		case "join":
			_ = a.JoinRoom(ctx, args)
		case "leave":
			_ = a.LeaveRoom(ctx, args)
		case "invite":
			_ = a.Invite(ctx, args)
		case "members":
			_ = a.Members(ctx, args)

		case "export":
			_ = a.Export(ctx, args)
		case "import":
			_ = a.Import(ctx, args)
		case "share":
			_ = a.Share(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
