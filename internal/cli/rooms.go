package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/models"
)

// roomPassword reads the room password from the second argument or prompts
// for it.
func (a *App) roomPassword(args []string) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}
	return GetPassword(a.lines, "Room password", a.stdout)
}

func (a *App) CreateRoom(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.usage("mkroom <name> [password]")
	}
	if !a.isLoggedIn() {
		return a.report(errNotLogin)
	}
	password, err := a.roomPassword(args)
	if err != nil {
		return a.report(err)
	}
	if err := a.chats.CreateRoom(ctx, a.session, args[0], password); err != nil {
		return a.report(err)
	}
	printlnFn("Room created:", args[0])
	return nil
}

func (a *App) JoinRoom(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return a.usage("join <name> [password]")
	}
	if !a.isLoggedIn() {
		return a.report(errNotLogin)
	}
	password, err := a.roomPassword(args)
	if err != nil {
		return a.report(err)
	}
	if err := a.chats.JoinRoom(ctx, a.session, args[0], password); err != nil {
		return a.report(err)
	}
	printlnFn("Joined", args[0])
	return nil
}

func (a *App) LeaveRoom(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("leave <name>")
	}
	if err := a.chats.LeaveRoom(ctx, a.session, args[0]); err != nil {
		return a.report(err)
	}
	if a.current != nil && a.current.Kind == models.ConversationRoom && a.current.Name == args[0] {
		a.current = nil
	}
	printlnFn("Left", args[0])
	return nil
}

func (a *App) Invite(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return a.usage("invite <room> <username>")
	}
	if err := a.chats.InviteToRoom(ctx, a.session, args[0], args[1]); err != nil {
		return a.report(err)
	}
	printlnFn("Added", args[1], "to", args[0])
	return nil
}

func (a *App) Members(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("members <room>")
	}
	members, err := a.chats.RoomParticipants(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	printlnFn("Members: " + strings.Join(members, ", "))
	return nil
}
