package cli

import (
	"context"
	"strings"
)

func printNames(title string, names []string) {
	if len(names) == 0 {
		printlnFn(title + ": none")
		return
	}
	printlnFn(title + ": " + strings.Join(names, ", "))
}

func (a *App) Friends(ctx context.Context) error {
	friends, err := a.social.Friends(ctx, a.session)
	if err != nil {
		return a.report(err)
	}
	printNames("Friends", friends)
	return nil
}

func (a *App) Requests(ctx context.Context) error {
	in, err := a.social.IncomingRequests(ctx, a.session)
	if err != nil {
		return a.report(err)
	}
	out, err := a.social.OutgoingRequests(ctx, a.session)
	if err != nil {
		return a.report(err)
	}
	printNames("Incoming", in)
	printNames("Outgoing", out)
	return nil
}

// withName runs fn with the single username argument of a command.
func (a *App) withName(args []string, usage string, fn func(name string) error) error {
	if len(args) != 1 {
		return a.usage(usage)
	}
	if err := fn(args[0]); err != nil {
		return a.report(err)
	}
	return nil
}

func (a *App) AddFriend(ctx context.Context, args []string) error {
	return a.withName(args, "addfriend <username>", func(name string) error {
		if err := a.social.SendFriendRequest(ctx, a.session, name); err != nil {
			return err
		}
		printlnFn("Friend request sent to", name)
		return nil
	})
}

func (a *App) CancelRequest(ctx context.Context, args []string) error {
	return a.withName(args, "cancel <username>", func(name string) error {
		return a.social.CancelFriendRequest(ctx, a.session, name)
	})
}

func (a *App) Accept(ctx context.Context, args []string) error {
	return a.withName(args, "accept <username>", func(name string) error {
		if err := a.social.AcceptFriendRequest(ctx, a.session, name); err != nil {
			return err
		}
		printlnFn("You are now friends with", name)
		return nil
	})
}

func (a *App) Decline(ctx context.Context, args []string) error {
	return a.withName(args, "decline <username>", func(name string) error {
		return a.social.DeclineFriendRequest(ctx, a.session, name)
	})
}

func (a *App) Unfriend(ctx context.Context, args []string) error {
	return a.withName(args, "unfriend <username>", func(name string) error {
		return a.social.RemoveFriend(ctx, a.session, name)
	})
}
