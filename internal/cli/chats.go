package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/filex"
	"github.com/dmitrijs2005/gophchat/internal/models"
)

func (a *App) Chats(ctx context.Context) error {
	list, err := a.chats.ListConversations(ctx, a.session)
	if err != nil {
		return a.report(err)
	}
	if len(list) == 0 {
		printlnFn("No conversations yet")
		return nil
	}
	for _, c := range list {
		printlnFn(" ", targetLabel(c))
	}
	return nil
}

// Open selects the conversation later commands act on. "#name" picks a
// room and "@name" a user; a bare name is looked up among the listed
// conversations, rooms first.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("open <#room|@user|name>")
	}
	if !a.isLoggedIn() {
		return a.report(errNotLogin)
	}
	name := args[0]

	var target models.ChatTarget
	switch {
	case strings.HasPrefix(name, "#") && len(name) > 1:
		target = models.ChatTarget{Name: name[1:], Kind: models.ConversationRoom}
	case strings.HasPrefix(name, "@") && len(name) > 1:
		target = models.ChatTarget{Name: name[1:], Kind: models.ConversationUser}
	default:
		list, err := a.chats.ListConversations(ctx, a.session)
		if err != nil {
			return a.report(err)
		}
		found := false
		for _, c := range list {
			if c.Name == name {
				target, found = c, true
				break
			}
		}
		if !found {
			return a.report(fmt.Errorf("%w: conversation %q", common.ErrorNotFound, name))
		}
	}

	a.current = &target
	printlnFn("Opened", targetLabel(target))
	return a.History(ctx)
}

func (a *App) thread(ctx context.Context) ([]models.Message, error) {
	if a.current == nil {
		return nil, fmt.Errorf("%w: open a conversation first", common.ErrorValidation)
	}
	if a.current.Kind == models.ConversationRoom {
		return a.chats.RoomThread(ctx, a.current.Name)
	}
	return a.chats.DirectThread(ctx, a.session.Username, a.current.Name)
}

func (a *App) History(ctx context.Context) error {
	if !a.isLoggedIn() {
		return a.report(errNotLogin)
	}
	msgs, err := a.thread(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(msgs) == 0 {
		printlnFn("No messages yet")
	}
	for _, m := range msgs {
		printlnFn(formatMessage(m))
	}
	return nil
}

func formatMessage(m models.Message) string {
	ts := m.Timestamp.Local().Format("2006-01-02 15:04")
	if m.Type == models.MessageTypeFile {
		return fmt.Sprintf("[%s] %s sent file %s", ts, m.From, m.Filename)
	}
	return fmt.Sprintf("[%s] %s: %s", ts, m.From, m.Text)
}

func (a *App) target() models.ChatTarget {
	if a.current == nil {
		return models.ChatTarget{}
	}
	return *a.current
}

func (a *App) Send(ctx context.Context, text string) error {
	if text == "" {
		return a.usage("send <text>")
	}
	msg, err := a.chats.SendTextMessage(ctx, a.session, a.target(), text)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatMessage(*msg))
	return nil
}

func (a *App) SendFile(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return a.usage("sendfile <path>")
	}

	file, err := filex.ReadAttachment(args[0], a.config.MaxFileSize)
	if errors.Is(err, filex.ErrorFileTooLarge) {
		return a.report(fmt.Errorf("file is larger than %s", sizeLabel(a.config.MaxFileSize)))
	}
	if err != nil {
		return a.report(err)
	}

	msg, err := a.chats.SendFileMessage(ctx, a.session, a.target(), file)
	if err != nil {
		return a.report(err)
	}
	printlnFn(formatMessage(*msg))
	return nil
}

func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MiB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}
