package services

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/dbx"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/models"
	"github.com/dmitrijs2005/gophchat/internal/repositories/collections"
	"github.com/dmitrijs2005/gophchat/internal/timex"
)

// newMessageID is a test seam for message identifiers.
var newMessageID = uuid.NewString

// ConversationService owns direct threads and rooms.
//
// Messages go to a models.ChatTarget: a user (direct thread keyed by
// models.ConversationKey) or a room the sender participates in. A room is
// removed together with its history when its last participant leaves.
type ConversationService interface {
	DirectThread(ctx context.Context, userA, userB string) ([]models.Message, error)
	RoomThread(ctx context.Context, name string) ([]models.Message, error)

	SendTextMessage(ctx context.Context, sess *models.Session, target models.ChatTarget, text string) (*models.Message, error)
	SendFileMessage(ctx context.Context, sess *models.Session, target models.ChatTarget, file *models.Attachment) (*models.Message, error)

	CreateRoom(ctx context.Context, sess *models.Session, name, password string) error
	JoinRoom(ctx context.Context, sess *models.Session, name, password string) error
	LeaveRoom(ctx context.Context, sess *models.Session, name string) error
	InviteToRoom(ctx context.Context, sess *models.Session, name, friend string) error
	RoomParticipants(ctx context.Context, name string) ([]string, error)

	ListConversations(ctx context.Context, sess *models.Session) ([]models.Conversation, error)
}

type conversationService struct {
	db       *dbx.Serializer
	verifier cryptox.CredentialVerifier
	clock    timex.Clock
	log      logging.Logger
}

func NewConversationService(db *dbx.Serializer, verifier cryptox.CredentialVerifier, clock timex.Clock, log logging.Logger) ConversationService {
	return &conversationService{db: db, verifier: verifier, clock: clock, log: log.With("component", "conversation")}
}

func (s *conversationService) DirectThread(ctx context.Context, userA, userB string) ([]models.Message, error) {
	var thread []models.Message
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		threads, err := loadDirectMessages(ctx, collections.NewSQLiteRepository(db))
		if err != nil {
			return err
		}
		thread = threads[models.ConversationKey(userA, userB)]
		return nil
	})
	if err != nil {
		return nil, err
	}
	if thread == nil {
		thread = []models.Message{}
	}
	return thread, nil
}

func (s *conversationService) RoomThread(ctx context.Context, name string) ([]models.Message, error) {
	thread := []models.Message{}
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		rooms, err := loadRooms(ctx, collections.NewSQLiteRepository(db))
		if err != nil {
			return err
		}
		if room, ok := rooms[name]; ok && room.Messages != nil {
			thread = room.Messages
		}
		return nil
	})
	return thread, err
}

func (s *conversationService) SendTextMessage(ctx context.Context, sess *models.Session, target models.ChatTarget, text string) (*models.Message, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: message text is empty", common.ErrorValidation)
	}
	return s.appendMessage(ctx, sess, target, models.Message{Type: models.MessageTypeText, Text: text})
}

func (s *conversationService) SendFileMessage(ctx context.Context, sess *models.Session, target models.ChatTarget, file *models.Attachment) (*models.Message, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if file == nil || file.Filename == "" || file.Data == "" {
		return nil, fmt.Errorf("%w: file payload is empty", common.ErrorValidation)
	}
	return s.appendMessage(ctx, sess, target, models.Message{
		Type:     models.MessageTypeFile,
		Filename: file.Filename,
		Data:     file.Data,
	})
}

// appendMessage stamps msg and appends it to the target thread in a single
// write: either the message is stored or nothing changes.
func (s *conversationService) appendMessage(ctx context.Context, sess *models.Session, target models.ChatTarget, msg models.Message) (*models.Message, error) {
	if target.Name == "" {
		return nil, fmt.Errorf("%w: no chat target selected", common.ErrorValidation)
	}
	if target.Kind != models.ConversationRoom && target.Name == sess.Username {
		return nil, fmt.Errorf("%w: cannot message yourself", common.ErrorValidation)
	}

	msg.ID = newMessageID()
	msg.From = sess.Username
	msg.Timestamp = s.clock()

	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		if target.Kind == models.ConversationRoom {
			rooms, err := loadRooms(ctx, repo)
			if err != nil {
				return err
			}
			room, ok := rooms[target.Name]
			if !ok {
				return fmt.Errorf("%w: room %q", common.ErrorNotFound, target.Name)
			}
			if !room.HasParticipant(sess.Username) {
				return fmt.Errorf("%w: not a participant of room %q", common.ErrorUnauthorized, target.Name)
			}
			room.Messages = append(room.Messages, msg)
			return collections.Save(ctx, repo, collections.KeyRooms, rooms)
		}

		msg.To = target.Name
		threads, err := loadDirectMessages(ctx, repo)
		if err != nil {
			return err
		}
		key := models.ConversationKey(sess.Username, target.Name)
		threads[key] = append(threads[key], msg)
		return collections.Save(ctx, repo, collections.KeyDirectMessages, threads)
	})
	if err != nil {
		s.log.Error(ctx, "message not stored", "from", sess.Username, "target", target.Name, "error", err)
		return nil, err
	}

	s.log.Debug(ctx, "message stored", "from", sess.Username, "target", target.Name, "kind", target.Kind, "type", msg.Type)
	return &msg, nil
}

func (s *conversationService) CreateRoom(ctx context.Context, sess *models.Session, name, password string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: room name required", common.ErrorValidation)
	}

	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		rooms, err := loadRooms(ctx, repo)
		if err != nil {
			return err
		}
		if _, ok := rooms[name]; ok {
			return fmt.Errorf("%w: room name already taken", common.ErrorConflict)
		}
		if password == "" {
			return fmt.Errorf("%w: a password is required to create a room", common.ErrorValidation)
		}

		sealed, err := s.verifier.Seal(password)
		if err != nil {
			return fmt.Errorf("failed to seal room password: %w", err)
		}
		rooms[name] = &models.Room{
			Password:     sealed,
			Participants: []string{sess.Username},
			Messages:     []models.Message{},
		}
		return collections.Save(ctx, repo, collections.KeyRooms, rooms)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "room created", "room", name, "owner", sess.Username)
	return nil
}

func (s *conversationService) JoinRoom(ctx context.Context, sess *models.Session, name, password string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		rooms, err := loadRooms(ctx, repo)
		if err != nil {
			return err
		}
		room, ok := rooms[name]
		if !ok {
			return fmt.Errorf("%w: room %q does not exist", common.ErrorNotFound, name)
		}
		if !s.verifier.Verify(room.Password, password) {
			return fmt.Errorf("%w: incorrect room password", common.ErrorAuth)
		}
		if room.HasParticipant(sess.Username) {
			return nil
		}
		room.Participants = append(room.Participants, sess.Username)
		return collections.Save(ctx, repo, collections.KeyRooms, rooms)
	})
}

func (s *conversationService) LeaveRoom(ctx context.Context, sess *models.Session, name string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	deleted := false
	err := s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		rooms, err := loadRooms(ctx, repo)
		if err != nil {
			return err
		}
		room, ok := rooms[name]
		if !ok {
			return nil
		}
		room.Participants = slices.DeleteFunc(room.Participants, func(u string) bool { return u == sess.Username })
		if len(room.Participants) == 0 {
			delete(rooms, name)
			deleted = true
		}
		return collections.Save(ctx, repo, collections.KeyRooms, rooms)
	})
	if err == nil && deleted {
		s.log.Info(ctx, "room deleted", "room", name)
	}
	return err
}

func (s *conversationService) InviteToRoom(ctx context.Context, sess *models.Session, name, friend string) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	return s.db.Do(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(tx)

		rooms, err := loadRooms(ctx, repo)
		if err != nil {
			return err
		}
		room, ok := rooms[name]
		if !ok {
			return fmt.Errorf("%w: room %q", common.ErrorNotFound, name)
		}
		if !room.HasParticipant(sess.Username) {
			return fmt.Errorf("%w: not a participant of room %q", common.ErrorUnauthorized, name)
		}
		if room.HasParticipant(friend) {
			return fmt.Errorf("%w: %q already in room", common.ErrorConflict, friend)
		}
		room.Participants = append(room.Participants, friend)
		return collections.Save(ctx, repo, collections.KeyRooms, rooms)
	})
}

func (s *conversationService) RoomParticipants(ctx context.Context, name string) ([]string, error) {
	var participants []string
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		rooms, err := loadRooms(ctx, collections.NewSQLiteRepository(db))
		if err != nil {
			return err
		}
		room, ok := rooms[name]
		if !ok {
			return fmt.Errorf("%w: room %q", common.ErrorNotFound, name)
		}
		participants = slices.Clone(room.Participants)
		return nil
	})
	return participants, err
}

// ListConversations returns the user's rooms followed by direct partners,
// each group sorted by name. Partners are the user's friends plus everyone
// the user shares a non-empty thread with.
func (s *conversationService) ListConversations(ctx context.Context, sess *models.Session) ([]models.Conversation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	user := sess.Username

	var roomNames, partners []string
	err := s.db.View(ctx, func(ctx context.Context, db dbx.DBTX) error {
		repo := collections.NewSQLiteRepository(db)

		rooms, err := loadRooms(ctx, repo)
		if err != nil {
			return err
		}
		for name, room := range rooms {
			if room.HasParticipant(user) {
				roomNames = append(roomNames, name)
			}
		}

		threads, err := loadDirectMessages(ctx, repo)
		if err != nil {
			return err
		}
		friends, err := loadUserSets(ctx, repo, collections.KeyFriends)
		if err != nil {
			return err
		}

		seen := make(map[string]struct{})
		for _, thread := range threads {
			if p, ok := models.Partner(thread, user); ok {
				seen[p] = struct{}{}
			}
		}
		for _, f := range friends.Members(user) {
			seen[f] = struct{}{}
		}
		// imported data may hold a thread with oneself
		delete(seen, user)
		for p := range seen {
			partners = append(partners, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(roomNames)
	slices.Sort(partners)

	result := make([]models.Conversation, 0, len(roomNames)+len(partners))
	for _, name := range roomNames {
		result = append(result, models.Conversation{Name: name, Kind: models.ConversationRoom})
	}
	for _, name := range partners {
		result = append(result, models.Conversation{Name: name, Kind: models.ConversationUser})
	}
	return result, nil
}
