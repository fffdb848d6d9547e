package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/JovanneSousa/health-chat-sync/internal/access"
	"github.com/JovanneSousa/health-chat-sync/internal/config"
	"github.com/JovanneSousa/health-chat-sync/internal/model"
)

var (
	conversationColumns = []string{"id", "title", "patient_id", "attendant_id", "status", "priority", "created_at", "updated_at"}
	messageColumns      = []string{"id", "conversation_id", "sender_id", "content", "message_type", "created_at"}
	profileColumns      = []string{"id", "name", "email", "role", "avatar", "password_hash"}
)

type Repository struct {
	connection *sqlx.DB
}

func New(cfg *config.Config) *Repository {
	conn, err := sqlx.Connect("postgres", cfg.Postgres.DSN())
	if err != nil {
		log.Fatal("error connect: ", err)
	}

	return &Repository{
		connection: conn,
	}
}

func NewWithDB(conn *sqlx.DB) *Repository {
	return &Repository{
		connection: conn,
	}
}

func (r *Repository) Close() {
	_ = r.connection.Close()
}

func (r *Repository) GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error) {
	query, args, err := sq.Select(conversationColumns...).
		From("conversations").
		Where(sq.Eq{"id": conversationID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var conv model.Conversation
	err = r.connection.GetContext(ctx, &conv, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return &conv, nil
}

func (r *Repository) ListConversations(ctx context.Context, scope access.Scope) (model.ConversationList, error) {
	queryBuilder := sq.Select(conversationColumns...).
		From("conversations").
		OrderBy("updated_at DESC", "id ASC")

	if predicate := scope.Predicate(); predicate != nil {
		queryBuilder = queryBuilder.Where(predicate)
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var conversations model.ConversationList
	err = r.connection.SelectContext(ctx, &conversations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return conversations, nil
}

func (r *Repository) CreateConversation(ctx context.Context, conv model.NewConversation) (*model.Conversation, error) {
	query, args, err := sq.Insert("conversations").
		Columns("title", "patient_id", "status", "priority").
		Values(conv.Title, conv.PatientID, conv.Status, conv.Priority).
		Suffix("RETURNING id, title, patient_id, attendant_id, status, priority, created_at, updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var created model.Conversation
	err = r.connection.GetContext(ctx, &created, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return &created, nil
}

// AssignConversation sets attendant_id unconditionally; concurrent claims are
// last-write-wins.
func (r *Repository) AssignConversation(ctx context.Context, conversationID, attendantID string) error {
	return r.updateConversation(ctx, conversationID, map[string]interface{}{
		"attendant_id": attendantID,
		"updated_at":   sq.Expr("now()"),
	})
}

func (r *Repository) UpdateConversationStatus(ctx context.Context, conversationID string, status model.ConversationStatus) error {
	return r.updateConversation(ctx, conversationID, map[string]interface{}{
		"status":     status,
		"updated_at": sq.Expr("now()"),
	})
}

func (r *Repository) TouchConversation(ctx context.Context, conversationID string) (time.Time, error) {
	query, args, err := sq.Update("conversations").
		Set("updated_at", sq.Expr("GREATEST(updated_at, now())")).
		Where(sq.Eq{"id": conversationID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to build sql query: %v", err)
	}

	var updatedAt time.Time
	err = r.connection.GetContext(ctx, &updatedAt, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("failed to touch conversation: %w", err)
	}

	return updatedAt, nil
}

func (r *Repository) updateConversation(ctx context.Context, conversationID string, fields map[string]interface{}) error {
	query, args, err := sq.Update("conversations").
		SetMap(fields).
		Where(sq.Eq{"id": conversationID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	res, err := r.connection.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update conversation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, model.ErrNotFound)
	}

	return nil
}

func (r *Repository) InsertMessage(ctx context.Context, message model.NewMessage) (*model.Message, error) {
	query, args, err := sq.Insert("messages").
		Columns("conversation_id", "sender_id", "content", "message_type").
		Values(message.ConversationID, message.SenderID, message.Content, message.MessageType).
		Suffix("RETURNING id, conversation_id, sender_id, content, message_type, created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var saved model.Message
	err = r.connection.GetContext(ctx, &saved, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return &saved, nil
}

func (r *Repository) ListMessages(ctx context.Context, conversationID string) (model.MessageList, error) {
	query, args, err := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"conversation_id": conversationID}).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var messages model.MessageList
	err = r.connection.SelectContext(ctx, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return messages, nil
}

func (r *Repository) GetLastMessage(ctx context.Context, conversationID string) (*model.Message, error) {
	query, args, err := sq.Select(messageColumns...).
		From("messages").
		Where(sq.Eq{"conversation_id": conversationID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var msg model.Message
	err = r.connection.GetContext(ctx, &msg, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("last message of %s: %w", conversationID, model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get last message: %w", err)
	}

	return &msg, nil
}

func (r *Repository) GetProfile(ctx context.Context, profileID string) (*model.Profile, error) {
	return r.getProfile(ctx, sq.Eq{"id": profileID})
}

func (r *Repository) GetProfileByEmail(ctx context.Context, email string) (*model.Profile, error) {
	return r.getProfile(ctx, sq.Eq{"lower(email)": email})
}

func (r *Repository) getProfile(ctx context.Context, where sq.Sqlizer) (*model.Profile, error) {
	query, args, err := sq.Select(profileColumns...).
		From("profiles").
		Where(where).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var profile model.Profile
	err = r.connection.GetContext(ctx, &profile, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile: %w", model.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (r *Repository) CreateProfile(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	query, args, err := sq.Insert("profiles").
		Columns("name", "email", "role", "avatar", "password_hash").
		Values(profile.Name, profile.Email, profile.Role, profile.Avatar, profile.PasswordHash).
		Suffix("ON CONFLICT (email) DO NOTHING RETURNING id, name, email, role, avatar, password_hash").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var created model.Profile
	err = r.connection.GetContext(ctx, &created, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &created, nil
}

func (r *Repository) UpdateProfileName(ctx context.Context, profileID, name string) error {
	query, args, err := sq.Update("profiles").
		Set("name", name).
		Where(sq.Eq{"id": profileID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build sql query: %v", err)
	}

	result, err := r.connection.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile name: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("profile %s: %w", profileID, model.ErrNotFound)
	}

	return nil
}

func (r *Repository) ListProfilesByRole(ctx context.Context, role model.Role) ([]model.Profile, error) {
	query, args, err := sq.Select(profileColumns...).
		From("profiles").
		Where(sq.Eq{"role": role}).
		OrderBy("name ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build sql query: %v", err)
	}

	var profiles []model.Profile
	err = r.connection.SelectContext(ctx, &profiles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	return profiles, nil
}

func (r *Repository) CountConversations(ctx context.Context, filter model.ConversationFilter) (int64, error) {
	queryBuilder := sq.Select("COUNT(*)").From("conversations")
	if filter.Status != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"status": filter.Status})
	}
	if filter.AttendantID != "" {
		queryBuilder = queryBuilder.Where(sq.Eq{"attendant_id": filter.AttendantID})
	}
	if !filter.UpdatedSince.IsZero() {
		queryBuilder = queryBuilder.Where(sq.GtOrEq{"updated_at": filter.UpdatedSince})
	}

	query, args, err := queryBuilder.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build sql query: %v", err)
	}

	var count int64
	err = r.connection.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}

	return count, nil
}
