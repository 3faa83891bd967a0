package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/tgmarket/internal/domain/errors"
	"github.com/polkiloo/tgmarket/internal/domain/model"
)

type notificationRepository struct {
	q querier
}

const notificationColumns = `id, event, COALESCE(order_id, ''), COALESCE(proposal_id, ''), actor_id, client_id, provider_id,
                   price, status, state, attempts, push_sent, next_attempt_at, last_error, created_at, delivered_at`

func scanNotification(row pgx.Row) (model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.Event, &n.OrderID, &n.ProposalID, &n.ActorID, &n.ClientID, &n.ProviderID,
		&n.Price, &n.Status, &n.State, &n.Attempts, &n.PushSent, &n.NextAttemptAt, &n.LastError, &n.CreatedAt, &n.DeliveredAt)
	return n, err
}

func (r *notificationRepository) Enqueue(ctx context.Context, n *model.Notification) error {
	const query = `INSERT INTO notifications (id, event, order_id, proposal_id, actor_id, client_id, provider_id, price, status, state)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
                   RETURNING created_at, next_attempt_at`
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.State = model.NotificationPending
	return r.q.QueryRow(ctx, query, n.ID, n.Event, nullableString(n.OrderID), nullableString(n.ProposalID),
		n.ActorID, n.ClientID, n.ProviderID, n.Price, n.Status, n.State).
		Scan(&n.CreatedAt, &n.NextAttemptAt)
}

// ClaimDue locks a batch of due rows, skipping rows claimed by other
// dispatchers, and pushes their next attempt past the lease.
func (r *notificationRepository) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]model.Notification, error) {
	const selectQuery = `SELECT ` + notificationColumns + `
                         FROM notifications
                         WHERE state='pending' AND next_attempt_at <= NOW()
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	const claimQuery = `UPDATE notifications SET attempts=attempts+1, next_attempt_at=$2 WHERE id=$1`

	var claimed []model.Notification
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectQuery, limit)
		if err != nil {
			return err
		}
		for rows.Next() {
			n, err := scanNotification(rows)
			if err != nil {
				rows.Close()
				return err
			}
			claimed = append(claimed, n)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		leaseUntil := time.Now().Add(lease)
		for i := range claimed {
			if _, err := tx.Exec(ctx, claimQuery, claimed[i].ID, leaseUntil); err != nil {
				return err
			}
			claimed[i].Attempts++
			claimed[i].NextAttemptAt = leaseUntil
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id string, pushSent bool) error {
	const query = `UPDATE notifications SET state='delivered', push_sent=$2, last_error='', delivered_at=NOW() WHERE id=$1`
	return r.exec(ctx, query, id, pushSent)
}

func (r *notificationRepository) Reschedule(ctx context.Context, id string, pushSent bool, next time.Time, reason string) error {
	const query = `UPDATE notifications SET push_sent=$2, next_attempt_at=$3, last_error=$4 WHERE id=$1`
	return r.exec(ctx, query, id, pushSent, next, reason)
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, pushSent bool, reason string) error {
	const query = `UPDATE notifications SET state='failed', push_sent=$2, last_error=$3 WHERE id=$1`
	return r.exec(ctx, query, id, pushSent, reason)
}

func (r *notificationRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

type chatRepository struct {
	q querier
}

func (r *chatRepository) EnsureChat(ctx context.Context, userA, userB int64) (string, error) {
	const query = `INSERT INTO chats (id, user_low, user_high) VALUES ($1, $2, $3)
                   ON CONFLICT (user_low, user_high) DO UPDATE SET user_low=EXCLUDED.user_low
                   RETURNING id`
	if userA > userB {
		userA, userB = userB, userA
	}
	var id string
	if err := r.q.QueryRow(ctx, query, uuid.NewString(), userA, userB).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// SendSystemMessage stores the message once per notification ID. A replay
// leaves msg without an ID or timestamp.
func (r *chatRepository) SendSystemMessage(ctx context.Context, msg *model.ChatMessage) error {
	const query = `INSERT INTO chat_messages (id, chat_id, sender_id, text, meta, notification_id)
                   VALUES ($1, $2, $3, $4, $5::jsonb, $6)
                   ON CONFLICT (notification_id) DO NOTHING
                   RETURNING created_at`
	meta, err := json.Marshal(msg.Meta)
	if err != nil {
		return fmt.Errorf("encode message meta: %w", err)
	}
	id := msg.ID
	if id == "" {
		id = uuid.NewString()
	}
	var createdAt time.Time
	err = r.q.QueryRow(ctx, query, id, msg.ChatID, msg.SenderID, msg.Text, string(meta), nullableString(msg.NotificationID)).
		Scan(&createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	msg.ID = id
	msg.CreatedAt = createdAt
	return nil
}

func (r *chatRepository) Messages(ctx context.Context, chatID string) ([]model.ChatMessage, error) {
	const query = `SELECT id, chat_id, sender_id, text, meta::text, COALESCE(notification_id, ''), created_at
                   FROM chat_messages WHERE chat_id=$1 ORDER BY seq`
	rows, err := r.q.Query(ctx, query, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ChatMessage
	for rows.Next() {
		var (
			m    model.ChatMessage
			meta string
		)
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Text, &meta, &m.NotificationID, &m.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(meta), &m.Meta); err != nil {
			return nil, fmt.Errorf("decode message meta: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
