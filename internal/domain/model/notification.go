package model

import "time"

// Event names a committed change that participants must hear about.
type Event string

const (
	EventOrderCreated      Event = "order_created"
	EventOrderAccepted     Event = "order_accepted"
	EventOrderDeclined     Event = "order_declined"
	EventWorkStarted       Event = "work_started"
	EventProviderCompleted Event = "provider_completed"
	EventOrderCompleted    Event = "order_completed"
	EventOrderCancelled    Event = "order_cancelled"
	EventOrderDisputed     Event = "order_disputed"
	EventDisputeResolved   Event = "dispute_resolved"
	EventProposalCreated   Event = "proposal_created"
	EventProposalAccepted  Event = "proposal_accepted"
	EventProposalRejected  Event = "proposal_rejected"
)

// NotificationState tracks outbox delivery.
type NotificationState string

const (
	NotificationPending   NotificationState = "pending"
	NotificationDelivered NotificationState = "delivered"
	NotificationFailed    NotificationState = "failed"
)

// Notification is an outbox record written in the same transaction as the
// change it describes. It carries a snapshot so delivery never re-reads state.
type Notification struct {
	ID            string
	Event         Event
	OrderID       string
	ProposalID    string
	ActorID       int64
	ClientID      int64
	ProviderID    int64
	Price         int64
	Status        OrderStatus
	State         NotificationState
	Attempts      int
	PushSent      bool
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
	DeliveredAt   *time.Time
}

// MessageType is read by the chat UI to render contextual buttons.
// Values must stay verbatim.
type MessageType string

const (
	MessageSystem              MessageType = "system"
	MessageSystemAction        MessageType = "system_action"
	MessageSystemActionClient  MessageType = "system_action_client"
	MessageSystemActionAccept  MessageType = "system_action_accept"
	MessageSystemActionDecline MessageType = "system_action_decline"
)

// MessageMeta is the machine readable part of a system message.
type MessageMeta struct {
	Type       MessageType `json:"type"`
	OrderID    string      `json:"orderId,omitempty"`
	ProposalID string      `json:"proposalId,omitempty"`
	Role       Role        `json:"role,omitempty"`
	Status     OrderStatus `json:"status,omitempty"`
	Price      int64       `json:"price,omitempty"`
	Event      Event       `json:"event,omitempty"`
}

// ChatMessage is a message in the chat between two users.
type ChatMessage struct {
	ID             string
	ChatID         string
	SenderID       int64
	Text           string
	Meta           MessageMeta
	NotificationID string
	CreatedAt      time.Time
}

// PushNotice is an out-of-band notice delivered through the bot.
type PushNotice struct {
	UserID int64
	Text   string
}
