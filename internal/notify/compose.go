// Package notify turns outbox records into chat system messages and push
// notices.
package notify

import (
	"fmt"
	"strconv"

	"github.com/polkiloo/tgmarket/internal/domain/model"
)

// Message is a composed notification ready for delivery.
type Message struct {
	Text string
	Meta model.MessageMeta
	// Push lists users who should get an out-of-band notice.
	Push []model.PushNotice
}

type template struct {
	kind model.MessageType
	// role is the participant expected to act on the message. RoleNone means
	// whoever did not trigger the event.
	role model.Role
	text string
}

var templates = map[model.Event]template{
	model.EventOrderCreated:      {model.MessageSystemAction, model.RoleProvider, "New order for %s credits. Accept or decline it."},
	model.EventOrderAccepted:     {model.MessageSystemActionAccept, model.RoleClient, "The provider accepted the order for %s credits."},
	model.EventOrderDeclined:     {model.MessageSystemActionDecline, model.RoleClient, "The provider declined the order. %s credits returned to your balance."},
	model.EventWorkStarted:       {model.MessageSystem, model.RoleClient, "Work on the order for %s credits has started."},
	model.EventProviderCompleted: {model.MessageSystemActionClient, model.RoleClient, "The provider marked the order for %s credits as done. Confirm it or open a dispute."},
	model.EventOrderCompleted:    {model.MessageSystem, model.RoleProvider, "The client confirmed the order. %s credits were paid out."},
	model.EventOrderCancelled:    {model.MessageSystem, model.RoleProvider, "The client cancelled the order for %s credits."},
	model.EventOrderDisputed:     {model.MessageSystem, model.RoleAdmin, "The order for %s credits is disputed and waits for an administrator."},
	model.EventDisputeResolved:   {model.MessageSystem, model.RoleNone, "The dispute over %s credits was resolved."},
	model.EventProposalCreated:   {model.MessageSystemAction, model.RoleNone, "New price proposal: %s credits. Accept or reject it."},
	model.EventProposalAccepted:  {model.MessageSystemActionAccept, model.RoleNone, "Price proposal of %s credits accepted."},
	model.EventProposalRejected:  {model.MessageSystemActionDecline, model.RoleNone, "Price proposal of %s credits rejected."},
}

// Compose renders n. Unknown events fall back to a plain system message.
func Compose(n model.Notification) Message {
	tpl, ok := templates[n.Event]
	if !ok {
		tpl = template{kind: model.MessageSystem, text: "Order update: %s credits."}
	}

	text := fmt.Sprintf(tpl.text, formatCredits(n.Price))
	if n.Event == model.EventDisputeResolved {
		text = resolvedText(n)
	}

	role := tpl.role
	if role == model.RoleNone {
		role = counterRole(n)
	}

	msg := Message{
		Text: text,
		Meta: model.MessageMeta{
			Type:       tpl.kind,
			OrderID:    n.OrderID,
			ProposalID: n.ProposalID,
			Role:       role,
			Status:     n.Status,
			Price:      n.Price,
			Event:      n.Event,
		},
	}
	for _, userID := range recipients(n) {
		msg.Push = append(msg.Push, model.PushNotice{UserID: userID, Text: text})
	}
	return msg
}

func resolvedText(n model.Notification) string {
	if n.Status == model.OrderStatusRefunded {
		return fmt.Sprintf("The dispute was resolved in favour of the client. %s credits refunded.", formatCredits(n.Price))
	}
	return fmt.Sprintf("The dispute was resolved in favour of the provider. %s credits paid out.", formatCredits(n.Price))
}

// recipients are the participants other than the actor.
func recipients(n model.Notification) []int64 {
	var out []int64
	for _, id := range []int64{n.ClientID, n.ProviderID} {
		if id != 0 && id != n.ActorID {
			out = append(out, id)
		}
	}
	return out
}

func formatCredits(v int64) string {
	return strconv.FormatInt(v, 10)
}

// counterRole is the role of the participant who did not act.
func counterRole(n model.Notification) model.Role {
	switch n.ActorID {
	case n.ClientID:
		return model.RoleProvider
	case n.ProviderID:
		return model.RoleClient
	}
	return model.RoleNone
}
