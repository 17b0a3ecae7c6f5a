package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"context"
	"fmt"
	"log/slog"
)

// Router classifies one decoded inbound event, applies the matching
// presence mutation, and delegates zero or more addressed deliveries to
// the Dispatcher. It is stateless apart from the registry it guards, so
// any number of connection workers may call it concurrently.
//
// The router is forgiving by design: it validates the fields an event
// type requires and otherwise forwards traffic as-is. Authentication
// and protocol correctness belong to collaborators.
type Router struct {
	log        *slog.Logger
	presence   contract.Presence
	dispatcher contract.Dispatcher
}

func NewRouter(log *slog.Logger, presence contract.Presence, dispatcher contract.Dispatcher) *Router {
	return &Router{
		log:        log,
		presence:   presence,
		dispatcher: dispatcher,
	}
}

// OnClientEvent processes one event delivered by the transport layer.
// Malformed events (missing a field their type requires) are dropped
// without any delivery; no error ever reaches the sender.
func (r *Router) OnClientEvent(ctx context.Context, evt domain.ChatEvent, session contract.Session) {
	if err := evt.Validate(); err != nil {
		r.log.Debug("Dropping malformed event", "type", evt.Type, "error", err)
		return
	}

	switch evt.Type {
	case domain.EventJoin:
		r.join(ctx, evt, session)
	case domain.EventBroadcast:
		// Sender presence is deliberately not enforced; the event is
		// echoed unchanged to everyone on the public topic.
		r.dispatcher.Publish(ctx, contract.TopicPublic, evt)
	case domain.EventPrivate:
		// Recipient identity alone decides the route. Delivery to an
		// absent recipient is a no-op at the dispatcher boundary.
		r.dispatcher.Publish(ctx, contract.PrivateTopic(evt.Recipient), evt)
	case domain.EventLeave:
		// Departures are synthesized from disconnect notifications,
		// never accepted from clients.
		r.log.Debug("Ignoring client-sent LEAVE", "sender", evt.Sender)
	}
}

// join binds the username to the connection's session, registers the
// announced profile, and pairs the public echo with a full roster push
// so every listener can rebuild its view without delta reconciliation.
func (r *Router) join(ctx context.Context, evt domain.ChatEvent, session contract.Session) {
	session.Bind(evt.Sender)
	r.presence.Add(evt.Profile())

	r.log.Info(fmt.Sprintf("User joined: %s", evt.Sender))
	r.dispatcher.Publish(ctx, contract.TopicPublic, evt)
	r.dispatcher.Publish(ctx, contract.TopicUsers, r.presence.Snapshot())
}

// OnDisconnect runs the departure path for a closed connection.
// A connection that never joined resolves to nothing and produces no
// deliveries; a username already removed (its entry was overwritten or
// taken down by an earlier close) suppresses them too.
func (r *Router) OnDisconnect(ctx context.Context, session contract.Session) {
	username, ok := session.Resolve()
	if !ok {
		return
	}
	if !r.presence.Remove(username) {
		return
	}

	r.log.Info(fmt.Sprintf("User disconnected: %s", username))
	r.dispatcher.Publish(ctx, contract.TopicPublic, domain.NewLeaveEvent(username))
	r.dispatcher.Publish(ctx, contract.TopicUsers, r.presence.Snapshot())
}
