// Package domain contains core concepts of the chat relay.
// This file defines ChatEvent envelopes and their validation rules.
// Events are transient and never stored.
package domain

import (
	"github.com/go-playground/validator/v10"
)

// EventType is the closed set of inbound/outbound event kinds.
type EventType string

const (
	EventJoin      EventType = "JOIN"
	EventBroadcast EventType = "BROADCAST"
	EventPrivate   EventType = "PRIVATE"
	EventLeave     EventType = "LEAVE"
)

// ChatEvent is the message envelope exchanged with clients.
// Timestamp is caller-supplied and opaque: the relay neither generates
// nor interprets it. Gender and PublicKey are only meaningful on JOIN,
// where they seed the new UserProfile.
type ChatEvent struct {
	Content   string    `json:"content,omitempty"`
	Sender    string    `json:"sender" validate:"required_if=Type JOIN"`
	Recipient string    `json:"recipient,omitempty" validate:"required_if=Type PRIVATE"`
	Gender    string    `json:"gender,omitempty"`
	PublicKey string    `json:"publicKey,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
	Type      EventType `json:"type" validate:"required,oneof=JOIN BROADCAST PRIVATE LEAVE"`
}

var validate = validator.New()

// Validate checks the fields required for the event's type.
// A BROADCAST with an unknown or empty sender is deliberately valid:
// the relay forwards it rather than gate delivery on presence.
func (e ChatEvent) Validate() error {
	return validate.Struct(e)
}

// Profile builds the UserProfile announced by a JOIN event.
func (e ChatEvent) Profile() UserProfile {
	return UserProfile{
		Username:  e.Sender,
		Gender:    e.Gender,
		PublicKey: e.PublicKey,
	}
}

// NewLeaveEvent synthesizes the departure notice published when a
// connection closes. It carries no content.
func NewLeaveEvent(username string) ChatEvent {
	return ChatEvent{
		Sender: username,
		Type:   EventLeave,
	}
}
