// Package domain contains core concepts of the chat relay.
// This file defines UserProfile values and their lifecycle rules.
// No runtime, network, or UI logic should be added here.
package domain

// UserProfile is the identity card of a connected user, immutable after
// creation. Gender and PublicKey are opaque display attributes supplied
// by the client at join time; they are never parsed or validated here.
type UserProfile struct {
	Username  string `json:"username"`
	Gender    string `json:"gender,omitempty"`
	PublicKey string `json:"publicKey,omitempty"`
}
