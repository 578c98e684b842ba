// Package email sends transactional mail. Sending is always best-effort
// and asynchronous: a failed send is logged, never surfaced to the flow
// that triggered it.
package email

import "net/mail"

type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer is any service that can send messages.
type Mailer interface {
	// Send dispatches messages without blocking the caller.
	Send(messages ...*Message)
}

// WaitlistWelcome builds the confirmation sent after a waitlist signup.
func WaitlistWelcome(name, address string) *Message {
	return &Message{
		To:      mail.Address{Name: name, Address: address},
		Subject: "You're on the MacTrack waitlist",
		Text: "Hi " + displayName(name) + ",\n\n" +
			"Thanks for joining the MacTrack waitlist. We'll be in touch soon " +
			"with your early access invite.\n\n— The MacTrack team",
	}
}

func displayName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
