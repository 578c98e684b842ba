package email

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// ConsoleMailer writes messages to the log and records them. Used in
// development and as the test double.
type ConsoleMailer struct {
	SubjectPrefix string
	From          string
	DisableOutput bool

	mu   sync.Mutex
	sent []Message
}

var _ Mailer = (*ConsoleMailer)(nil)

func NewConsoleMailer(appName, from string) *ConsoleMailer {
	return &ConsoleMailer{SubjectPrefix: "[" + appName + "] ", From: from}
}

func (m *ConsoleMailer) Send(messages ...*Message) {
	for _, msg := range messages {
		m.deliver(msg)
	}
}

func (m *ConsoleMailer) deliver(msg *Message) {
	body := new(strings.Builder)
	fmt.Fprintf(body, "From: %s\r\n", m.From)
	fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(body, "To: %s\r\n", msg.To.String())
	fmt.Fprintf(body, "Subject: %s\r\n\r\n", m.SubjectPrefix+msg.Subject)
	fmt.Fprintf(body, "%s\r\n", msg.Text)
	if !m.DisableOutput {
		log.Println(body.String())
	}
	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()
}

// Sent returns a copy of everything delivered so far.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
