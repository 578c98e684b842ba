package email

import (
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridMailer delivers via the SendGrid v3 API.
type SendgridMailer struct {
	Key           string
	From          *sgmail.Email
	SubjectPrefix string
}

var _ Mailer = (*SendgridMailer)(nil)

func NewSendgridMailer(key, appName, fromName, fromAddress string) *SendgridMailer {
	return &SendgridMailer{
		Key:           key,
		From:          sgmail.NewEmail(fromName, fromAddress),
		SubjectPrefix: "[" + appName + "] ",
	}
}

func (m *SendgridMailer) Send(messages ...*Message) {
	for _, msg := range messages {
		msg := msg
		go m.deliver(msg)
	}
}

func (m *SendgridMailer) deliver(msg *Message) {
	p := sgmail.NewPersonalization()
	p.Subject = m.SubjectPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.From)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}

	req := sendgrid.GetRequest(m.Key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(v3)

	res, err := sendgrid.API(req)
	if err != nil {
		log.Printf("email: sending via sendgrid: %v", err)
	} else if res.StatusCode >= http.StatusBadRequest {
		log.Printf("email: sendgrid status %d: %s", res.StatusCode, res.Body)
	}
}
