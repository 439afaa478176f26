package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/codecraftkids/codecraft-api/pkg/mailer/templates"
)

// Sender delivers one rendered email; satisfied by *Mailgun.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Outcome tells the consumer what to do with a delivery.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

var errInvalidJob = errors.New("invalid email job")

// Process renders and sends one queued job. Malformed jobs are dropped; a
// failed send is requeued once and dropped on redelivery.
func Process(ctx context.Context, s Sender, body []byte, redelivered bool) (Outcome, error) {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		return Drop, fmt.Errorf("%w: %v", errInvalidJob, err)
	}
	job.To = strings.TrimSpace(job.To)
	if job.To == "" {
		return Drop, fmt.Errorf("%w: missing recipient", errInvalidJob)
	}

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !templates.Known(job.Template) {
			return Drop, fmt.Errorf("%w: unknown template %q", errInvalidJob, job.Template)
		}
		data := templates.EnsureRecipient(job.To, job.Data)
		var err error
		subject, text, html, err = templates.Render(strings.ToLower(job.Template), data)
		if err != nil {
			return Drop, fmt.Errorf("render %s: %w", job.Template, err)
		}
	}
	if subject == "" || (text == "" && html == "") {
		return Drop, fmt.Errorf("%w: empty message", errInvalidJob)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := s.Send(c, job.To, subject, text, html); err != nil {
		if redelivered {
			return Drop, err
		}
		return Requeue, err
	}
	return Ack, nil
}
