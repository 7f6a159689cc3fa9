// Package notify publishes build-completion events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "pagesmith.builds"

// Event is the JSON payload published after each build.
type Event struct {
	BuildID    string    `json:"build_id"`
	Kind       string    `json:"kind"`
	Env        string    `json:"env,omitempty"`
	Revision   string    `json:"revision,omitempty"`
	Outcome    string    `json:"outcome"`
	Pages      int       `json:"pages"`
	Assets     int       `json:"assets"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// EventFromReport builds the event for a finished report.
func EventFromReport(r *build.Report) Event {
	e := Event{
		BuildID:    r.ID,
		Kind:       string(r.Kind),
		Env:        r.Env,
		Revision:   r.Revision,
		Outcome:    string(r.Outcome),
		Pages:      r.Pages,
		Assets:     r.Assets,
		DurationMS: r.Duration().Milliseconds(),
		Timestamp:  r.End,
	}
	if err := r.Err(); err != nil {
		e.Error = err.Error()
	}
	return e
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// Publisher sends build events on a subject.
type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

var _ build.Observer = (*Publisher)(nil)

// Connect dials the NATS server at url.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("pagesmith"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	p := NewPublisher(conn, subject, logger)
	p.logger.Info("NATS build notifications enabled", logfields.URL(url), slog.String("subject", p.subject))
	return p, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Publish sends e and waits for the server to acknowledge the flush.
func (p *Publisher) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	p.logger.Debug("Published build event", logfields.BuildID(e.BuildID), slog.String("outcome", e.Outcome))
	return nil
}

// OnBuildComplete publishes the finished build.
func (p *Publisher) OnBuildComplete(ctx context.Context, r *build.Report) error {
	return p.Publish(ctx, EventFromReport(r))
}

// Close closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
