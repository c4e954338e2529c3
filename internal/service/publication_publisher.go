package service

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/campushub/examcore-api/internal/models"
)

// PublicationEvent is emitted when a committee's published flag flips for a
// mark type, i.e. when the last pending semester became approved.
type PublicationEvent struct {
	CommitteeID uint            `json:"committee_id"`
	SemesterID  uint            `json:"semester_id"`
	MarkType    models.MarkType `json:"mark_type"`
	PublishedAt time.Time       `json:"published_at"`
}

// PublicationPublisher broadcasts publication events to interested systems
// (transcript printing, student notification).
type PublicationPublisher interface {
	PublishMarksPublished(event PublicationEvent)
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewPublicationPublisher wraps a NATS connection. A nil connection is
// allowed and turns publishing into a no-op.
func NewPublicationPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) PublicationPublisher {
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "publication_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishMarksPublished(event PublicationEvent) {
	if p.conn == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		// Publication events are advisory; the approval itself is already
		// committed, so a broker outage must not fail the request.
		p.logger.Error().Err(err).
			Uint("committee_id", event.CommitteeID).
			Str("mark_type", string(event.MarkType)).
			Msg("failed to publish marks-published event")
		return
	}

	p.logger.Info().
		Uint("committee_id", event.CommitteeID).
		Str("mark_type", string(event.MarkType)).
		Msg("marks-published event emitted")
}
