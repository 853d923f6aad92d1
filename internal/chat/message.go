// Package chat holds the transport-neutral shape of one inbound chat event.
package chat

import (
	"context"
	"errors"
)

// Modality is the kind of content an inbound message carries.
type Modality string

const (
	ModalityText     Modality = "text"
	ModalityLocation Modality = "location"
	ModalityMedia    Modality = "media"
)

// ErrNoMediaLoader is returned by Media.Bytes when the transport attached no loader.
var ErrNoMediaLoader = errors.New("media has no loader")

// Location is a shared coordinate pair in degrees.
type Location struct {
	Lat float64
	Lon float64
}

// Media describes an attachment. Content is fetched lazily through Load so
// that messages rejected by MIME type are never downloaded.
type Media struct {
	MIMEType string
	Caption  string
	Load     func(ctx context.Context) ([]byte, error)
}

// Bytes downloads the attachment content.
func (m *Media) Bytes(ctx context.Context) ([]byte, error) {
	if m == nil || m.Load == nil {
		return nil, ErrNoMediaLoader
	}
	return m.Load(ctx)
}

// InboundMessage is one event received from the chat transport.
type InboundMessage struct {
	ID       string
	Chat     string
	Sender   string
	Modality Modality
	Text     string
	Location *Location
	Media    *Media

	// Origin is the transport's own event, used to quote the message in replies.
	Origin any
}
