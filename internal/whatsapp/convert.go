package whatsapp

import (
	"context"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"skara-bot/internal/chat"
)

// Downloader fetches and decrypts media attachments. *whatsmeow.Client
// satisfies it.
type Downloader interface {
	Download(ctx context.Context, msg whatsmeow.DownloadableMessage) ([]byte, error)
}

// Convert maps a whatsmeow message event onto the transport-neutral shape.
// It reports false for events that carry nothing the bot answers to
// (reactions, protocol messages, polls, ...).
func Convert(evt *events.Message, dl Downloader) (chat.InboundMessage, bool) {
	if evt == nil || evt.Message == nil {
		return chat.InboundMessage{}, false
	}

	msg := chat.InboundMessage{
		ID:     evt.Info.ID,
		Chat:   evt.Info.Chat.String(),
		Sender: evt.Info.Sender.String(),
		Origin: evt,
	}
	m := evt.Message

	switch {
	case m.GetLocationMessage() != nil:
		loc := m.GetLocationMessage()
		msg.Modality = chat.ModalityLocation
		msg.Location = coordinates(loc.DegreesLatitude, loc.DegreesLongitude)
	case m.GetLiveLocationMessage() != nil:
		loc := m.GetLiveLocationMessage()
		msg.Modality = chat.ModalityLocation
		msg.Location = coordinates(loc.DegreesLatitude, loc.DegreesLongitude)

	case m.Conversation != nil:
		msg.Modality = chat.ModalityText
		msg.Text = m.GetConversation()
	case m.GetExtendedTextMessage() != nil:
		msg.Modality = chat.ModalityText
		msg.Text = m.GetExtendedTextMessage().GetText()

	case m.GetImageMessage() != nil:
		img := m.GetImageMessage()
		setMedia(&msg, img, img.GetMimetype(), img.GetCaption(), dl)
	case m.GetStickerMessage() != nil:
		st := m.GetStickerMessage()
		setMedia(&msg, st, st.GetMimetype(), "", dl)
	case m.GetDocumentMessage() != nil:
		doc := m.GetDocumentMessage()
		setMedia(&msg, doc, doc.GetMimetype(), doc.GetCaption(), dl)
	case m.GetVideoMessage() != nil:
		vid := m.GetVideoMessage()
		setMedia(&msg, vid, vid.GetMimetype(), vid.GetCaption(), dl)
	case m.GetAudioMessage() != nil:
		aud := m.GetAudioMessage()
		setMedia(&msg, aud, aud.GetMimetype(), "", dl)

	default:
		return chat.InboundMessage{}, false
	}
	return msg, true
}

func coordinates(lat, lon *float64) *chat.Location {
	if lat == nil || lon == nil {
		return nil
	}
	return &chat.Location{Lat: *lat, Lon: *lon}
}

// setMedia attaches a lazy loader so rejected attachments are never downloaded.
func setMedia(msg *chat.InboundMessage, att whatsmeow.DownloadableMessage, mime, caption string, dl Downloader) {
	msg.Modality = chat.ModalityMedia
	msg.Text = caption
	msg.Media = &chat.Media{MIMEType: mime, Caption: caption}
	if dl != nil {
		msg.Media.Load = func(ctx context.Context) ([]byte, error) {
			return dl.Download(ctx, att)
		}
	}
}

// quoteContext builds the reply context that quotes the original event.
func quoteContext(evt *events.Message) *waE2E.ContextInfo {
	if evt == nil || evt.Info.ID == "" {
		return nil
	}
	return &waE2E.ContextInfo{
		StanzaID:      proto.String(evt.Info.ID),
		Participant:   proto.String(evt.Info.Sender.ToNonAD().String()),
		QuotedMessage: evt.Message,
	}
}
