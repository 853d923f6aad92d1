package router

import (
	"testing"

	"skara-bot/internal/chat"
)

func text(body string) chat.InboundMessage {
	return chat.InboundMessage{Modality: chat.ModalityText, Text: body}
}

func media(mime, caption string) chat.InboundMessage {
	return chat.InboundMessage{
		Modality: chat.ModalityMedia,
		Text:     caption,
		Media:    &chat.Media{MIMEType: mime, Caption: caption},
	}
}

func TestClassify_Table(t *testing.T) {
	c := New(Options{})

	tests := []struct {
		name string
		msg  chat.InboundMessage
		want Intent
	}{
		{"greeting", text("halo"), Greeting},
		{"greeting case and spaces", text("  Selamat Pagi "), Greeting},
		{"greeting needs exact match", text("halo apa kabar"), AskQuestion},
		{"list command", text("#tps"), ListFacilities},
		{"list command upper", text("#TPS"), ListFacilities},
		{"question", text("botol plastik termasuk apa?"), AskQuestion},
		{"empty text", text(""), Unhandled},
		{"blank text", text("   \n"), Unhandled},
		{"image", media("image/jpeg", ""), ClassifyImage},
		{"image without mime", media("", ""), ClassifyImage},
		{"pdf", media("application/pdf", ""), RejectMedia},
		{"audio", media("audio/ogg; codecs=opus", ""), RejectMedia},
		{"caption is not a command", media("image/png", "#tps"), ClassifyImage},
		{"caption greeting on pdf", media("application/pdf", "halo"), RejectMedia},
		{"media without payload", chat.InboundMessage{Modality: chat.ModalityMedia}, Unhandled},
		{"location without coordinates", chat.InboundMessage{Modality: chat.ModalityLocation}, Unhandled},
		{"unknown modality", chat.InboundMessage{Modality: "sticker", Text: "halo"}, Unhandled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.msg)
			if got.Intent != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got.Intent)
			}
		})
	}
}

func TestClassify_LocationAlwaysNearest(t *testing.T) {
	c := New(Options{TopicFilter: true})
	for _, body := range []string{"", "halo", "#tps", "apa itu kompos?", "random"} {
		msg := chat.InboundMessage{
			Modality: chat.ModalityLocation,
			Text:     body,
			Location: &chat.Location{Lat: -1.246358, Lon: 116.838075},
		}
		got := c.Classify(msg)
		if got.Intent != NearestFacility {
			t.Fatalf("body %q: expected nearest_facility, got %s", body, got.Intent)
		}
		if got.Lat != -1.246358 || got.Lon != 116.838075 {
			t.Fatalf("coordinates not carried: %+v", got)
		}
	}
}

func TestClassify_QuestionKeepsRawText(t *testing.T) {
	c := New(Options{})
	got := c.Classify(text("  Minyak Jelantah dibuang ke mana?  "))
	if got.Question != "  Minyak Jelantah dibuang ke mana?  " {
		t.Fatalf("expected raw text, got %q", got.Question)
	}
}

func TestClassify_RejectCarriesMIME(t *testing.T) {
	got := New(Options{}).Classify(media("application/pdf", ""))
	if got.MIMEType != "application/pdf" {
		t.Fatalf("expected mime type, got %q", got.MIMEType)
	}
}

func TestClassify_TopicFilter(t *testing.T) {
	filtered := New(Options{TopicFilter: true})
	open := New(Options{})

	if got := filtered.Classify(text("siapa presiden pertama?")); got.Intent != OffTopic {
		t.Fatalf("expected off_topic, got %s", got.Intent)
	}
	if got := filtered.Classify(text("Bagaimana cara membuat KOMPOS?")); got.Intent != AskQuestion {
		t.Fatalf("expected ask_question, got %s", got.Intent)
	}
	if got := open.Classify(text("siapa presiden pertama?")); got.Intent != AskQuestion {
		t.Fatalf("filter disabled: expected ask_question, got %s", got.Intent)
	}
	if got := filtered.Classify(text("cek https://example.com/berita")); got.Intent != OffTopic {
		t.Fatalf("a link is not a waste topic, got %s", got.Intent)
	}
	if got := filtered.Classify(text("dimana TPS terdekat?")); got.Intent != AskQuestion {
		t.Fatalf("expected ask_question for tps, got %s", got.Intent)
	}
	if got := filtered.Classify(text("sampahnya dibuang kemana?")); got.Intent != AskQuestion {
		t.Fatalf("expected suffixed keyword to match, got %s", got.Intent)
	}
	// Commands still win over the filter.
	if got := filtered.Classify(text("halo")); got.Intent != Greeting {
		t.Fatalf("expected greeting, got %s", got.Intent)
	}
}

func TestNew_CustomOptions(t *testing.T) {
	c := New(Options{
		Greetings:     []string{"Hello"},
		ListCommand:   " #Lokasi ",
		TopicFilter:   true,
		TopicKeywords: []string{"Waste"},
	})
	if got := c.Classify(text("hello")); got.Intent != Greeting {
		t.Fatalf("expected greeting, got %s", got.Intent)
	}
	if got := c.Classify(text("halo")); got.Intent != OffTopic {
		t.Fatalf("default greeting should be replaced, got %s", got.Intent)
	}
	if got := c.Classify(text("#lokasi")); got.Intent != ListFacilities {
		t.Fatalf("expected list_facilities, got %s", got.Intent)
	}
	if got := c.Classify(text("where does waste go")); got.Intent != AskQuestion {
		t.Fatalf("expected ask_question, got %s", got.Intent)
	}
}
