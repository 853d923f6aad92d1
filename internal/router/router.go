// Package router decides which handler answers an inbound chat message.
package router

import (
	"regexp"
	"strings"

	"skara-bot/internal/chat"
)

// Intent is the resolved purpose of a message.
type Intent string

const (
	Greeting        Intent = "greeting"
	ListFacilities  Intent = "list_facilities"
	NearestFacility Intent = "nearest_facility"
	ClassifyImage   Intent = "classify_image"
	AskQuestion     Intent = "ask_question"
	Unhandled       Intent = "unhandled"

	// RejectMedia is returned for attachments that are not images.
	RejectMedia Intent = "reject_media"
	// OffTopic is returned by the topic filter for non-waste questions.
	OffTopic Intent = "off_topic"
)

// Decision is the routing outcome for one message.
type Decision struct {
	Intent   Intent
	Lat      float64
	Lon      float64
	Question string
	MIMEType string
}

// DefaultGreetings are the exact phrases answered with the introduction.
var DefaultGreetings = []string{
	"halo",
	"hai",
	"assalamualaikum",
	"selamat pagi",
	"selamat siang",
	"selamat sore",
	"selamat malam",
}

// DefaultListCommand lists every registered facility.
const DefaultListCommand = "#tps"

// DefaultTopicKeywords is the local waste-topic vocabulary used when the
// topic filter is enabled.
var DefaultTopicKeywords = []string{
	"sampah", "limbah", "buang", "daur ulang", "recycle", "kompos",
	"organik", "anorganik", "residu", "b3", "plastik", "kertas", "kardus",
	"botol", "kaleng", "logam", "kaca", "baterai", "elektronik", "e-waste",
	"jelantah", "minyak", "tps", "bank sampah", "pilah", "popok", "styrofoam",
}

// Options tune the rule chain.
type Options struct {
	Greetings   []string
	ListCommand string

	// TopicFilter routes questions that mention none of TopicKeywords to
	// OffTopic instead of the generative service.
	TopicFilter   bool
	TopicKeywords []string
}

// Classifier maps inbound messages to decisions. It is safe for concurrent use.
type Classifier struct {
	greetings     map[string]bool
	listCommand   string
	topicFilter   bool
	topicKeywords []*regexp.Regexp
}

// New builds a Classifier. Zero-valued options fall back to the defaults.
func New(opts Options) *Classifier {
	greetings := opts.Greetings
	if len(greetings) == 0 {
		greetings = DefaultGreetings
	}
	keywords := opts.TopicKeywords
	if len(keywords) == 0 {
		keywords = DefaultTopicKeywords
	}
	listCommand := normalize(opts.ListCommand)
	if listCommand == "" {
		listCommand = DefaultListCommand
	}

	c := &Classifier{
		greetings:   make(map[string]bool, len(greetings)),
		listCommand: listCommand,
		topicFilter: opts.TopicFilter,
	}
	for _, g := range greetings {
		c.greetings[normalize(g)] = true
	}
	for _, k := range keywords {
		if k = normalize(k); k != "" {
			c.topicKeywords = append(c.topicKeywords, keywordPattern(k))
		}
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Classify applies the rules in priority order; the first match wins.
func (c *Classifier) Classify(msg chat.InboundMessage) Decision {
	switch msg.Modality {
	case chat.ModalityLocation:
		if msg.Location == nil {
			return Decision{Intent: Unhandled}
		}
		return Decision{Intent: NearestFacility, Lat: msg.Location.Lat, Lon: msg.Location.Lon}

	case chat.ModalityMedia:
		if msg.Media == nil {
			return Decision{Intent: Unhandled}
		}
		mime := strings.ToLower(strings.TrimSpace(msg.Media.MIMEType))
		if mime != "" && !strings.HasPrefix(mime, "image/") {
			return Decision{Intent: RejectMedia, MIMEType: msg.Media.MIMEType}
		}
		return Decision{Intent: ClassifyImage, MIMEType: msg.Media.MIMEType}

	case chat.ModalityText:
		text := normalize(msg.Text)
		switch {
		case text == "":
			return Decision{Intent: Unhandled}
		case c.greetings[text]:
			return Decision{Intent: Greeting}
		case text == c.listCommand:
			return Decision{Intent: ListFacilities}
		case c.topicFilter && !c.onTopic(text):
			return Decision{Intent: OffTopic, Question: msg.Text}
		}
		return Decision{Intent: AskQuestion, Question: msg.Text}
	}

	return Decision{Intent: Unhandled}
}

// keywordPattern matches k at the start of a word, so suffixed forms such as
// "sampahnya" count while "https" does not match "tps".
func keywordPattern(k string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^\p{L}\p{N}])` + regexp.QuoteMeta(k))
}

func (c *Classifier) onTopic(text string) bool {
	for _, k := range c.topicKeywords {
		if k.MatchString(text) {
			return true
		}
	}
	return false
}
