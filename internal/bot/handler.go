// Package bot handles one inbound chat message end to end: route, call out to
// the geo resolver or external services, format and reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skara-bot/internal/chat"
	"skara-bot/internal/classifier"
	"skara-bot/internal/dedup"
	"skara-bot/internal/format"
	"skara-bot/internal/genai"
	"skara-bot/internal/geo"
	"skara-bot/internal/router"
)

// Replier sends responses back through the chat transport.
type Replier interface {
	Reply(ctx context.Context, msg chat.InboundMessage, text string) error
	React(ctx context.Context, msg chat.InboundMessage, emoji string) error
	SetTyping(ctx context.Context, msg chat.InboundMessage, typing bool) error
}

// ImageClassifier classifies the image stored at path.
type ImageClassifier interface {
	Classify(ctx context.Context, path string) (*classifier.Result, error)
}

// Advisor produces generated text for recommendations and questions.
type Advisor interface {
	Recommend(ctx context.Context, wasteType string) (string, error)
	Answer(ctx context.Context, question string) (string, error)
}

// Deps are the collaborators of a Handler. Advisor and Dedup may be nil.
type Deps struct {
	Registry   *geo.Registry
	Router     *router.Classifier
	Classifier ImageClassifier
	Advisor    Advisor
	Dedup      dedup.Store
	TempDir    string
	Logger     zerolog.Logger
}

// Handler is safe for concurrent use; it holds no per-message state.
type Handler struct {
	deps  Deps
	reply Replier
	log   zerolog.Logger

	writeImage func(io.Writer, []byte) error
}

// New returns a Handler replying through r.
func New(deps Deps, r Replier) (*Handler, error) {
	if deps.Registry == nil {
		return nil, errors.New("facility registry is required")
	}
	if deps.Router == nil {
		return nil, errors.New("router is required")
	}
	if deps.Classifier == nil {
		return nil, errors.New("image classifier is required")
	}
	if r == nil {
		return nil, errors.New("replier is required")
	}
	if deps.TempDir == "" {
		deps.TempDir = os.TempDir()
	}
	if err := os.MkdirAll(deps.TempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Handler{
		deps:       deps,
		reply:      r,
		log:        deps.Logger.With().Str("component", "handler").Logger(),
		writeImage: writeAll,
	}, nil
}

func writeAll(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return err
}

// Handle processes msg. It never panics and never returns an error: every
// failure ends as a log line and, where possible, a reply.
func (h *Handler) Handle(ctx context.Context, msg chat.InboundMessage) {
	log := h.log.With().
		Str("req", uuid.NewString()).
		Str("msg_id", msg.ID).
		Str("chat", msg.Chat).
		Str("modality", string(msg.Modality)).
		Logger()
	ctx = log.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("❌ handler panic")
			h.send(ctx, msg, ReplyUnexpected)
		}
	}()

	if h.deps.Dedup != nil && msg.ID != "" {
		seen, err := h.deps.Dedup.Seen(ctx, msg.ID)
		if err != nil {
			log.Warn().Err(err).Msg("dedup check failed, handling anyway")
		} else if seen {
			log.Debug().Msg("duplicate delivery dropped")
			return
		}
	}

	decision := h.deps.Router.Classify(msg)
	log.Info().Str("intent", string(decision.Intent)).Msg("📩 message routed")

	if err := h.dispatch(ctx, msg, decision); err != nil {
		log.Error().Err(err).Msg("❌ uncaught handler error")
		h.send(ctx, msg, ReplyUnexpected)
	}
}

func (h *Handler) dispatch(ctx context.Context, msg chat.InboundMessage, d router.Decision) error {
	switch d.Intent {
	case router.NearestFacility:
		m, ok := h.deps.Registry.Nearest(d.Lat, d.Lon)
		h.send(ctx, msg, format.Nearest(m, ok))
	case router.Greeting:
		h.send(ctx, msg, format.Greeting())
	case router.ListFacilities:
		h.send(ctx, msg, format.FacilityList(h.deps.Registry.All()))
	case router.RejectMedia:
		zerolog.Ctx(ctx).Info().Str("mime", d.MIMEType).Msg("non-image media rejected")
		h.send(ctx, msg, ReplyRejectMedia)
	case router.ClassifyImage:
		return h.classifyImage(ctx, msg)
	case router.AskQuestion:
		h.answer(ctx, msg, d.Question)
	case router.OffTopic:
		h.send(ctx, msg, genai.OffTopicAnswer)
	case router.Unhandled:
		h.send(ctx, msg, format.Guidance())
	default:
		return fmt.Errorf("unknown intent %q", d.Intent)
	}
	return nil
}

func (h *Handler) classifyImage(ctx context.Context, msg chat.InboundMessage) error {
	log := zerolog.Ctx(ctx)
	h.react(ctx, msg, ReactImage)

	data, err := msg.Media.Bytes(ctx)
	if err != nil {
		log.Error().Err(err).Msg("❌ media download failed")
		h.send(ctx, msg, ReplyDownloadFailed)
		return nil
	}
	if len(data) == 0 {
		h.send(ctx, msg, ReplyNoImage)
		return nil
	}

	path := filepath.Join(h.deps.TempDir, fmt.Sprintf("sampah_%s.jpg", uuid.NewString()))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	// Removal is registered before the first byte is written.
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("temp image not removed")
		}
	}()
	err = h.writeImage(f, data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write temp image: %w", err)
	}

	res, err := h.deps.Classifier.Classify(ctx, path)
	if err != nil {
		log.Error().Err(err).Msg("❌ classification failed")
		h.send(ctx, msg, ReplyClassifyFailed)
		return nil
	}
	log.Info().
		Str("parent", format.Label(parentLabel(res))).
		Str("sub", format.Label(subLabel(res))).
		Msg("♻️ image classified")

	recommendation := h.recommend(ctx, format.Label(subLabel(res)))
	h.send(ctx, msg, format.Classification(res, recommendation))
	return nil
}

// recommend never fails; errors become the text shown in place of advice.
func (h *Handler) recommend(ctx context.Context, wasteType string) string {
	if h.deps.Advisor == nil {
		return ReplyNoAdvisorAdvice
	}
	text, err := h.deps.Advisor.Recommend(ctx, wasteType)
	switch {
	case err == nil:
		return text
	case errors.Is(err, genai.ErrInvalidCredential):
		zerolog.Ctx(ctx).Error().Err(err).Msg("❌ generative credential rejected")
		return ReplyInvalidKey
	default:
		zerolog.Ctx(ctx).Error().Err(err).Msg("❌ recommendation failed")
		return ReplyAdvisorBusy
	}
}

func (h *Handler) answer(ctx context.Context, msg chat.InboundMessage, question string) {
	if h.deps.Advisor == nil {
		h.send(ctx, msg, ReplyNoAdvisorQuestion)
		return
	}
	log := zerolog.Ctx(ctx)

	h.react(ctx, msg, ReactQuestion)
	h.typing(ctx, msg, true)
	text, err := h.deps.Advisor.Answer(ctx, question)
	h.typing(ctx, msg, false)

	switch {
	case err == nil:
		h.send(ctx, msg, format.Escape(text))
	case errors.Is(err, genai.ErrInvalidCredential):
		log.Error().Err(err).Msg("❌ generative credential rejected")
		h.send(ctx, msg, ReplyInvalidKey)
	default:
		log.Error().Err(err).Msg("❌ question answering failed")
		h.send(ctx, msg, ReplyAnswerFailed)
	}
}

// send replies and logs a failed delivery without retrying.
func (h *Handler) send(ctx context.Context, msg chat.InboundMessage, text string) {
	if err := h.reply.Reply(ctx, msg, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("❌ reply not sent")
	}
}

func (h *Handler) react(ctx context.Context, msg chat.InboundMessage, emoji string) {
	if err := h.reply.React(ctx, msg, emoji); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("emoji", emoji).Msg("reaction not sent")
	}
}

func (h *Handler) typing(ctx context.Context, msg chat.InboundMessage, on bool) {
	if err := h.reply.SetTyping(ctx, msg, on); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Bool("typing", on).Msg("presence not updated")
	}
}

func parentLabel(res *classifier.Result) *string {
	if res == nil || res.Parent == nil {
		return nil
	}
	return res.Parent.Label
}

func subLabel(res *classifier.Result) *string {
	if res == nil || res.Sub == nil {
		return nil
	}
	return res.Sub.Label
}
