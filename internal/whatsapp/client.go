// Package whatsapp connects the bot to WhatsApp through whatsmeow: session
// storage, QR pairing, inbound event conversion and outbound replies.
package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"skara-bot/internal/chat"
)

// ErrLoggedOut is returned by Run when the linked device was removed.
var ErrLoggedOut = errors.New("whatsapp: logged out")

// HandlerFunc handles one converted inbound message.
type HandlerFunc func(ctx context.Context, msg chat.InboundMessage)

// Config holds the transport settings.
type Config struct {
	SessionDB string    // sqlstore DSN, e.g. file:skara.db?_foreign_keys=on
	QROutput  io.Writer // pairing QR destination, os.Stdout when nil
	Logger    zerolog.Logger
}

// Client is a WhatsApp session. It implements bot.Replier.
type Client struct {
	wa        *whatsmeow.Client
	container *sqlstore.Container
	qrOut     io.Writer
	log       zerolog.Logger

	wg        sync.WaitGroup
	loggedOut chan struct{}
	once      sync.Once
}

// New opens the session store and prepares a client for its first device.
func New(ctx context.Context, cfg Config) (*Client, error) {
	log := cfg.Logger.With().Str("component", "whatsapp").Logger()

	dbLog := waLog.Zerolog(log.With().Str("module", "db").Logger().Level(zerolog.ErrorLevel))
	container, err := sqlstore.New(ctx, "sqlite3", cfg.SessionDB, dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	clientLog := waLog.Zerolog(log.With().Str("module", "client").Logger().Level(zerolog.WarnLevel))
	qrOut := cfg.QROutput
	if qrOut == nil {
		qrOut = os.Stdout
	}
	return &Client{
		wa:        whatsmeow.NewClient(device, clientLog),
		container: container,
		qrOut:     qrOut,
		log:       log,
		loggedOut: make(chan struct{}),
	}, nil
}

// Run connects, pairs with a QR code when the store has no session, and
// dispatches every inbound message to handle in its own goroutine. It blocks
// until ctx is cancelled or the device is logged out.
func (c *Client) Run(ctx context.Context, handle HandlerFunc) error {
	c.wa.AddEventHandler(c.eventHandler(ctx, handle))

	if c.wa.Store.ID == nil {
		if err := c.pair(ctx); err != nil {
			return err
		}
	} else {
		if err := c.wa.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
	}

	var err error
	select {
	case <-ctx.Done():
	case <-c.loggedOut:
		err = ErrLoggedOut
	}

	c.wa.Disconnect()
	c.wg.Wait()
	if cerr := c.container.Close(); cerr != nil {
		c.log.Warn().Err(cerr).Msg("failed to close session store")
	}
	return err
}

// pair prints QR codes until the phone links the device.
func (c *Client) pair(ctx context.Context) error {
	qrChan, err := c.wa.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to get QR channel: %w", err)
	}
	if err := c.wa.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return c.awaitPairing(ctx, qrChan)
}

// awaitPairing consumes QR events until the device is linked. Any event other
// than a new code ends pairing with an error, as does a closed channel.
func (c *Client) awaitPairing(ctx context.Context, qrChan <-chan whatsmeow.QRChannelItem) error {
	for evt := range qrChan {
		switch evt.Event {
		case "code":
			c.log.Info().Msg("📱 Scan this QR code with WhatsApp (Linked devices)")
			qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, c.qrOut)
		case "success":
			c.log.Info().Msg("✅ Device linked")
			return nil
		case "timeout":
			return errors.New("QR pairing timed out")
		default:
			if evt.Error != nil {
				return fmt.Errorf("QR pairing failed: %w", evt.Error)
			}
			return fmt.Errorf("QR pairing failed: %s", evt.Event)
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("QR channel closed before the device was linked")
}

func (c *Client) eventHandler(ctx context.Context, handle HandlerFunc) func(any) {
	return func(evt any) {
		switch v := evt.(type) {
		case *events.Message:
			c.onMessage(ctx, v, handle)
		case *events.Connected:
			c.log.Info().Msg("✨ SKARA is online and ready!")
		case *events.Disconnected:
			c.log.Warn().Msg("🔌 Disconnected from WhatsApp, reconnecting")
		case *events.LoggedOut:
			c.log.Error().Str("reason", fmt.Sprint(v.Reason)).Msg("❌ Logged out. Remove the session database and pair again.")
			c.once.Do(func() { close(c.loggedOut) })
		}
	}
}

func (c *Client) onMessage(ctx context.Context, evt *events.Message, handle HandlerFunc) {
	if evt.Info.IsFromMe || evt.Info.Chat.Server == types.BroadcastServer {
		return
	}
	msg, ok := Convert(evt, c.wa)
	if !ok {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Error().Interface("panic", r).Str("msg_id", msg.ID).Msg("❌ message goroutine panic")
			}
		}()
		handle(ctx, msg)
	}()
}

// Reply sends text to the message's chat, quoting the message.
func (c *Client) Reply(ctx context.Context, msg chat.InboundMessage, text string) error {
	to, err := types.ParseJID(msg.Chat)
	if err != nil {
		return fmt.Errorf("invalid chat %q: %w", msg.Chat, err)
	}

	out := &waE2E.Message{Conversation: proto.String(text)}
	if evt, ok := msg.Origin.(*events.Message); ok {
		if quote := quoteContext(evt); quote != nil {
			out = &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text:        proto.String(text),
				ContextInfo: quote,
			}}
		}
	}

	if _, err := c.wa.SendMessage(ctx, to, out); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

// React adds an emoji reaction to the message.
func (c *Client) React(ctx context.Context, msg chat.InboundMessage, emoji string) error {
	evt, ok := msg.Origin.(*events.Message)
	if !ok {
		return errors.New("message has no whatsapp origin")
	}
	reaction := c.wa.BuildReaction(evt.Info.Chat, evt.Info.Sender, evt.Info.ID, emoji)
	if _, err := c.wa.SendMessage(ctx, evt.Info.Chat, reaction); err != nil {
		return fmt.Errorf("send reaction: %w", err)
	}
	return nil
}

// SetTyping shows or clears the composing indicator in the message's chat.
func (c *Client) SetTyping(ctx context.Context, msg chat.InboundMessage, typing bool) error {
	to, err := types.ParseJID(msg.Chat)
	if err != nil {
		return fmt.Errorf("invalid chat %q: %w", msg.Chat, err)
	}
	state := types.ChatPresencePaused
	if typing {
		state = types.ChatPresenceComposing
	}
	return c.wa.SendChatPresence(ctx, to, state, types.ChatPresenceMediaText)
}
