package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
)

func pairingClient(out *bytes.Buffer) *Client {
	return &Client{qrOut: out, log: zerolog.Nop()}
}

func qrEvents(items ...whatsmeow.QRChannelItem) <-chan whatsmeow.QRChannelItem {
	ch := make(chan whatsmeow.QRChannelItem, len(items))
	for _, it := range items {
		ch <- it
	}
	close(ch)
	return ch
}

func TestAwaitPairing_Success(t *testing.T) {
	var out bytes.Buffer
	c := pairingClient(&out)
	err := c.awaitPairing(context.Background(), qrEvents(
		whatsmeow.QRChannelItem{Event: "code", Code: "2@abc"},
		whatsmeow.QRChannelItem{Event: "success"},
	))
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected the QR code to be printed")
	}
}

func TestAwaitPairing_Failures(t *testing.T) {
	cause := errors.New("websocket closed")
	tests := []struct {
		name   string
		events []whatsmeow.QRChannelItem
		want   string
	}{
		{"timeout", []whatsmeow.QRChannelItem{{Event: "timeout"}}, "timed out"},
		{"client outdated", []whatsmeow.QRChannelItem{{Event: "err-client-outdated"}}, "err-client-outdated"},
		{"scanned without multidevice", []whatsmeow.QRChannelItem{{Event: "err-scanned-without-multidevice"}}, "err-scanned-without-multidevice"},
		{"error event", []whatsmeow.QRChannelItem{{Event: "error", Error: cause}}, "websocket closed"},
		{"closed without success", []whatsmeow.QRChannelItem{{Event: "code", Code: "2@abc"}}, "closed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := pairingClient(&out).awaitPairing(context.Background(), qrEvents(tt.events...))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestAwaitPairing_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := pairingClient(&out).awaitPairing(ctx, qrEvents()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
