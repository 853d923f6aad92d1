package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"skara-bot/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFacilitiesCmd(t *testing.T) {
	out, err := execute(t, "facilities")
	if err != nil {
		t.Fatalf("facilities: %v", err)
	}
	if strings.Count(out, "📍 TPSU") != 9 {
		t.Fatalf("expected 9 facilities:\n%s", out)
	}
}

func TestFacilitiesCmd_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tps.yaml")
	yaml := "facilities:\n  - name: Bank Sampah RT 05\n    lat: -1.25\n    lon: 116.84\n    link: https://maps.app.goo.gl/example\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "facilities", "--file", path)
	if err != nil {
		t.Fatalf("facilities: %v", err)
	}
	if !strings.Contains(out, "Bank Sampah RT 05") || strings.Contains(out, "TPSU") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestNearestCmd(t *testing.T) {
	out, err := execute(t, "nearest", "--", "-1.246358", "116.838075")
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if !strings.Contains(out, "TPSU 1") || !strings.Contains(out, "0.00 km") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestNearestCmd_BadArgs(t *testing.T) {
	if _, err := execute(t, "nearest", "abc", "116.8"); err == nil {
		t.Fatal("expected error for invalid latitude")
	}
	if _, err := execute(t, "nearest", "1.0"); err == nil {
		t.Fatal("expected error for missing longitude")
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "skara "+version) {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestNewAdvisor_Selection(t *testing.T) {
	log := zerolog.Nop()

	adv, err := newAdvisor(config.Config{}, log)
	if err != nil || adv != nil {
		t.Fatalf("expected no advisor without credentials, got %v %v", adv, err)
	}

	adv, err = newAdvisor(config.Config{GeminiAPIKey: "k", GeminiModel: "gemini-2.5-flash"}, log)
	if err != nil || adv == nil {
		t.Fatalf("expected API advisor, got %v %v", adv, err)
	}

	adv, err = newAdvisor(config.Config{ChromiumPath: "/usr/bin/chromium", BrowserProfileDir: t.TempDir()}, log)
	if err != nil || adv == nil {
		t.Fatalf("expected browser advisor, got %v %v", adv, err)
	}
}
