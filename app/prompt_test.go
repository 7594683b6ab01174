package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lysyi3m/rss-sheets/app/cfg"
)

func TestResolveStandaloneTargetFromConfig(t *testing.T) {
	appCfg := &cfg.Cfg{RSSURL: " https://example.com/feed.xml ", SpreadsheetID: "sheet-1"}

	rssURL, sheetID, err := resolveStandaloneTarget(appCfg, os.Stdin, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rssURL != "https://example.com/feed.xml" || sheetID != "sheet-1" {
		t.Errorf("Unexpected target: %s %s", rssURL, sheetID)
	}
}

func TestResolveStandaloneTargetWithoutTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	if err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	defer f.Close()

	_, _, err = resolveStandaloneTarget(&cfg.Cfg{RSSURL: "https://example.com/feed.xml"}, f, &bytes.Buffer{})
	if !errors.Is(err, errMissingTarget) {
		t.Errorf("Expected errMissingTarget, got %v", err)
	}
}

func TestPromptTarget(t *testing.T) {
	in := strings.NewReader("https://example.com/feed.xml\n sheet-1 \n")
	var out bytes.Buffer

	rssURL, sheetID, err := promptTarget("", "", in, &out)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rssURL != "https://example.com/feed.xml" || sheetID != "sheet-1" {
		t.Errorf("Unexpected target: %s %s", rssURL, sheetID)
	}
	if !strings.Contains(out.String(), "Feed URL: ") || !strings.Contains(out.String(), "Spreadsheet ID: ") {
		t.Errorf("Expected prompts, got %q", out.String())
	}
}

func TestPromptTargetKeepsProvidedValue(t *testing.T) {
	var out bytes.Buffer

	rssURL, sheetID, err := promptTarget("https://example.com/feed.xml", "", strings.NewReader("sheet-1"), &out)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rssURL != "https://example.com/feed.xml" || sheetID != "sheet-1" {
		t.Errorf("Unexpected target: %s %s", rssURL, sheetID)
	}
	if strings.Contains(out.String(), "Feed URL") {
		t.Error("Expected no prompt for provided feed URL")
	}
}

func TestPromptTargetEmptyAnswer(t *testing.T) {
	_, _, err := promptTarget("", "", strings.NewReader("\n\n"), &bytes.Buffer{})
	if !errors.Is(err, errMissingTarget) {
		t.Errorf("Expected errMissingTarget, got %v", err)
	}
}

func TestNewCredentialsProvider(t *testing.T) {
	if _, err := newCredentialsProvider(&cfg.Cfg{CredentialsMode: cfg.CredentialsEnvironment}); err == nil {
		t.Error("Expected error for missing GOOGLE_CREDENTIALS")
	}

	provider, err := newCredentialsProvider(&cfg.Cfg{CredentialsMode: cfg.CredentialsInteractive, TokenFile: "token.json"})
	if err != nil || provider == nil {
		t.Errorf("Expected interactive provider, got %v %v", provider, err)
	}

	if _, err := newCredentialsProvider(&cfg.Cfg{CredentialsMode: "unknown"}); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
