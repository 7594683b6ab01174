package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lysyi3m/rss-sheets/app/cfg"
	"github.com/mattn/go-isatty"
)

var errMissingTarget = errors.New("feed URL and spreadsheet ID are required")

// resolveStandaloneTarget returns the feed URL and spreadsheet ID, prompting for
// missing values only when in is an interactive terminal.
func resolveStandaloneTarget(appCfg *cfg.Cfg, in *os.File, out io.Writer) (string, string, error) {
	rssURL := strings.TrimSpace(appCfg.RSSURL)
	spreadsheetID := strings.TrimSpace(appCfg.SpreadsheetID)

	if rssURL != "" && spreadsheetID != "" {
		return rssURL, spreadsheetID, nil
	}

	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return "", "", fmt.Errorf("%w: set RSS_URL and SPREADSHEET_ID", errMissingTarget)
	}

	return promptTarget(rssURL, spreadsheetID, in, out)
}

func promptTarget(rssURL, spreadsheetID string, in io.Reader, out io.Writer) (string, string, error) {
	reader := bufio.NewReader(in)

	var err error
	if rssURL == "" {
		if rssURL, err = promptValue(reader, out, "Feed URL"); err != nil {
			return "", "", err
		}
	}
	if spreadsheetID == "" {
		if spreadsheetID, err = promptValue(reader, out, "Spreadsheet ID"); err != nil {
			return "", "", err
		}
	}

	if rssURL == "" || spreadsheetID == "" {
		return "", "", errMissingTarget
	}

	return rssURL, spreadsheetID, nil
}

func promptValue(reader *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	return strings.TrimSpace(line), nil
}
