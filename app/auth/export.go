package auth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	ExportJSON   = "json"
	ExportBase64 = "base64"
)

// ExportCredentials renders the cached token file as a GOOGLE_CREDENTIALS value.
func ExportCredentials(tokenFile, format string) (string, error) {
	creds, err := loadCredentialsFile(tokenFile)
	if err != nil {
		return "", fmt.Errorf("failed to load token file %s: %w", tokenFile, err)
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return "", fmt.Errorf("failed to encode credentials: %w", err)
	}

	switch format {
	case ExportJSON:
		return string(data), nil
	case ExportBase64:
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown export format '%s'", format)
	}
}
