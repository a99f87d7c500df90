package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Credentials holds the translation provider key material kept outside the
// environment, in a JSON file next to the binary or at CREDENTIALS_FILE.
type Credentials struct {
	AppID  string `json:"appid"`
	Secret string `json:"secret"`
}

const credentialsSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"appid": {"type": "string", "minLength": 1},
		"secret": {"type": "string", "minLength": 1},
		"secret_key": {"type": "string", "minLength": 1}
	},
	"required": ["appid"],
	"anyOf": [
		{"required": ["secret"]},
		{"required": ["secret_key"]}
	]
}`

var compiledCredentialsSchema = jsonschema.MustCompileString("credentials.json", credentialsSchema)

// LoadCredentials reads and validates the credentials file. Older files that
// use the "secret_key" key are accepted and mapped to Secret.
func LoadCredentials(path string) (*Credentials, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", path, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}
	if err := compiledCredentialsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("credentials file %s is invalid: %w", path, err)
	}

	var parsed struct {
		AppID     string `json:"appid"`
		Secret    string `json:"secret"`
		SecretKey string `json:"secret_key"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", path, err)
	}

	creds := &Credentials{
		AppID:  strings.TrimSpace(parsed.AppID),
		Secret: strings.TrimSpace(parsed.Secret),
	}
	if creds.Secret == "" {
		creds.Secret = strings.TrimSpace(parsed.SecretKey)
	}
	return creds, nil
}

// SaveCredentials writes the credentials file with restrictive permissions.
func SaveCredentials(path string, creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials are nil")
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write credentials file %s: %w", path, err)
	}
	return nil
}
