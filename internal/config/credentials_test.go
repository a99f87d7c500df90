package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCredentialsFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadCredentials(t *testing.T) {
	t.Parallel()

	path := writeCredentialsFixture(t, `{"appid": "2015063000000001", "secret": "12345678"}`)
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.AppID != "2015063000000001" || creds.Secret != "12345678" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestLoadCredentialsLegacySecretKey(t *testing.T) {
	t.Parallel()

	path := writeCredentialsFixture(t, `{"appid": "2015063000000001", "secret_key": "legacy"}`)
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.Secret != "legacy" {
		t.Fatalf("secret_key was not mapped: %+v", creds)
	}
}

func TestLoadCredentialsSchemaRejection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"missing appid", `{"secret": "12345678"}`},
		{"missing secret", `{"appid": "2015063000000001"}`},
		{"empty appid", `{"appid": "", "secret": "12345678"}`},
		{"wrong types", `{"appid": 42, "secret": "12345678"}`},
		{"not json", `appid=42`},
	}
	for _, tc := range cases {
		path := writeCredentialsFixture(t, tc.content)
		if _, err := LoadCredentials(path); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadCredentials(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSaveCredentialsRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := SaveCredentials(path, &Credentials{AppID: "app", Secret: "sec"}); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("credentials file mode = %v, want 0600", info.Mode().Perm())
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.AppID != "app" || creds.Secret != "sec" {
		t.Fatalf("round trip changed credentials: %+v", creds)
	}
}

func TestSaveCredentialsNil(t *testing.T) {
	t.Parallel()

	if err := SaveCredentials(filepath.Join(t.TempDir(), "x.json"), nil); err == nil {
		t.Fatalf("nil credentials must be rejected")
	}
}
