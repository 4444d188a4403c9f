package params

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Exchange.Mainnet {
		t.Error("default config should target testnet")
	}
	if cfg.Exchange.HTTPTimeout != 10*time.Second {
		t.Errorf("default timeout = %v, want 10s", cfg.Exchange.HTTPTimeout)
	}
	if cfg.Exchange.PrivateKey != "" {
		t.Error("default config must not carry a key")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HL_API_URL", "http://localhost:3001")
	t.Setenv("HL_PRIVATE_KEY", "0xdeadbeef")
	t.Setenv("HL_MAINNET", "true")
	t.Setenv("HL_HTTP_TIMEOUT_MS", "2500")

	cfg := LoadFromEnv("")
	if cfg.Exchange.APIURL != "http://localhost:3001" {
		t.Errorf("APIURL = %q", cfg.Exchange.APIURL)
	}
	if cfg.Exchange.PrivateKey != "0xdeadbeef" {
		t.Errorf("PrivateKey = %q", cfg.Exchange.PrivateKey)
	}
	if !cfg.Exchange.Mainnet {
		t.Error("Mainnet not picked up")
	}
	if cfg.Exchange.HTTPTimeout != 2500*time.Millisecond {
		t.Errorf("HTTPTimeout = %v, want 2.5s", cfg.Exchange.HTTPTimeout)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := "HL_VAULT_ADDRESS=0x1234567890123456789012345678901234567890\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}
	// godotenv never overrides a variable that is already set, even to
	// the empty string, so make sure it is absent.
	t.Setenv("HL_VAULT_ADDRESS", "")
	os.Unsetenv("HL_VAULT_ADDRESS")

	cfg := LoadFromEnv(envPath)
	if cfg.Exchange.VaultAddress != "0x1234567890123456789012345678901234567890" {
		t.Errorf("VaultAddress = %q, want value from env file", cfg.Exchange.VaultAddress)
	}
}

func TestLoadFromEnvBadTimeout(t *testing.T) {
	t.Setenv("HL_HTTP_TIMEOUT_MS", "not-a-number")
	cfg := LoadFromEnv("")
	if cfg.Exchange.HTTPTimeout != 10*time.Second {
		t.Errorf("bad timeout should keep default, got %v", cfg.Exchange.HTTPTimeout)
	}
}
