package params

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Exchange holds the connection and signing settings for one client
// instance.
type Exchange struct {
	APIURL       string
	PrivateKey   string
	VaultAddress string
	Mainnet      bool
	HTTPTimeout  time.Duration
}

type Config struct {
	Exchange Exchange
}

func Default() Config {
	return Config{
		Exchange: Exchange{
			Mainnet:     false,
			HTTPTimeout: 10 * time.Second,
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// environment variables. Priority: ENV > .env file > defaults. The
// private key is only ever read from the environment, never from
// command-line flags, so it stays out of shell history and ps output.
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	if url := os.Getenv("HL_API_URL"); url != "" {
		cfg.Exchange.APIURL = url
	}
	if key := os.Getenv("HL_PRIVATE_KEY"); key != "" {
		cfg.Exchange.PrivateKey = key
	}
	if vault := os.Getenv("HL_VAULT_ADDRESS"); vault != "" {
		cfg.Exchange.VaultAddress = vault
	}
	if mainnet := os.Getenv("HL_MAINNET"); mainnet != "" {
		cfg.Exchange.Mainnet = mainnet == "true"
	}
	if timeout := os.Getenv("HL_HTTP_TIMEOUT_MS"); timeout != "" {
		if ms, err := strconv.Atoi(timeout); err == nil && ms > 0 {
			cfg.Exchange.HTTPTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	return cfg
}
