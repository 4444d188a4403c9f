// Package hyper implements the exchange protocol client: it builds
// trading actions from caller intent, rounds every numeric field to
// venue rules, signs the action envelope, and delivers it over HTTP.
// Read-only market and account queries bypass signing entirely.
package hyper

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/crypto"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/hyper/asset"
	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/util"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"

	infoPath     = "/info"
	exchangePath = "/exchange"

	metaTTL = 30 * time.Second
)

// Config configures a Client. PrivateKey may be empty for a read-only
// client; every write operation then fails with a ConstructionError.
type Config struct {
	BaseURL      string
	PrivateKey   string // hex, with or without 0x prefix
	VaultAddress string // opt-in vault trading; empty means none
	IsMainnet    bool
	Timeout      time.Duration
	Clock        util.Clock
	Logger       *zap.Logger
}

// Client is the public surface. It is stateless between calls apart
// from short-TTL metadata caches and the cached role discovery; order
// and position bookkeeping belong to the caller. One Client owns one
// connection pool; treat each Client as effectively single-writer so
// that nonces from concurrent writes stay ordered.
type Client struct {
	transport *transport
	signer    *crypto.Signer
	registry  *asset.Registry
	clock     util.Clock
	log       *zap.Logger

	vaultAddress *common.Address
	expiresAfter atomic.Pointer[uint64]
	isMainnet    bool
	prevNonce    atomic.Int64

	metaMu sync.Mutex
	meta   *Meta
	metaAt time.Time

	roleMu     sync.Mutex
	roleDone   bool
	mainWallet *common.Address
}

// New builds a Client. An invalid private key or vault address is a
// fatal construction error: no partially usable client is returned.
func New(cfg Config) (*Client, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = util.RealClock{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if cfg.IsMainnet {
			baseURL = MainnetAPIURL
		} else {
			baseURL = TestnetAPIURL
		}
	}

	c := &Client{
		transport: newTransport(baseURL, cfg.Timeout, clock, log),
		clock:     clock,
		log:       log,
		isMainnet: cfg.IsMainnet,
	}

	if cfg.PrivateKey != "" {
		signer, err := crypto.FromPrivateKeyHex(cfg.PrivateKey)
		if err != nil {
			return nil, &ConstructionError{Op: "load signing key", Err: err}
		}
		c.signer = signer
	}

	if cfg.VaultAddress != "" {
		if !common.IsHexAddress(cfg.VaultAddress) {
			return nil, &ConstructionError{Op: "parse vault address", Err: errInvalidAddress(cfg.VaultAddress)}
		}
		addr := common.HexToAddress(cfg.VaultAddress)
		c.vaultAddress = &addr
	}

	c.registry = asset.NewRegistry(c.SpotMeta, clock, metaTTL)
	c.prevNonce.Store(clock.Now().UnixMilli())
	return c, nil
}

type errInvalidAddress string

func (e errInvalidAddress) Error() string { return "invalid hex address: " + string(e) }

// Address returns the signing key's address, or the zero address for a
// read-only client.
func (c *Client) Address() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

// SetExpiresAfter attaches an expiry (unix millis) to subsequently
// signed L1 actions; zero duration clears it. Not supported on the
// user-signed transfer family.
func (c *Client) SetExpiresAfter(d time.Duration) {
	if d <= 0 {
		c.expiresAfter.Store(nil)
		return
	}
	expiry := uint64(c.clock.Now().Add(d).UnixMilli())
	c.expiresAfter.Store(&expiry)
}

// nextNonce returns a strictly increasing unix-milli nonce. The venue
// rejects reused nonces, and two near-simultaneous calls could read the
// same wall clock, so a CAS loop bumps past the previous value.
func (c *Client) nextNonce() uint64 {
	for {
		prev := c.prevNonce.Load()
		curr := c.clock.Now().UnixMilli()
		if curr <= prev {
			curr = prev + 1
		}
		if c.prevNonce.CompareAndSwap(prev, curr) {
			return uint64(curr)
		}
	}
}

// Resolve maps a symbol to an instrument via the asset registry.
func (c *Client) Resolve(ctx context.Context, symbol string) (asset.Instrument, error) {
	return c.registry.Resolve(ctx, symbol)
}

// accountAddress is the address whose balances and positions the read
// queries should target: the discovered main wallet when this key is an
// agent, otherwise the key's own address. Discovery runs once per
// client lifetime and is cached; a failed lookup is retried on the next
// call rather than cached.
//
// The vault address is deliberately not consulted here: vault-mode
// trading is opt-in and distinct from agent-on-behalf-of-main-wallet,
// and conflating them produces venue-side authorization errors.
func (c *Client) accountAddress(ctx context.Context) (common.Address, error) {
	self := c.Address()

	c.roleMu.Lock()
	defer c.roleMu.Unlock()
	if c.roleDone {
		if c.mainWallet != nil {
			return *c.mainWallet, nil
		}
		return self, nil
	}

	role, err := c.UserRole(ctx, self)
	if err != nil {
		return common.Address{}, err
	}
	if role.Role == "agent" && role.Data != nil && common.IsHexAddress(role.Data.User) {
		main := common.HexToAddress(role.Data.User)
		c.mainWallet = &main
		c.log.Info("agent key detected, using main wallet for account queries",
			zap.String("agent", self.Hex()), zap.String("mainWallet", main.Hex()))
	}
	c.roleDone = true

	if c.mainWallet != nil {
		return *c.mainWallet, nil
	}
	return self, nil
}
