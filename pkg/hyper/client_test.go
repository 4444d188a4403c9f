package hyper

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ElcaroNossam/elcarobybitbotv2-sub003/pkg/util"
)

const testPrivateKey = "0x5bf352a79c9b64a2f141d9d08bd09c2e965586d92a1c9ffc1f0e3b3525a26d51"

// venueStub is a scriptable stand-in for the venue's HTTP API. It
// records every request body per path and answers from canned
// responses keyed by the info request type (or "exchange" for writes).
type venueStub struct {
	t *testing.T

	mu        sync.Mutex
	requests  map[string][]json.RawMessage
	responses map[string]string
}

func newVenueStub(t *testing.T) (*venueStub, *httptest.Server) {
	stub := &venueStub{
		t:         t,
		requests:  make(map[string][]json.RawMessage),
		responses: make(map[string]string),
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return stub, srv
}

func (s *venueStub) respond(key, body string) {
	s.mu.Lock()
	s.responses[key] = body
	s.mu.Unlock()
}

func (s *venueStub) calls(key string) []json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[key]
}

func (s *venueStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.t.Errorf("reading request body: %v", err)
		return
	}

	key := "exchange"
	if r.URL.Path == "/info" {
		var req struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			s.t.Errorf("decoding info request: %v", err)
			return
		}
		key = req.Type
	}

	s.mu.Lock()
	s.requests[key] = append(s.requests[key], json.RawMessage(body))
	resp, ok := s.responses[key]
	s.mu.Unlock()

	if !ok {
		s.t.Errorf("no canned response for %q", key)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write([]byte(resp))
}

func newTestClient(t *testing.T, baseURL string) (*Client, *util.ManualClock) {
	clock := util.NewManualClock(time.UnixMilli(1700000000000))
	c, err := New(Config{
		BaseURL:    baseURL,
		PrivateKey: testPrivateKey,
		Clock:      clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, clock
}

func TestOrderWireFormat(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"ok","response":{"type":"order","data":{"statuses":[{"resting":{"oid":77}}]}}}`)

	c, _ := newTestClient(t, srv.URL)
	resp, err := c.Order(context.Background(), OrderRequest{
		Coin:      "ETH",
		IsBuy:     true,
		Sz:        0.01,
		LimitPx:   2001.236,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifGtc}},
	})
	if err != nil {
		t.Fatalf("Order: %v", err)
	}
	if len(resp.Data.Statuses) != 1 || resp.Data.Statuses[0].Resting == nil || resp.Data.Statuses[0].Resting.Oid != 77 {
		t.Errorf("response statuses = %+v, want resting oid 77", resp.Data.Statuses)
	}

	calls := stub.calls("exchange")
	if len(calls) != 1 {
		t.Fatalf("exchange calls = %d, want 1", len(calls))
	}

	var env struct {
		Action struct {
			Type     string `json:"type"`
			Grouping string `json:"grouping"`
			Orders   []struct {
				Asset   int    `json:"a"`
				IsBuy   bool   `json:"b"`
				LimitPx string `json:"p"`
				Sz      string `json:"s"`
				Reduce  bool   `json:"r"`
			} `json:"orders"`
		} `json:"action"`
		Nonce     uint64 `json:"nonce"`
		Signature struct {
			R string `json:"r"`
			S string `json:"s"`
			V int    `json:"v"`
		} `json:"signature"`
		VaultAddress *string `json:"vaultAddress"`
	}
	if err := json.Unmarshal(calls[0], &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}

	if env.Action.Type != "order" || env.Action.Grouping != "na" {
		t.Errorf("action type/grouping = %s/%s, want order/na", env.Action.Type, env.Action.Grouping)
	}
	if len(env.Action.Orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(env.Action.Orders))
	}
	o := env.Action.Orders[0]
	if o.Asset != 1 || !o.IsBuy {
		t.Errorf("order a/b = %d/%v, want 1/true", o.Asset, o.IsBuy)
	}
	if o.LimitPx != "2001.2" {
		t.Errorf("limitPx = %q, want \"2001.2\"", o.LimitPx)
	}
	if o.Sz != "0.0100" {
		t.Errorf("sz = %q, want \"0.0100\"", o.Sz)
	}
	if env.Nonce == 0 {
		t.Error("nonce missing from envelope")
	}
	if env.Signature.R == "" || env.Signature.S == "" || (env.Signature.V != 27 && env.Signature.V != 28) {
		t.Errorf("signature = %+v, want populated r/s and v in {27,28}", env.Signature)
	}
	if env.VaultAddress != nil {
		t.Errorf("vaultAddress = %v, want absent without vault config", *env.VaultAddress)
	}
}

func TestOrderEmbeddedErrorIsVenueError(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"ok","response":{"type":"order","data":{"statuses":[{"error":"Order must have minimum value of $10"}]}}}`)

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Order(context.Background(), OrderRequest{
		Coin:      "ETH",
		Sz:        0.01,
		LimitPx:   2000,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifGtc}},
	})

	var ve *VenueError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want VenueError", err)
	}
	if ve.Body != "Order must have minimum value of $10" {
		t.Errorf("body = %q, want embedded error verbatim", ve.Body)
	}
}

func TestRejectedEnvelopeIsVenueError(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"err","response":"User or API Wallet does not exist."}`)

	c, _ := newTestClient(t, srv.URL)
	_, err := c.Cancel(context.Background(), "ETH", 42)

	var ve *VenueError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want VenueError", err)
	}
	if ve.Body != "User or API Wallet does not exist." {
		t.Errorf("body = %q, want venue message verbatim", ve.Body)
	}
}

func TestReadOnlyClientRejectsWrites(t *testing.T) {
	_, srv := newVenueStub(t)
	clock := util.NewManualClock(time.UnixMilli(1700000000000))
	c, err := New(Config{BaseURL: srv.URL, Clock: clock})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = c.Order(context.Background(), OrderRequest{
		Coin:      "ETH",
		Sz:        1,
		LimitPx:   2000,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifGtc}},
	})
	var ce *ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConstructionError for missing key", err)
	}
}

func TestVaultAddressCarriedInEnvelope(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"ok","response":{"type":"default"}}`)

	clock := util.NewManualClock(time.UnixMilli(1700000000000))
	c, err := New(Config{
		BaseURL:      srv.URL,
		PrivateKey:   testPrivateKey,
		VaultAddress: "0x1234567890123456789012345678901234567890",
		Clock:        clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.UpdateLeverage(context.Background(), "BTC", 10, true); err != nil {
		t.Fatalf("UpdateLeverage: %v", err)
	}

	var env struct {
		VaultAddress *string `json:"vaultAddress"`
	}
	if err := json.Unmarshal(stub.calls("exchange")[0], &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	if env.VaultAddress == nil {
		t.Fatal("vaultAddress missing from envelope")
	}
}

func TestInvalidVaultAddressRejected(t *testing.T) {
	_, err := New(Config{PrivateKey: testPrivateKey, VaultAddress: "not-an-address"})
	var ce *ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConstructionError", err)
	}
}

func TestAgentDiscoveryCached(t *testing.T) {
	stub, srv := newVenueStub(t)
	main := "0x9999999999999999999999999999999999999999"
	stub.respond("userRole", `{"role":"agent","data":{"user":"`+main+`"}}`)
	stub.respond("clearinghouseState", `{"withdrawable":"100.0"}`)

	c, _ := newTestClient(t, srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.UserState(context.Background()); err != nil {
			t.Fatalf("UserState %d: %v", i, err)
		}
	}

	if calls := stub.calls("userRole"); len(calls) != 1 {
		t.Errorf("userRole calls = %d, want 1 (cached after discovery)", len(calls))
	}

	// Account queries must target the discovered main wallet.
	var req struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(stub.calls("clearinghouseState")[0], &req); err != nil {
		t.Fatalf("decoding state request: %v", err)
	}
	if req.User != "0x9999999999999999999999999999999999999999" {
		t.Errorf("state query user = %s, want main wallet", req.User)
	}
}

func TestPlainUserRoleCached(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("userRole", `{"role":"user"}`)
	stub.respond("openOrders", `[]`)

	c, _ := newTestClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		if _, err := c.OpenOrders(context.Background()); err != nil {
			t.Fatalf("OpenOrders %d: %v", i, err)
		}
	}

	if calls := stub.calls("userRole"); len(calls) != 1 {
		t.Errorf("userRole calls = %d, want 1", len(calls))
	}

	var req struct {
		User string `json:"user"`
	}
	if err := json.Unmarshal(stub.calls("openOrders")[0], &req); err != nil {
		t.Fatalf("decoding orders request: %v", err)
	}
	if req.User != c.Address().Hex() {
		t.Errorf("orders query user = %s, want own address %s", req.User, c.Address().Hex())
	}
}

func TestMetaCachedWithinTTL(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("meta", `{"universe":[{"name":"BTC","szDecimals":5,"maxLeverage":50}]}`)

	c, clock := newTestClient(t, srv.URL)
	for i := 0; i < 3; i++ {
		meta, err := c.Meta(context.Background())
		if err != nil {
			t.Fatalf("Meta %d: %v", i, err)
		}
		if len(meta.Universe) != 1 || meta.Universe[0].Name != "BTC" {
			t.Fatalf("meta = %+v", meta)
		}
	}
	if calls := stub.calls("meta"); len(calls) != 1 {
		t.Errorf("meta calls = %d, want 1 inside TTL", len(calls))
	}

	clock.Advance(31 * time.Second)
	if _, err := c.Meta(context.Background()); err != nil {
		t.Fatalf("Meta after TTL: %v", err)
	}
	if calls := stub.calls("meta"); len(calls) != 2 {
		t.Errorf("meta calls = %d, want 2 after TTL expiry", len(calls))
	}
}

func TestMidPrice(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("allMids", `{"ETH":"2001.5","BTC":"64000.0"}`)

	c, _ := newTestClient(t, srv.URL)
	px, err := c.MidPrice(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("MidPrice: %v", err)
	}
	if px != 2001.5 {
		t.Errorf("mid = %v, want 2001.5", px)
	}

	if _, err := c.MidPrice(context.Background(), "DOGE"); err == nil {
		t.Error("mid lookup for absent coin should fail")
	}
}

func TestNextNonceStrictlyIncreasing(t *testing.T) {
	c, _ := newTestClient(t, "http://unused")

	prev := c.nextNonce()
	for i := 0; i < 100; i++ {
		n := c.nextNonce()
		if n <= prev {
			t.Fatalf("nonce %d not strictly greater than %d", n, prev)
		}
		prev = n
	}
}

func TestUsdSendEnvelope(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"ok","response":{"type":"default"}}`)

	c, _ := newTestClient(t, srv.URL)
	dest := "0x1234567890123456789012345678901234567890"
	if _, err := c.UsdSend(context.Background(), dest, 10.5); err != nil {
		t.Fatalf("UsdSend: %v", err)
	}

	var env struct {
		Action struct {
			Type             string `json:"type"`
			SignatureChainID string `json:"signatureChainId"`
			HyperliquidChain string `json:"hyperliquidChain"`
			Destination      string `json:"destination"`
			Amount           string `json:"amount"`
			Time             int64  `json:"time"`
		} `json:"action"`
		Nonce        uint64  `json:"nonce"`
		VaultAddress *string `json:"vaultAddress"`
	}
	if err := json.Unmarshal(stub.calls("exchange")[0], &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}

	if env.Action.Type != "usdSend" {
		t.Errorf("type = %q, want usdSend", env.Action.Type)
	}
	if env.Action.SignatureChainID != "0x66eee" {
		t.Errorf("signatureChainId = %q, want 0x66eee", env.Action.SignatureChainID)
	}
	if env.Action.HyperliquidChain != "Testnet" {
		t.Errorf("hyperliquidChain = %q, want Testnet", env.Action.HyperliquidChain)
	}
	if env.Action.Amount != "10.5" {
		t.Errorf("amount = %q, want \"10.5\"", env.Action.Amount)
	}
	if int64(env.Nonce) != env.Action.Time {
		t.Errorf("nonce %d != action time %d; they must match", env.Nonce, env.Action.Time)
	}
	if env.VaultAddress != nil {
		t.Error("user-signed actions must not carry a vault address")
	}
}

func TestSpotOrderViaIndexReference(t *testing.T) {
	stub, srv := newVenueStub(t)
	stub.respond("exchange", `{"status":"ok","response":{"type":"order","data":{"statuses":[{"resting":{"oid":5}}]}}}`)

	c, _ := newTestClient(t, srv.URL)
	if _, err := c.Order(context.Background(), OrderRequest{
		Coin:      "@3",
		IsBuy:     true,
		Sz:        1.5,
		LimitPx:   0.123456789,
		OrderType: OrderType{Limit: &LimitOrder{Tif: TifIoc}},
	}); err != nil {
		t.Fatalf("Order: %v", err)
	}

	var env struct {
		Action struct {
			Orders []struct {
				Asset   int    `json:"a"`
				LimitPx string `json:"p"`
				Sz      string `json:"s"`
			} `json:"orders"`
		} `json:"action"`
	}
	if err := json.Unmarshal(stub.calls("exchange")[0], &env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	o := env.Action.Orders[0]
	if o.Asset != 10003 {
		t.Errorf("asset = %d, want 10003", o.Asset)
	}
	// Spot prices round to 5 decimal places.
	if o.LimitPx != "0.12346" {
		t.Errorf("limitPx = %q, want \"0.12346\"", o.LimitPx)
	}
	if o.Sz != "1.50" {
		t.Errorf("sz = %q, want \"1.50\" at fallback decimals", o.Sz)
	}
}
