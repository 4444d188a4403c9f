package crypto

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/vmihailenco/msgpack/v5"
)

// The exchange verifies L1 actions against a fixed signing domain. The
// chain id here is a pinned protocol constant: it stays 1337 no matter
// which network the action targets, and the network is distinguished
// only by the one-character source flag inside the phantom agent.
const (
	l1DomainName    = "Exchange"
	l1DomainVersion = "1"
	l1DomainChainID = 1337

	// SignatureChainID is carried inside user-signed actions (transfers,
	// withdrawals). Unlike the L1 domain it is a real chain id and is part
	// of the signed payload itself.
	SignatureChainID = "0x66eee"
)

// Signature is the r/s/v wire form the exchange expects.
type Signature struct {
	R string `json:"r"`
	S string `json:"s"`
	V int    `json:"v"`
}

// ActionHash computes the 32-byte digest committing to an action, its
// nonce, the optional vault address and the optional expiry. The action
// is serialized to msgpack with struct fields in declared order; the
// resulting byte string is part of the exchange's external contract, so
// any change to field order or encoding breaks signature verification.
func ActionHash(action any, nonce uint64, vaultAddress *common.Address, expiresAfter *uint64) (common.Hash, error) {
	data, err := msgpack.Marshal(action)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode action: %w", err)
	}

	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	data = append(data, nonceBytes[:]...)

	if vaultAddress == nil {
		data = append(data, 0x00)
	} else {
		data = append(data, 0x01)
		data = append(data, vaultAddress.Bytes()...)
	}

	if expiresAfter != nil {
		var expiryBytes [8]byte
		binary.BigEndian.PutUint64(expiryBytes[:], *expiresAfter)
		data = append(data, 0x00)
		data = append(data, expiryBytes[:]...)
	}

	return crypto.Keccak256Hash(data), nil
}

// phantomAgent wraps an action digest in the two-field struct the venue
// actually verifies. source is "a" on mainnet and "b" otherwise.
func phantomAgent(hash common.Hash, isMainnet bool) apitypes.TypedDataMessage {
	source := "b"
	if isMainnet {
		source = "a"
	}
	return apitypes.TypedDataMessage{
		"source":       source,
		"connectionId": hexutil.Encode(hash.Bytes()),
	}
}

// SignL1Action hashes the action with its nonce/vault/expiry framing and
// signs the phantom agent wrapper. This is the signing path for every
// action type except the user-signed transfer family.
func SignL1Action(signer *Signer, action any, nonce uint64, vaultAddress *common.Address, expiresAfter *uint64, isMainnet bool) (Signature, error) {
	hash, err := ActionHash(action, nonce, vaultAddress, expiresAfter)
	if err != nil {
		return Signature{}, err
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Agent": []apitypes.Type{
				{Name: "source", Type: "string"},
				{Name: "connectionId", Type: "bytes32"},
			},
		},
		PrimaryType: "Agent",
		Domain: apitypes.TypedDataDomain{
			Name:              l1DomainName,
			Version:           l1DomainVersion,
			ChainId:           math.NewHexOrDecimal256(l1DomainChainID),
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: phantomAgent(hash, isMainnet),
	}

	return SignTypedData(signer, typedData)
}

// UserSignedTypes enumerates the typed-data layouts of the transfer
// family. Field order here is the signed contract, same as msgpack field
// order is for L1 actions.
var (
	UsdSendTypes = []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
	WithdrawTypes = []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
	SpotSendTypes = []apitypes.Type{
		{Name: "hyperliquidChain", Type: "string"},
		{Name: "destination", Type: "string"},
		{Name: "token", Type: "string"},
		{Name: "amount", Type: "string"},
		{Name: "time", Type: "uint64"},
	}
)

// SignUserSignedAction signs one of the transfer-family actions. These
// are not hashed through the phantom agent: the payload fields are the
// typed-data message directly, under the transfer signing domain whose
// chain id is the real network-specific SignatureChainID.
func SignUserSignedAction(signer *Signer, primaryType string, payloadTypes []apitypes.Type, message apitypes.TypedDataMessage, isMainnet bool) (Signature, error) {
	chain := "Testnet"
	if isMainnet {
		chain = "Mainnet"
	}
	message["hyperliquidChain"] = chain

	chainID, err := hexutil.DecodeBig(SignatureChainID)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature chain id: %w", err)
	}

	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			primaryType: payloadTypes,
		},
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              "HyperliquidSignTransaction",
			Version:           "1",
			ChainId:           (*math.HexOrDecimal256)(chainID),
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: message,
	}

	return SignTypedData(signer, typedData)
}

// SignTypedData computes the EIP-712 digest of typedData and signs it,
// returning the r/s/v components with V offset to 27/28.
func SignTypedData(signer *Signer, typedData apitypes.TypedData) (Signature, error) {
	digest, err := TypedDataDigest(typedData)
	if err != nil {
		return Signature{}, err
	}

	sig, err := signer.Sign(digest.Bytes())
	if err != nil {
		return Signature{}, fmt.Errorf("failed to sign typed data: %w", err)
	}

	return Signature{
		R: hexutil.Encode(sig[:32]),
		S: hexutil.Encode(sig[32:64]),
		V: int(sig[64]) + 27,
	}, nil
}

// TypedDataDigest returns keccak256("\x19\x01" || domainSeparator || structHash).
func TypedDataDigest(typedData apitypes.TypedData) (common.Hash, error) {
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash domain: %w", err)
	}
	structHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to hash message: %w", err)
	}
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator, structHash), nil
}

// RecoverTypedDataSigner recovers the address that produced sig over
// typedData. Used by tests and by callers verifying envelopes locally.
func RecoverTypedDataSigner(typedData apitypes.TypedData, sig Signature) (common.Address, error) {
	digest, err := TypedDataDigest(typedData)
	if err != nil {
		return common.Address{}, err
	}

	r, err := hexutil.Decode(sig.R)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature r: %w", err)
	}
	s, err := hexutil.Decode(sig.S)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature s: %w", err)
	}
	if len(r) != 32 || len(s) != 32 {
		return common.Address{}, fmt.Errorf("signature components must be 32 bytes")
	}

	raw := make([]byte, 65)
	copy(raw[:32], r)
	copy(raw[32:64], s)
	raw[64] = byte(sig.V - 27)

	return RecoverAddress(digest.Bytes(), raw)
}
