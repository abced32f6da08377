package eas

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/geoattest/sdk-go/core/types"
)

// OffchainVersion is the offchain attestation envelope version this signer
// produces. Version 2 envelopes carry a salt, so identical payloads can
// still yield distinct UIDs.
const OffchainVersion uint16 = 2

const (
	domainName    = "EAS Attestation"
	domainVersion = "1.2.0"
)

// attestTypes is the EIP-712 type set for a version 2 offchain attestation.
var attestTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	"Attest": {
		{Name: "version", Type: "uint16"},
		{Name: "schema", Type: "bytes32"},
		{Name: "recipient", Type: "address"},
		{Name: "time", Type: "uint64"},
		{Name: "expirationTime", Type: "uint64"},
		{Name: "revocable", Type: "bool"},
		{Name: "refUID", Type: "bytes32"},
		{Name: "data", Type: "bytes"},
		{Name: "salt", Type: "bytes32"},
	},
}

// OffchainSigner produces EIP-712 signed offchain attestations bound to one
// chain and EAS deployment.
type OffchainSigner struct {
	privateKey *ecdsa.PrivateKey
	chainID    uint64
	contract   common.Address
	schemaUID  common.Hash
	now        func() time.Time
}

// SignerOption adjusts signer construction.
type SignerOption func(*OffchainSigner)

// WithTimeSource overrides the clock stamped into attestations.
func WithTimeSource(now func() time.Time) SignerOption {
	return func(s *OffchainSigner) {
		s.now = now
	}
}

// NewOffchainSigner builds a signer from a hex-encoded secp256k1 private
// key, with or without a 0x prefix.
func NewOffchainSigner(privateKeyHex string, chainID uint64, contract common.Address, schemaUID common.Hash, opts ...SignerOption) (*OffchainSigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, types.WrapError(types.KindConfig, "eas", "invalid private key", err)
	}
	return NewOffchainSignerFromKey(key, chainID, contract, schemaUID, opts...)
}

// NewOffchainSignerFromKey builds a signer from an in-memory key.
func NewOffchainSignerFromKey(key *ecdsa.PrivateKey, chainID uint64, contract common.Address, schemaUID common.Hash, opts ...SignerOption) (*OffchainSigner, error) {
	if key == nil {
		return nil, types.NewError(types.KindConfig, "eas", "private key is nil")
	}
	s := &OffchainSigner{
		privateKey: key,
		chainID:    chainID,
		contract:   contract,
		schemaUID:  schemaUID,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Address returns the attester address derived from the signing key.
func (s *OffchainSigner) Address() common.Address {
	return crypto.PubkeyToAddress(s.privateKey.PublicKey)
}

// ChainID returns the chain the signer binds attestations to.
func (s *OffchainSigner) ChainID() uint64 { return s.chainID }

// SchemaUID returns the schema the signer attests against.
func (s *OffchainSigner) SchemaUID() common.Hash { return s.schemaUID }

// SignOffchain signs a with a random salt.
func (s *OffchainSigner) SignOffchain(ctx context.Context, a *types.UnsignedAttestation) (*types.OffchainAttestation, error) {
	var salt common.Hash
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, types.WrapError(types.KindSigning, "eas", "generating salt", err)
	}
	return s.SignOffchainWithSalt(ctx, a, salt)
}

// SignOffchainWithSalt signs a with a caller-chosen salt. With a fixed salt
// and time source the result is fully deterministic.
func (s *OffchainSigner) SignOffchainWithSalt(ctx context.Context, a *types.UnsignedAttestation, salt common.Hash) (*types.OffchainAttestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := EncodeSchemaData(a)
	if err != nil {
		return nil, err
	}

	att := &types.OffchainAttestation{
		Version:           OffchainVersion,
		Schema:            s.schemaUID,
		Recipient:         a.Recipient,
		Time:              uint64(s.now().Unix()),
		ExpirationTime:    a.ExpirationTime,
		Revocable:         a.Revocable,
		RefUID:            a.RefUID,
		Data:              data,
		Salt:              salt,
		Attester:          s.Address(),
		ChainID:           s.chainID,
		VerifyingContract: s.contract,
		Payload:           a,
	}

	digest, err := attestDigest(att)
	if err != nil {
		return nil, err
	}
	raw, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, types.WrapError(types.KindSigning, "eas", "signing attestation digest", err)
	}
	normalizeV(raw)
	sig, err := types.SignatureFromBytes(raw)
	if err != nil {
		return nil, err
	}
	att.Signature = sig
	att.UID = offchainUID(att)
	return att, nil
}

// VerifyOffchain checks an offchain attestation end to end: the UID must
// match its content and the signature must recover to the attester.
func VerifyOffchain(att *types.OffchainAttestation) error {
	if att == nil {
		return types.NewError(types.KindValidation, "eas", "attestation is nil")
	}
	if got := offchainUID(att); got != att.UID {
		return types.NewError(types.KindValidation, "eas",
			fmt.Sprintf("uid mismatch: computed %s, attestation carries %s", got, att.UID))
	}
	digest, err := attestDigest(att)
	if err != nil {
		return err
	}
	raw := att.Signature.Bytes()
	if raw[64] < 27 {
		return types.NewError(types.KindValidation, "eas", "signature V must be 27 or 28")
	}
	raw[64] -= 27
	pub, err := crypto.SigToPub(digest, raw)
	if err != nil {
		return types.WrapError(types.KindValidation, "eas", "recovering signer", err)
	}
	if recovered := crypto.PubkeyToAddress(*pub); recovered != att.Attester {
		return types.NewError(types.KindValidation, "eas",
			fmt.Sprintf("signature recovers to %s, attestation names %s", recovered, att.Attester))
	}
	return nil
}

// attestDigest hashes the EIP-712 typed data for an attestation envelope.
func attestDigest(att *types.OffchainAttestation) ([]byte, error) {
	typed := apitypes.TypedData{
		Types:       attestTypes,
		PrimaryType: "Attest",
		Domain: apitypes.TypedDataDomain{
			Name:              domainName,
			Version:           domainVersion,
			ChainId:           hexOrDecimalUint64(att.ChainID),
			VerifyingContract: att.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"version":        hexOrDecimalUint64(uint64(att.Version)),
			"schema":         att.Schema.Hex(),
			"recipient":      att.Recipient.Hex(),
			"time":           hexOrDecimalUint64(att.Time),
			"expirationTime": hexOrDecimalUint64(att.ExpirationTime),
			"revocable":      att.Revocable,
			"refUID":         att.RefUID.Hex(),
			"data":           hexutil.Encode(att.Data),
			"salt":           att.Salt.Hex(),
		},
	}
	digest, _, err := apitypes.TypedDataAndHash(typed)
	if err != nil {
		return nil, types.WrapError(types.KindSigning, "eas", "hashing typed data", err)
	}
	return digest, nil
}

// offchainUID derives the content UID of an offchain attestation: keccak256
// over the envelope fields in fixed-width packed form, with variable-length
// data collapsed to its own keccak hash first.
func offchainUID(att *types.OffchainAttestation) common.Hash {
	version := make([]byte, 2)
	binary.BigEndian.PutUint16(version, att.Version)
	return crypto.Keccak256Hash(
		version,
		att.Schema.Bytes(),
		att.Recipient.Bytes(),
		uint64Bytes(att.Time),
		uint64Bytes(att.ExpirationTime),
		boolByte(att.Revocable),
		att.RefUID.Bytes(),
		crypto.Keccak256(att.Data),
		att.Salt.Bytes(),
	)
}

func uint64Bytes(v uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out
}

func boolByte(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func hexOrDecimalUint64(v uint64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).SetUint64(v))
}

func normalizeV(sig []byte) {
	// crypto.Sign returns V as 0 or 1; EVM tooling expects 27 or 28.
	v := sig[64]
	if v >= 27 {
		v -= 27
	}
	sig[64] = (v & 1) + 27
}
