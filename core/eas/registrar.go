package eas

import (
	"context"
	"fmt"
	"math/big"

	gethAbi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/geoattest/sdk-go/core/types"
)

// attestSignature is the canonical signature of the EAS attest entrypoint.
const attestSignature = "attest((bytes32,(address,uint64,bool,bytes32,bytes,uint256)))"

var (
	attestABIArgs  gethAbi.Arguments
	attestSelector []byte
)

func init() {
	requestType, err := gethAbi.NewType("tuple", "", []gethAbi.ArgumentMarshaling{
		{Name: "schema", Type: "bytes32"},
		{Name: "data", Type: "tuple", Components: []gethAbi.ArgumentMarshaling{
			{Name: "recipient", Type: "address"},
			{Name: "expirationTime", Type: "uint64"},
			{Name: "revocable", Type: "bool"},
			{Name: "refUID", Type: "bytes32"},
			{Name: "data", Type: "bytes"},
			{Name: "value", Type: "uint256"},
		}},
	})
	if err != nil {
		panic(fmt.Sprintf("eas: failed to initialise attest request ABI type: %v", err))
	}
	attestABIArgs = gethAbi.Arguments{{Name: "request", Type: requestType}}
	attestSelector = crypto.Keccak256([]byte(attestSignature))[:4]
}

// attestRequestData mirrors the EAS AttestationRequestData tuple.
type attestRequestData struct {
	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         [32]byte
	Data           []byte
	Value          *big.Int
}

// attestRequest mirrors the EAS AttestationRequest tuple.
type attestRequest struct {
	Schema [32]byte
	Data   attestRequestData
}

// Submitter carries a signed transaction to a chain. Implementations own
// nonce management, gas pricing, and key custody; the registrar only
// assembles calldata.
type Submitter interface {
	SubmitAttestation(ctx context.Context, contract common.Address, calldata []byte) (common.Hash, error)
}

// Registrar submits attestations to an EAS deployment.
type Registrar struct {
	contract  common.Address
	schemaUID common.Hash
	chain     string
	submitter Submitter
	logger    *zap.Logger
}

// RegistrarOption adjusts registrar construction.
type RegistrarOption func(*Registrar)

// WithRegistrarLogger sets the logger; default is a no-op logger.
func WithRegistrarLogger(logger *zap.Logger) RegistrarOption {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistrar builds a registrar for one EAS deployment. chain is the
// human-readable chain name recorded on receipts.
func NewRegistrar(contract common.Address, schemaUID common.Hash, chain string, submitter Submitter, opts ...RegistrarOption) (*Registrar, error) {
	if submitter == nil {
		return nil, types.NewError(types.KindConfig, "eas", "submitter is nil")
	}
	r := &Registrar{
		contract:  contract,
		schemaUID: schemaUID,
		chain:     chain,
		submitter: submitter,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// BuildAttestCalldata packs a into attest(...) calldata against the
// registrar's schema. The value field is always zero; GeoAttest schemas do
// not take payable resolvers.
func (r *Registrar) BuildAttestCalldata(a *types.UnsignedAttestation) ([]byte, error) {
	data, err := EncodeSchemaData(a)
	if err != nil {
		return nil, err
	}
	packed, err := attestABIArgs.Pack(attestRequest{
		Schema: r.schemaUID,
		Data: attestRequestData{
			Recipient:      a.Recipient,
			ExpirationTime: a.ExpirationTime,
			Revocable:      a.Revocable,
			RefUID:         a.RefUID,
			Data:           data,
			Value:          new(big.Int),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("abi encode attest request: %w", err)
	}
	return append(append([]byte{}, attestSelector...), packed...), nil
}

// Attest submits a to the chain and returns the submission receipt. The
// receipt carries the transaction hash; the attestation UID is assigned by
// the contract and becomes visible once an indexer picks the event up.
func (r *Registrar) Attest(ctx context.Context, a *types.UnsignedAttestation) (*types.OnchainReceipt, error) {
	calldata, err := r.BuildAttestCalldata(a)
	if err != nil {
		return nil, err
	}
	txHash, err := r.submitter.SubmitAttestation(ctx, r.contract, calldata)
	if err != nil {
		return nil, types.WrapError(types.KindRegistration, "eas", "submitting attestation", err)
	}
	r.logger.Info("attestation submitted",
		zap.String("chain", r.chain),
		zap.String("contract", r.contract.Hex()),
		zap.String("tx_hash", txHash.Hex()),
		zap.String("location_type", a.Location.LocationType))
	return &types.OnchainReceipt{
		TxHash:   txHash,
		Chain:    r.chain,
		Contract: r.contract,
	}, nil
}
