package eas

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoattest/sdk-go/core/types"
)

// Well-known development key; never holds funds.
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

const testChainID = 11155111

var testContract = common.HexToAddress("0xC2679fBD37d54388Ce493F1DB75320D236e1815e")

func newTestSigner(t *testing.T) *OffchainSigner {
	t.Helper()
	fixed := time.Unix(1714000000, 0)
	s, err := NewOffchainSigner(testKeyHex, testChainID, testContract, DefaultSchemaUID(),
		WithTimeSource(func() time.Time { return fixed }))
	require.NoError(t, err)
	return s
}

func TestSignerAddress(t *testing.T) {
	s := newTestSigner(t)
	require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), s.Address())
}

func TestSignOffchainWithSaltIsDeterministic(t *testing.T) {
	s := newTestSigner(t)
	salt := common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001")

	first, err := s.SignOffchainWithSalt(context.Background(), sampleAttestation(), salt)
	require.NoError(t, err)
	second, err := s.SignOffchainWithSalt(context.Background(), sampleAttestation(), salt)
	require.NoError(t, err)

	require.Equal(t, first.UID, second.UID)
	require.Equal(t, first.Signature, second.Signature)
}

func TestSignOffchainPopulatesEnvelope(t *testing.T) {
	s := newTestSigner(t)

	att, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)

	require.Equal(t, OffchainVersion, att.Version)
	require.Equal(t, DefaultSchemaUID(), att.Schema)
	require.Equal(t, s.Address(), att.Attester)
	require.Equal(t, uint64(testChainID), att.ChainID)
	require.Equal(t, testContract, att.VerifyingContract)
	require.Equal(t, uint64(1714000000), att.Time)
	require.NotEqual(t, common.Hash{}, att.UID)
	require.NotEmpty(t, att.Data)
	require.NotNil(t, att.Payload)
	assert.Contains(t, []uint8{27, 28}, att.Signature.V)
}

func TestSignOffchainRandomSaltsDiffer(t *testing.T) {
	s := newTestSigner(t)

	first, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)
	second, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)

	require.NotEqual(t, first.Salt, second.Salt)
	require.NotEqual(t, first.UID, second.UID)
}

func TestVerifyOffchain(t *testing.T) {
	s := newTestSigner(t)

	att, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)
	require.NoError(t, VerifyOffchain(att))
}

func TestVerifyOffchainDetectsTampering(t *testing.T) {
	s := newTestSigner(t)

	att, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)

	tampered := *att
	tampered.Time++
	err = VerifyOffchain(&tampered)
	require.Error(t, err)
	require.Contains(t, err.Error(), "uid mismatch")
}

func TestVerifyOffchainDetectsWrongAttester(t *testing.T) {
	s := newTestSigner(t)

	att, err := s.SignOffchain(context.Background(), sampleAttestation())
	require.NoError(t, err)

	// The UID does not cover the attester, so only signature recovery
	// catches an impersonation.
	att.Attester = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	err = VerifyOffchain(att)
	require.Error(t, err)
	require.Contains(t, err.Error(), "recovers to")
}

func TestSignOffchainHonorsContext(t *testing.T) {
	s := newTestSigner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SignOffchain(ctx, sampleAttestation())
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewOffchainSignerRejectsBadKey(t *testing.T) {
	_, err := NewOffchainSigner("not-a-key", testChainID, testContract, DefaultSchemaUID())
	require.Error(t, err)
	require.True(t, types.IsKind(err, types.KindConfig))

	_, err = NewOffchainSignerFromKey(nil, testChainID, testContract, DefaultSchemaUID())
	require.Error(t, err)
}

func TestSignerAcceptsPrefixedKey(t *testing.T) {
	s, err := NewOffchainSigner("0x"+testKeyHex, testChainID, testContract, DefaultSchemaUID())
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"), s.Address())
}
