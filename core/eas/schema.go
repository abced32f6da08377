// Package eas encodes, signs, and submits attestations against the
// Ethereum Attestation Service contracts. The schema side turns an
// assembled attestation into ABI-encoded schema data; the signer side
// produces EIP-712 offchain attestations; the registrar side builds
// onchain attest calldata and hands it to a transaction submitter.
package eas

import (
	"fmt"
	"strings"

	gethAbi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/geoattest/sdk-go/core/types"
)

// SchemaString is the registered GeoAttest v1 schema definition. Field
// order is fixed; changing it changes the schema UID.
const SchemaString = "uint64 eventTimestamp,string srs,string locationType,string location,string[] mediaType,string[] mediaData,string memo"

var schemaABIArgs gethAbi.Arguments

func init() {
	uint64Type, err := gethAbi.NewType("uint64", "", nil)
	if err != nil {
		panic(fmt.Sprintf("eas: failed to initialise uint64 ABI type: %v", err))
	}
	stringType, err := gethAbi.NewType("string", "", nil)
	if err != nil {
		panic(fmt.Sprintf("eas: failed to initialise string ABI type: %v", err))
	}
	stringSlice, err := gethAbi.NewType("string[]", "", nil)
	if err != nil {
		panic(fmt.Sprintf("eas: failed to initialise string[] ABI type: %v", err))
	}
	schemaABIArgs = gethAbi.Arguments{
		{Name: "eventTimestamp", Type: uint64Type},
		{Name: "srs", Type: stringType},
		{Name: "locationType", Type: stringType},
		{Name: "location", Type: stringType},
		{Name: "mediaType", Type: stringSlice},
		{Name: "mediaData", Type: stringSlice},
		{Name: "memo", Type: stringType},
	}
}

// SchemaRecord is the decoded form of ABI-encoded schema data.
type SchemaRecord struct {
	EventTimestamp uint64
	SRS            string
	LocationType   string
	Location       string
	MediaType      []string
	MediaData      []string
	Memo           string
}

// EncodeSchemaData ABI-encodes an attestation payload per SchemaString.
func EncodeSchemaData(a *types.UnsignedAttestation) ([]byte, error) {
	if a == nil {
		return nil, types.NewError(types.KindSigning, "eas", "attestation is nil")
	}
	packed, err := schemaABIArgs.Pack(
		a.EventTimestamp,
		a.SRS,
		a.Location.LocationType,
		a.Location.Location,
		a.MediaTypes(),
		a.MediaData(),
		a.Memo,
	)
	if err != nil {
		return nil, fmt.Errorf("abi encode schema data: %w", err)
	}
	return packed, nil
}

// DecodeSchemaData reverses EncodeSchemaData.
func DecodeSchemaData(data []byte) (*SchemaRecord, error) {
	values, err := schemaABIArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("abi decode schema data: %w", err)
	}
	if len(values) != len(schemaABIArgs) {
		return nil, fmt.Errorf("abi decode schema data: expected %d values, got %d", len(schemaABIArgs), len(values))
	}
	rec := &SchemaRecord{}
	fields := []struct {
		name string
		dst  any
	}{
		{"eventTimestamp", &rec.EventTimestamp},
		{"srs", &rec.SRS},
		{"locationType", &rec.LocationType},
		{"location", &rec.Location},
		{"mediaType", &rec.MediaType},
		{"mediaData", &rec.MediaData},
		{"memo", &rec.Memo},
	}
	for i, f := range fields {
		if err := assign(f.dst, values[i]); err != nil {
			return nil, fmt.Errorf("abi decode schema data: field %s: %w", f.name, err)
		}
	}
	return rec, nil
}

func assign(dst, src any) error {
	switch d := dst.(type) {
	case *uint64:
		v, ok := src.(uint64)
		if !ok {
			return fmt.Errorf("expected uint64, got %T", src)
		}
		*d = v
	case *string:
		v, ok := src.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", src)
		}
		*d = v
	case *[]string:
		v, ok := src.([]string)
		if !ok {
			return fmt.Errorf("expected []string, got %T", src)
		}
		*d = v
	default:
		return fmt.Errorf("unsupported destination %T", dst)
	}
	return nil
}

// SchemaUID derives the UID the EAS schema registry assigns to a schema
// definition: keccak256 of the packed schema string, resolver address, and
// revocability flag.
func SchemaUID(schema string, resolver common.Address, revocable bool) common.Hash {
	flag := byte(0)
	if revocable {
		flag = 1
	}
	return crypto.Keccak256Hash([]byte(schema), resolver.Bytes(), []byte{flag})
}

// DefaultSchemaUID is the UID of SchemaString registered with no resolver
// and revocation enabled, the deployment the chain presets point at.
func DefaultSchemaUID() common.Hash {
	return SchemaUID(SchemaString, common.Address{}, true)
}

// FormatSchema renders the schema definition one field per line, for
// display in diagnostic output.
func FormatSchema(schema string) string {
	return strings.Join(strings.Split(schema, ","), "\n")
}
