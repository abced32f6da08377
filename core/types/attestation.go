// Package types holds the shared payload, record, and error types of the
// GeoAttest SDK. It sits at the bottom of the dependency graph so the
// registry, converter, and collaborator packages can share vocabulary
// without importing each other.
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// DefaultSRS is the spatial reference system attestations carry unless the
// caller overrides it. All built-in location formats produce WGS84
// longitude/latitude ordinates.
const DefaultSRS = "EPSG:4326"

// Warning codes attached to conversion results. Warnings are advisory;
// conversion never fails because of one.
const (
	WarnOrdinateCount  = "ordinate_count"
	WarnValueDrift     = "value_drift"
	WarnRepresentation = "representation"
)

// ConversionWarning records a coordinate integrity finding made while
// converting a location between formats, such as a dropped elevation
// ordinate or a value that changed under the target format's encoding.
type ConversionWarning struct {
	// Code is one of the Warn* constants.
	Code string
	// Ordinate is the index into the flattened coordinate stream the
	// finding applies to, or -1 when the finding is not positional.
	Ordinate int
	// Source and Converted hold the textual forms that disagreed, when
	// the finding is positional.
	Source    string
	Converted string
	Detail    string
}

// LocationPayload is a conversion product ready for semantic use: a
// canonical location string, the format it is encoded in, and the integrity
// findings accumulated on the way. It has passed extension validation but no
// chain-side checks.
type LocationPayload struct {
	// Location is the canonical string form produced by the format's
	// extension. Identical geometry always yields identical bytes.
	Location string
	// LocationType is the format identifier, possibly compound
	// (e.g. "geojson-point").
	LocationType string
	Warnings     []ConversionWarning
}

// MediaAttachment is one validated media object attached to an attestation.
// Data is the standard-base64 payload without a data-URI prefix.
type MediaAttachment struct {
	MimeType string
	Data     string
}

// UnsignedAttestation is a fully assembled attestation payload awaiting a
// signature or onchain submission. Field layout follows the GeoAttest v1
// schema plus the EAS request envelope (recipient, expiration, revocability,
// reference UID).
type UnsignedAttestation struct {
	// EventTimestamp is when the attested event happened, in unix seconds.
	// Distinct from the chain's notion of when the attestation lands.
	EventTimestamp uint64
	SRS            string
	Location       LocationPayload
	Media          []MediaAttachment
	Memo           string

	Recipient      common.Address
	ExpirationTime uint64
	Revocable      bool
	RefUID         common.Hash
}

// MediaTypes returns the MIME strings of the attachments in order.
func (a *UnsignedAttestation) MediaTypes() []string {
	out := make([]string, len(a.Media))
	for i, m := range a.Media {
		out[i] = m.MimeType
	}
	return out
}

// MediaData returns the base64 payloads of the attachments in order.
func (a *UnsignedAttestation) MediaData() []string {
	out := make([]string, len(a.Media))
	for i, m := range a.Media {
		out[i] = m.Data
	}
	return out
}

// Signature is a 65-byte secp256k1 signature split into its components.
// V is always 27 or 28.
type Signature struct {
	R common.Hash
	S common.Hash
	V uint8
}

// Bytes returns the signature as [R || S || V].
func (s Signature) Bytes() []byte {
	out := make([]byte, 65)
	copy(out[:32], s.R[:])
	copy(out[32:64], s.S[:])
	out[64] = s.V
	return out
}

// SignatureFromBytes splits a 65-byte [R || S || V] signature.
func SignatureFromBytes(raw []byte) (Signature, error) {
	if len(raw) != 65 {
		return Signature{}, NewError(KindValidation, "signature", "signature must be 65 bytes")
	}
	var sig Signature
	copy(sig.R[:], raw[:32])
	copy(sig.S[:], raw[32:64])
	sig.V = raw[64]
	return sig, nil
}

// OffchainAttestation is a signed attestation that lives off the chain. Its
// UID is content-derived, so two attestations with identical fields and salt
// share a UID.
type OffchainAttestation struct {
	Version uint16
	UID     common.Hash
	Schema  common.Hash

	Recipient      common.Address
	Time           uint64
	ExpirationTime uint64
	Revocable      bool
	RefUID         common.Hash
	// Data is the ABI-encoded GeoAttest schema payload.
	Data []byte
	Salt common.Hash

	Attester          common.Address
	ChainID           uint64
	VerifyingContract common.Address
	Signature         Signature

	// Payload retains the pre-encoding form for callers that want to
	// inspect locations or media without ABI-decoding Data.
	Payload *UnsignedAttestation
}

// OnchainReceipt reports a registrar submission.
type OnchainReceipt struct {
	UID      common.Hash
	TxHash   common.Hash
	Chain    string
	Contract common.Address
}

// AttestationRecord is one attestation as returned by the indexer API.
// String fields stay in their wire encoding (hex for addresses and UIDs);
// Properties carries fields this SDK version does not model.
type AttestationRecord struct {
	UID            string         `json:"uid" mapstructure:"uid"`
	Chain          string         `json:"chain" mapstructure:"chain"`
	Attester       string         `json:"attester" mapstructure:"attester"`
	Recipient      string         `json:"recipient" mapstructure:"recipient"`
	EventTimestamp uint64         `json:"event_timestamp" mapstructure:"event_timestamp"`
	SRS            string         `json:"srs" mapstructure:"srs"`
	LocationType   string         `json:"location_type" mapstructure:"location_type"`
	Location       string         `json:"location" mapstructure:"location"`
	MediaType      []string       `json:"media_type" mapstructure:"media_type"`
	MediaData      []string       `json:"media_data" mapstructure:"media_data"`
	Memo           string         `json:"memo" mapstructure:"memo"`
	Revocable      bool           `json:"revocable" mapstructure:"revocable"`
	Revoked        bool           `json:"revoked" mapstructure:"revoked"`
	TxHash         string         `json:"tx_hash" mapstructure:"tx_hash"`
	TimeCreated    uint64         `json:"time_created" mapstructure:"time_created"`
	Properties     map[string]any `json:"-" mapstructure:",remain"`
}
