package config

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/geoattest/sdk-go/core/eas"
)

// ChainPreset describes one supported EAS deployment.
type ChainPreset struct {
	Name        string
	ChainID     uint64
	EASContract common.Address
	SchemaUID   common.Hash
}

// chainPresets holds the supported deployments in documentation order.
// The GeoAttest schema is registered with the same definition on every
// chain, so the schema UID is shared.
var chainPresets = []ChainPreset{
	{
		Name:        "sepolia",
		ChainID:     11155111,
		EASContract: common.HexToAddress("0xC2679fBD37d54388Ce493F1DB75320D236e1815e"),
		SchemaUID:   eas.DefaultSchemaUID(),
	},
	{
		Name:        "base",
		ChainID:     8453,
		EASContract: common.HexToAddress("0x4200000000000000000000000000000000000021"),
		SchemaUID:   eas.DefaultSchemaUID(),
	},
	{
		Name:        "arbitrum",
		ChainID:     42161,
		EASContract: common.HexToAddress("0xbD75f629A22Dc1ceD33dDA0b68c546A1c035c458"),
		SchemaUID:   eas.DefaultSchemaUID(),
	},
	{
		Name:        "celo",
		ChainID:     42220,
		EASContract: common.HexToAddress("0x72E1d8ccf5299fb36fEfD8CC4394B8ef7e98Af92"),
		SchemaUID:   eas.DefaultSchemaUID(),
	},
}

// PresetFor returns the preset for a chain name, case-insensitively.
func PresetFor(name string) (ChainPreset, bool) {
	for _, preset := range chainPresets {
		if strings.EqualFold(preset.Name, name) {
			return preset, true
		}
	}
	return ChainPreset{}, false
}

// SupportedChains lists the preset chain names in documentation order.
func SupportedChains() []string {
	out := make([]string, len(chainPresets))
	for i, preset := range chainPresets {
		out[i] = preset.Name
	}
	return out
}

func supportedChainList() string {
	return strings.Join(SupportedChains(), ", ")
}
