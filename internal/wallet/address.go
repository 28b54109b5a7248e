package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

var netParams = map[string]*chaincfg.Params{
	"Mainnet": &chaincfg.MainNetParams,
	"Testnet": &chaincfg.TestNet3Params,
	"Signet":  &chaincfg.SigNetParams,
	"Regtest": &chaincfg.RegressionNetParams,
}

// NetParams maps a configured network name to its chain parameters.
func NetParams(network string) (*chaincfg.Params, error) {
	p, ok := netParams[network]
	if !ok {
		return nil, fmt.Errorf("unknown network %q", network)
	}
	return p, nil
}

// ValidateAddress checks that addr decodes and belongs to network.
func ValidateAddress(addr, network string) error {
	params, err := NetParams(network)
	if err != nil {
		return err
	}
	if addr == "" {
		return fmt.Errorf("empty address")
	}
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return fmt.Errorf("decode %q: %w", addr, err)
	}
	if !decoded.IsForNet(params) {
		return fmt.Errorf("address %q is not a %s address", addr, network)
	}
	return nil
}
