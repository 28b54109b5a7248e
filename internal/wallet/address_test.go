package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		network string
		wantErr bool
	}{
		{"mainnet taproot", "bc1p5cyxnuxmeuwuvkwfem96lqzszd02n6xdcjrs20cac6yqjjwudpxqkedrcr", "Mainnet", false},
		{"mainnet segwit v0", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", "Mainnet", false},
		{"mainnet legacy", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "Mainnet", false},
		{"testnet segwit v0", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", "Testnet", false},
		{"testnet taproot", "tb1pqqqqp399et2xygdj5xreqhjjvcmzhxw4aywxecjdzew6hylgvsesf3hn0c", "Testnet", false},
		{"testnet legacy", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", "Testnet", false},
		{"mainnet address on testnet", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", "Testnet", true},
		{"legacy mainnet on testnet", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "Testnet", true},
		{"testnet address on mainnet", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", "Mainnet", true},
		{"bad checksum", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5", "Mainnet", true},
		{"garbage", "not-an-address", "Mainnet", true},
		{"empty", "", "Mainnet", true},
		{"unknown network", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", "Moonnet", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAddress(tt.addr, tt.network)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNetParams(t *testing.T) {
	for _, n := range []string{"Mainnet", "Testnet", "Signet", "Regtest"} {
		p, err := NetParams(n)
		assert.NoError(t, err)
		assert.NotNil(t, p)
	}
	_, err := NetParams("mainnet")
	assert.Error(t, err)
}
