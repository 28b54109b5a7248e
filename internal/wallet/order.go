package wallet

import (
	"math/big"
	"strconv"
	"strings"
)

// Defaults applied to empty order form fields.
const (
	DefaultRepeats      = 1
	DefaultFeeRate      = 1
	DefaultDivisibility = 0
	DefaultSymbol       = "¤"
	DefaultPremine      = "0"
)

// OrderForm is the raw, user-typed mint/etch form. Every field is text so the
// same form can come from flags, a TUI or a JSON body.
type OrderForm struct {
	Action       string `json:"action"`
	RuneName     string `json:"runeName"`
	Repeats      string `json:"repeats,omitempty"`
	FeeRate      string `json:"feeRate,omitempty"`
	Divisibility string `json:"divisibility,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	Premine      string `json:"premine,omitempty"`
	IsMintable   string `json:"isMintable,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Cap          string `json:"cap,omitempty"`
}

// BuildOrder validates the form against the connected addresses and fills in
// defaults for empty fields. Non-empty fields that do not parse are errors.
func BuildOrder(form OrderForm, addrs Addresses, network string) (Order, error) {
	if _, err := ParseAction(form.Action); err != nil {
		return Order{}, err
	}
	if addrs.Ordinals.Address == "" || addrs.Payment.Address == "" {
		return Order{}, ErrNotConnected
	}
	order, err := parseForm(form)
	if err != nil {
		return Order{}, err
	}
	switch order.Kind {
	case Mint:
		order.Mint.DestinationAddress = addrs.Ordinals.Address
		order.Mint.RefundAddress = addrs.Payment.Address
		order.Mint.Network = network
	case Etch:
		order.Etch.DestinationAddress = addrs.Ordinals.Address
		order.Etch.RefundAddress = addrs.Payment.Address
		order.Etch.Network = network
	}
	return order, nil
}

// CheckForm reports the first problem with form without needing a wallet.
func CheckForm(form OrderForm) error {
	_, err := parseForm(form)
	return err
}

func parseForm(form OrderForm) (Order, error) {
	kind, err := ParseAction(form.Action)
	if err != nil {
		return Order{}, err
	}
	name := strings.TrimSpace(form.RuneName)
	if name == "" {
		return Order{}, &FormError{Field: "runeName", Reason: "required"}
	}
	feeRate, err := positiveInt("feeRate", form.FeeRate, DefaultFeeRate)
	if err != nil {
		return Order{}, err
	}

	if kind == Mint {
		repeats, err := positiveInt("repeats", form.Repeats, DefaultRepeats)
		if err != nil {
			return Order{}, err
		}
		return Order{Kind: Mint, Mint: &MintParams{
			RuneName: name,
			Repeats:  repeats,
			FeeRate:  feeRate,
		}}, nil
	}

	divisibility := DefaultDivisibility
	if s := strings.TrimSpace(form.Divisibility); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Order{}, &FormError{Field: "divisibility", Reason: "must be a non-negative integer"}
		}
		divisibility = n
	}
	symbol := form.Symbol
	if symbol == "" {
		symbol = DefaultSymbol
	}
	premine, err := amount("premine", form.Premine)
	if err != nil {
		return Order{}, err
	}
	if premine == "" {
		premine = DefaultPremine
	}
	amt, err := amount("amount", form.Amount)
	if err != nil {
		return Order{}, err
	}
	capacity, err := amount("cap", form.Cap)
	if err != nil {
		return Order{}, err
	}

	p := &EtchParams{
		RuneName:     name,
		Divisibility: divisibility,
		Symbol:       symbol,
		Premine:      premine,
		IsMintable:   form.IsMintable == "true",
		FeeRate:      feeRate,
	}
	if amt != "" || capacity != "" {
		p.Terms = &EtchTerms{Amount: amt, Cap: capacity}
	}
	return Order{Kind: Etch, Etch: p}, nil
}

// ParseAction maps a form action to its OrderKind; empty means mint.
func ParseAction(action string) (OrderKind, error) {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "", string(Mint):
		return Mint, nil
	case string(Etch):
		return Etch, nil
	}
	return "", &FormError{Field: "action", Reason: "must be mint or etch"}
}

func positiveInt(field, raw string, def int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, &FormError{Field: field, Reason: "must be a positive integer"}
	}
	return n, nil
}

// amount accepts an arbitrarily large non-negative integer; rune supplies
// routinely exceed 64 bits.
func amount(field, raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok || n.Sign() < 0 {
		return "", &FormError{Field: field, Reason: "must be a non-negative integer"}
	}
	return n.String(), nil
}
