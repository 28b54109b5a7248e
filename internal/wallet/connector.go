// Package wallet is the boundary to the external bitcoin wallet: address
// retrieval and runes mint/etch orders. Nothing here builds or signs
// transactions; the wallet behind the Connector owns all of that.
package wallet

import "context"

// Connector is the wallet capability injected into the presentation layers.
type Connector interface {
	// Connect asks the wallet for its ordinals and payment addresses. It may
	// block on a user prompt; a dismissed prompt yields an error matching ErrRejected.
	Connect(ctx context.Context) (Addresses, error)
	// SubmitOrder hands a mint or etch order to the wallet.
	SubmitOrder(ctx context.Context, order Order) (Receipt, error)
}

// Address is one wallet address and what the wallet uses it for.
type Address struct {
	Address     string `json:"address"`
	PublicKey   string `json:"publicKey,omitempty"`
	Purpose     string `json:"purpose"`
	AddressType string `json:"addressType,omitempty"`
}

// Addresses is the result of a successful connect.
type Addresses struct {
	Ordinals Address `json:"ordinals"`
	Payment  Address `json:"payment"`
}

// Address purposes as reported by the wallet.
const (
	PurposeOrdinals = "ordinals"
	PurposePayment  = "payment"
)

// OrderKind selects the wallet method an order is sent to.
type OrderKind string

const (
	Mint OrderKind = "mint"
	Etch OrderKind = "etch"
)

// MintParams mints an existing rune to the ordinals address.
type MintParams struct {
	RuneName           string `json:"runeName"`
	Repeats            int    `json:"repeats"`
	FeeRate            int    `json:"feeRate"`
	DestinationAddress string `json:"destinationAddress"`
	RefundAddress      string `json:"refundAddress"`
	Network            string `json:"network"`
}

// EtchTerms are the open-mint terms of an etched rune.
type EtchTerms struct {
	Amount string `json:"amount,omitempty"`
	Cap    string `json:"cap,omitempty"`
}

// EtchParams etches a new rune.
type EtchParams struct {
	RuneName           string     `json:"runeName"`
	Divisibility       int        `json:"divisibility"`
	Symbol             string     `json:"symbol"`
	Premine            string     `json:"premine"`
	IsMintable         bool       `json:"isMintable"`
	Terms              *EtchTerms `json:"terms,omitempty"`
	DestinationAddress string     `json:"destinationAddress"`
	RefundAddress      string     `json:"refundAddress"`
	FeeRate            int        `json:"feeRate"`
	Network            string     `json:"network"`
}

// Order carries exactly one of Mint or Etch, matching Kind.
type Order struct {
	Kind OrderKind
	Mint *MintParams
	Etch *EtchParams
}

// Receipt is what the wallet reports back for an accepted order.
type Receipt struct {
	Kind              OrderKind `json:"kind"`
	OrderID           string    `json:"orderId,omitempty"`
	FundTransactionID string    `json:"fundTransactionId,omitempty"`
	FundingAddress    string    `json:"fundingAddress,omitempty"`
}

// Reference is the most useful id to show the user.
func (r Receipt) Reference() string {
	switch {
	case r.FundTransactionID != "":
		return r.FundTransactionID
	case r.OrderID != "":
		return r.OrderID
	}
	return "n/a"
}
