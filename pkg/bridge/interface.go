package bridge

import "context"

// BridgeClient defines the typed Bridge API operations used by the adapter
type BridgeClient interface {
	// Customer Management
	CreateCustomer(ctx context.Context, req *CreateCustomerRequest, opts *RequestOptions) (*Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*Customer, error)
	UpdateCustomer(ctx context.Context, customerID string, params any, opts *RequestOptions) (*Customer, error)
	ListCustomers(ctx context.Context, params ListParams) (*List, error)

	// KYC
	CustomerKYCLink(ctx context.Context, customerID string) (*Result, error)
	CustomerTOSLink(ctx context.Context, customerID string) (*Result, error)

	// Virtual Accounts
	CreateVirtualAccount(ctx context.Context, customerID string, req *CreateVirtualAccountRequest, opts *RequestOptions) (*VirtualAccount, error)
	GetVirtualAccount(ctx context.Context, customerID, virtualAccountID string) (*VirtualAccount, error)
	DeactivateVirtualAccount(ctx context.Context, customerID, virtualAccountID string) (*VirtualAccount, error)

	// Wallets
	CreateCustomerWallet(ctx context.Context, customerID string, req *CreateWalletRequest, opts *RequestOptions) (*Wallet, error)
	WalletTotalBalances(ctx context.Context) (*Result, error)

	// Health
	Ping(ctx context.Context) error
}

// Ensure Client implements BridgeClient interface
var _ BridgeClient = (*Client)(nil)
