package bridge

// CustomerType represents the type of customer
type CustomerType string

const (
	CustomerTypeIndividual CustomerType = "individual"
	CustomerTypeBusiness   CustomerType = "business"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive                CustomerStatus = "active"
	CustomerStatusAwaitingQuestionnaire CustomerStatus = "awaiting_questionnaire"
	CustomerStatusAwaitingUBO           CustomerStatus = "awaiting_ubo"
	CustomerStatusIncomplete            CustomerStatus = "incomplete"
	CustomerStatusNotStarted            CustomerStatus = "not_started"
	CustomerStatusOffboarded            CustomerStatus = "offboarded"
	CustomerStatusPaused                CustomerStatus = "paused"
	CustomerStatusRejected              CustomerStatus = "rejected"
	CustomerStatusUnderReview           CustomerStatus = "under_review"
)

// IsTerminal reports whether no further KYC progress is expected
func (s CustomerStatus) IsTerminal() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusRejected, CustomerStatusOffboarded:
		return true
	}
	return false
}

// VirtualAccountStatus represents the status of a virtual account
type VirtualAccountStatus string

const (
	VirtualAccountStatusActivated   VirtualAccountStatus = "activated"
	VirtualAccountStatusDeactivated VirtualAccountStatus = "deactivated"
)

// PaymentRail represents supported blockchain networks
type PaymentRail string

const (
	PaymentRailArbitrum  PaymentRail = "arbitrum"
	PaymentRailAvalanche PaymentRail = "avalanche_c_chain"
	PaymentRailBase      PaymentRail = "base"
	PaymentRailEthereum  PaymentRail = "ethereum"
	PaymentRailOptimism  PaymentRail = "optimism"
	PaymentRailPolygon   PaymentRail = "polygon"
	PaymentRailSolana    PaymentRail = "solana"
	PaymentRailStellar   PaymentRail = "stellar"
	PaymentRailTron      PaymentRail = "tron"
	PaymentRailACH       PaymentRail = "ach"
	PaymentRailWire      PaymentRail = "wire"
	PaymentRailSEPA      PaymentRail = "sepa"
)

// Currency represents supported currencies
type Currency string

const (
	CurrencyUSD   Currency = "usd"
	CurrencyEUR   Currency = "eur"
	CurrencyMXN   Currency = "mxn"
	CurrencyUSDB  Currency = "usdb"
	CurrencyUSDC  Currency = "usdc"
	CurrencyUSDT  Currency = "usdt"
	CurrencyDAI   Currency = "dai"
	CurrencyPYUSD Currency = "pyusd"
	CurrencyEURC  Currency = "eurc"
)

// WalletType represents the type of wallet
type WalletType string

const (
	WalletTypeUser     WalletType = "user"
	WalletTypeTreasury WalletType = "treasury"
)

// Address represents a physical address
type Address struct {
	StreetLine1 string `json:"street_line_1"`
	StreetLine2 string `json:"street_line_2,omitempty"`
	City        string `json:"city"`
	Subdivision string `json:"subdivision,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
	Country     string `json:"country"`
}

// IdentifyingInfo represents identification information
type IdentifyingInfo struct {
	Type           string `json:"type"`
	IssuingCountry string `json:"issuing_country"`
	Number         string `json:"number,omitempty"`
	Description    string `json:"description,omitempty"`
	Expiration     string `json:"expiration,omitempty"`
}

// CreateCustomerRequest represents a request to create a customer
type CreateCustomerRequest struct {
	Type                   CustomerType      `json:"type"`
	FirstName              string            `json:"first_name,omitempty"`
	MiddleName             string            `json:"middle_name,omitempty"`
	LastName               string            `json:"last_name,omitempty"`
	Email                  string            `json:"email,omitempty"`
	Phone                  string            `json:"phone,omitempty"`
	ResidentialAddress     *Address          `json:"residential_address,omitempty"`
	BirthDate              string            `json:"birth_date,omitempty"`
	SignedAgreementID      string            `json:"signed_agreement_id,omitempty"`
	Endorsements           []string          `json:"endorsements,omitempty"`
	IdentifyingInformation []IdentifyingInfo `json:"identifying_information,omitempty"`
}

// CreateWalletRequest represents a request to create a custodial wallet
type CreateWalletRequest struct {
	Chain      PaymentRail `json:"chain"`
	Currency   Currency    `json:"currency,omitempty"`
	WalletType WalletType  `json:"wallet_type,omitempty"`
}

// VirtualAccountSource represents the source configuration
type VirtualAccountSource struct {
	Currency Currency `json:"currency"`
}

// VirtualAccountDestination represents the destination configuration
type VirtualAccountDestination struct {
	Currency       Currency    `json:"currency"`
	PaymentRail    PaymentRail `json:"payment_rail"`
	Address        string      `json:"address,omitempty"`
	BlockchainMemo string      `json:"blockchain_memo,omitempty"`
	BridgeWalletID string      `json:"bridge_wallet_id,omitempty"`
}

// CreateVirtualAccountRequest represents a request to create a virtual account
type CreateVirtualAccountRequest struct {
	Source              VirtualAccountSource      `json:"source"`
	Destination         VirtualAccountDestination `json:"destination"`
	DeveloperFeePercent string                    `json:"developer_fee_percent,omitempty"`
}

// CreateKYCLinkRequest requests a hosted KYC flow for a prospective customer
type CreateKYCLinkRequest struct {
	FullName     string       `json:"full_name"`
	Email        string       `json:"email"`
	Type         CustomerType `json:"type"`
	Endorsements []string     `json:"endorsements,omitempty"`
	RedirectURI  string       `json:"redirect_uri,omitempty"`
}

// CreateWebhookRequest registers a webhook endpoint
type CreateWebhookRequest struct {
	URL             string   `json:"url"`
	EventEpoch      string   `json:"event_epoch,omitempty"`
	EventCategories []string `json:"event_categories,omitempty"`
}

// UpdateWebhookRequest changes a webhook endpoint; empty fields are left untouched
type UpdateWebhookRequest struct {
	URL             string   `json:"url,omitempty"`
	Status          string   `json:"status,omitempty"`
	EventCategories []string `json:"event_categories,omitempty"`
}
