package bridge

import (
	"time"

	"github.com/shopspring/decimal"
)

// Registered discriminators
const (
	TypeWallet                  = "wallet"
	TypeCustomer                = "customer"
	TypeTransactionHistory      = "transaction_history"
	TypeRewardRate              = "reward_rate"
	TypeKYCLink                 = "kyc_link"
	TypeWebhook                 = "webhook"
	TypeWebhookEvent            = "webhook_event"
	TypeWebhookEventDeliveryLog = "webhook_event_delivery_log"
	TypeVirtualAccount          = "virtual_account"

	// TypeTotalBalance tags wallet total balance rows. It is not registered
	// because balances carry no id and are only built by WalletTotalBalances.
	TypeTotalBalance = "total_balance"
)

// Wallet is a custodial Bridge wallet
type Wallet struct {
	Resource
}

func (w *Wallet) Chain() PaymentRail   { return PaymentRail(w.String("chain")) }
func (w *Wallet) Address() string      { return w.String("address") }
func (w *Wallet) CustomerID() string   { return w.String("customer_id") }
func (w *Wallet) CreatedAt() time.Time { return w.Time("created_at") }
func (w *Wallet) UpdatedAt() time.Time { return w.Time("updated_at") }

// Customer is an individual or business onboarded with Bridge
type Customer struct {
	Resource
}

func (c *Customer) Email() string              { return c.String("email") }
func (c *Customer) FirstName() string          { return c.String("first_name") }
func (c *Customer) LastName() string           { return c.String("last_name") }
func (c *Customer) Status() CustomerStatus     { return CustomerStatus(c.String("status")) }
func (c *Customer) CustomerType() CustomerType { return CustomerType(c.String("type")) }
func (c *Customer) CreatedAt() time.Time       { return c.Time("created_at") }
func (c *Customer) UpdatedAt() time.Time       { return c.Time("updated_at") }

// HasAcceptedTermsOfService reports the customer's TOS flag
func (c *Customer) HasAcceptedTermsOfService() bool {
	return c.values.Bool("has_accepted_terms_of_service")
}

// TransactionHistory is one entry of a wallet's history
type TransactionHistory struct {
	Resource
}

func (t *TransactionHistory) Amount() (decimal.Decimal, bool) { return t.Decimal("amount") }
func (t *TransactionHistory) DeveloperFee() (decimal.Decimal, bool) {
	return t.Decimal("developer_fee")
}
func (t *TransactionHistory) CustomerID() string      { return t.String("customer_id") }
func (t *TransactionHistory) Source() Attributes      { return t.values.Map("source") }
func (t *TransactionHistory) Destination() Attributes { return t.values.Map("destination") }
func (t *TransactionHistory) CreatedAt() time.Time    { return t.Time("created_at") }
func (t *TransactionHistory) UpdatedAt() time.Time    { return t.Time("updated_at") }

// RewardRate is the reward rate of a stablecoin
type RewardRate struct {
	Resource
}

func (r *RewardRate) Rate() (decimal.Decimal, bool) { return r.Decimal("rate") }
func (r *RewardRate) EffectiveAt() time.Time        { return r.Time("effective_at") }
func (r *RewardRate) ExpiresAt() time.Time          { return r.Time("expires_at") }

// KYCLink is a hosted KYC/KYB onboarding link
type KYCLink struct {
	Resource
}

func (k *KYCLink) FullName() string        { return k.String("full_name") }
func (k *KYCLink) Email() string           { return k.String("email") }
func (k *KYCLink) LinkType() CustomerType  { return CustomerType(k.String("type")) }
func (k *KYCLink) KYCLink() string         { return k.String("kyc_link") }
func (k *KYCLink) TOSLink() string         { return k.String("tos_link") }
func (k *KYCLink) KYCStatus() string       { return k.String("kyc_status") }
func (k *KYCLink) TOSStatus() string       { return k.String("tos_status") }
func (k *KYCLink) CustomerID() string      { return k.String("customer_id") }
func (k *KYCLink) RejectionReasons() []any { return k.values.Slice("rejection_reasons") }
func (k *KYCLink) CreatedAt() time.Time    { return k.Time("created_at") }

// Webhook is a registered webhook endpoint
type Webhook struct {
	Resource
}

func (w *Webhook) URL() string               { return w.String("url") }
func (w *Webhook) Status() string            { return w.String("status") }
func (w *Webhook) PublicKey() string         { return w.String("public_key") }
func (w *Webhook) EventCategories() []string { return w.values.Strings("event_categories") }
func (w *Webhook) CreatedAt() time.Time      { return w.Time("created_at") }

// WebhookEvent is one event delivered to a webhook
type WebhookEvent struct {
	Resource
}

func (e *WebhookEvent) APIVersion() string             { return e.String("api_version") }
func (e *WebhookEvent) EventID() string                { return e.String("event_id") }
func (e *WebhookEvent) EventDeveloperID() string       { return e.String("event_developer_id") }
func (e *WebhookEvent) EventCategory() string          { return e.String("event_category") }
func (e *WebhookEvent) EventType() string              { return e.String("event_type") }
func (e *WebhookEvent) EventObjectID() string          { return e.String("event_object_id") }
func (e *WebhookEvent) EventObjectStatus() string      { return e.String("event_object_status") }
func (e *WebhookEvent) EventObject() Attributes        { return e.values.Map("event_object") }
func (e *WebhookEvent) EventObjectChanges() Attributes { return e.values.Map("event_object_changes") }
func (e *WebhookEvent) EventCreatedAt() time.Time      { return e.Time("event_created_at") }

// EventSequence returns the event's position in the developer's stream
func (e *WebhookEvent) EventSequence() int64 {
	n, _ := e.values.Int("event_sequence")
	return n
}

// WebhookEventDeliveryLog records one delivery attempt of an event
type WebhookEventDeliveryLog struct {
	Resource
}

func (l *WebhookEventDeliveryLog) Status() int64 {
	n, _ := l.values.Int("status")
	return n
}
func (l *WebhookEventDeliveryLog) EventID() string      { return l.String("event_id") }
func (l *WebhookEventDeliveryLog) ResponseBody() string { return l.String("response_body") }
func (l *WebhookEventDeliveryLog) CreatedAt() time.Time { return l.Time("created_at") }

// VirtualAccount receives fiat deposits and settles them on chain
type VirtualAccount struct {
	Resource
}

func (v *VirtualAccount) Status() VirtualAccountStatus {
	return VirtualAccountStatus(v.String("status"))
}
func (v *VirtualAccount) CustomerID() string      { return v.String("customer_id") }
func (v *VirtualAccount) CreatedAt() time.Time    { return v.Time("created_at") }
func (v *VirtualAccount) Destination() Attributes { return v.values.Map("destination") }
func (v *VirtualAccount) Balances() []any         { return v.values.Slice("balances") }

func (v *VirtualAccount) DeveloperFeePercent() (decimal.Decimal, bool) {
	return v.Decimal("developer_fee_percent")
}

func (v *VirtualAccount) SourceDepositInstructions() Attributes {
	return v.values.Map("source_deposit_instructions")
}

// TotalBalance is one currency/chain row of the wallets total balance report
type TotalBalance struct {
	Resource
}

func newTotalBalance(attrs Attributes) *TotalBalance {
	return &TotalBalance{Resource: newResource(TypeTotalBalance, attrs)}
}

func (b *TotalBalance) Balance() (decimal.Decimal, bool) { return b.Decimal("balance") }
func (b *TotalBalance) Currency() Currency               { return Currency(b.String("currency")) }
func (b *TotalBalance) Chain() PaymentRail               { return PaymentRail(b.String("chain")) }
func (b *TotalBalance) ContractAddress() string          { return b.String("contract_address") }
