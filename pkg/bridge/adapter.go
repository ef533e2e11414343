package bridge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rail-service/bridge_sdk/pkg/security"
)

// Adapter implements onboarding workflows on top of a BridgeClient
type Adapter struct {
	client BridgeClient
	logger *zap.Logger
}

// NewAdapter creates a new Bridge adapter
func NewAdapter(client BridgeClient, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		client: client,
		logger: logger,
	}
}

// Client returns the underlying Bridge client
func (a *Adapter) Client() BridgeClient {
	return a.client
}

// CreateCustomerWithWallet creates a customer and associated wallet in one operation.
// The hosted KYC link is attached when the API already issued one.
func (a *Adapter) CreateCustomerWithWallet(ctx context.Context, req *CreateCustomerWithWalletRequest) (*CreateCustomerWithWalletResponse, error) {
	a.logger.Info("Creating Bridge customer with wallet",
		zap.String("email", security.MaskString(req.Customer.Email)),
		zap.String("chain", string(req.Chain)))

	customerReq := req.Customer
	if customerReq.Type == "" {
		customerReq.Type = CustomerTypeIndividual
	}

	customer, err := a.client.CreateCustomer(ctx, &customerReq, nil)
	if err != nil {
		a.logger.Error("Failed to create Bridge customer", zap.Error(err))
		return nil, err
	}

	walletType := req.WalletType
	if walletType == "" {
		walletType = WalletTypeUser
	}
	walletReq := &CreateWalletRequest{
		Chain:      req.Chain,
		Currency:   CurrencyUSDC,
		WalletType: walletType,
	}

	wallet, err := a.client.CreateCustomerWallet(ctx, customer.ID(), walletReq, nil)
	if err != nil {
		a.logger.Error("Failed to create Bridge wallet",
			zap.String("customer_id", customer.ID()),
			zap.Error(err))
		return nil, err
	}

	a.logger.Info("Successfully created customer and wallet",
		zap.String("customer_id", customer.ID()),
		zap.String("wallet_id", wallet.ID()),
		zap.String("address", security.MaskString(wallet.Address())))

	resp := &CreateCustomerWithWalletResponse{
		Customer: customer,
		Wallet:   wallet,
	}
	if links, err := a.GetKYCLinkForCustomer(ctx, customer.ID()); err == nil {
		resp.KYCLink = links.KYCLink
		resp.TOSLink = links.TOSLink
	} else {
		a.logger.Warn("KYC link not available yet",
			zap.String("customer_id", customer.ID()),
			zap.Error(err))
	}
	return resp, nil
}

// CreateVirtualAccountForCustomer creates a virtual account for a customer
func (a *Adapter) CreateVirtualAccountForCustomer(ctx context.Context, customerID string, req *CreateVirtualAccountRequest) (*VirtualAccount, error) {
	a.logger.Info("Creating Bridge virtual account", zap.String("customer_id", customerID))

	virtualAccount, err := a.client.CreateVirtualAccount(ctx, customerID, req, nil)
	if err != nil {
		a.logger.Error("Failed to create Bridge virtual account",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}

	a.logger.Info("Successfully created virtual account",
		zap.String("customer_id", customerID),
		zap.String("virtual_account_id", virtualAccount.ID()),
		zap.String("status", string(virtualAccount.Status())))

	return virtualAccount, nil
}

// GetCustomerStatus retrieves a customer and maps its status to KYC and onboarding states
func (a *Adapter) GetCustomerStatus(ctx context.Context, customerID string) (*CustomerStatusResponse, error) {
	a.logger.Info("Getting Bridge customer status", zap.String("customer_id", customerID))

	customer, err := a.client.GetCustomer(ctx, customerID)
	if err != nil {
		a.logger.Error("Failed to get Bridge customer",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, err
	}

	status := customer.Status()
	return &CustomerStatusResponse{
		CustomerID:                customer.ID(),
		BridgeStatus:              status,
		KYCStatus:                 kycStatusFor(status),
		OnboardingStatus:          onboardingStatusFor(status),
		HasAcceptedTermsOfService: customer.HasAcceptedTermsOfService(),
		Terminal:                  status.IsTerminal(),
	}, nil
}

// GetKYCLinkForCustomer retrieves the KYC verification and terms of service links
func (a *Adapter) GetKYCLinkForCustomer(ctx context.Context, customerID string) (*KYCLinkResponse, error) {
	a.logger.Info("Getting Bridge KYC link", zap.String("customer_id", customerID))

	kyc, err := linkField(a.client.CustomerKYCLink(ctx, customerID))("kyc_link", "url")
	if err != nil {
		a.logger.Error("Failed to get Bridge KYC link",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("get KYC link failed: %w", err)
	}

	// A missing TOS link is not fatal; some customers accepted it already.
	tos, err := linkField(a.client.CustomerTOSLink(ctx, customerID))("tos_link", "url")
	if err != nil {
		a.logger.Debug("TOS link unavailable", zap.String("customer_id", customerID), zap.Error(err))
	}

	a.logger.Info("Successfully retrieved KYC link",
		zap.String("customer_id", customerID),
		zap.String("link_url", kyc))

	return &KYCLinkResponse{CustomerID: customerID, KYCLink: kyc, TOSLink: tos}, nil
}

// HealthCheck checks Bridge API connectivity
func (a *Adapter) HealthCheck(ctx context.Context) error {
	err := a.client.Ping(ctx)
	if err != nil {
		a.logger.Error("Bridge health check failed", zap.Error(err))
		return fmt.Errorf("bridge health check failed: %w", err)
	}

	a.logger.Info("Bridge health check passed")
	return nil
}

// linkField returns a lookup of the first non-empty string among keys in a
// call's payload.
func linkField(res *Result, err error) func(keys ...string) (string, error) {
	return func(keys ...string) (string, error) {
		if err != nil {
			return "", err
		}
		if res.Error != nil {
			return "", res.Error
		}
		attrs := attributesOf(res.Data)
		for _, k := range keys {
			if v := attrs.String(k); v != "" {
				return v, nil
			}
		}
		return "", &APIError{
			Kind:       ErrorKindAPI,
			StatusCode: res.StatusCode,
			Message:    fmt.Sprintf("response carries none of %v", keys),
		}
	}
}

// KYCStatus is the simplified verification state derived from a customer status
type KYCStatus string

const (
	KYCStatusPending    KYCStatus = "pending"
	KYCStatusProcessing KYCStatus = "processing"
	KYCStatusApproved   KYCStatus = "approved"
	KYCStatusRejected   KYCStatus = "rejected"
)

// OnboardingStatus is the onboarding stage derived from a customer status
type OnboardingStatus string

const (
	OnboardingStatusStarted     OnboardingStatus = "started"
	OnboardingStatusKYCPending  OnboardingStatus = "kyc_pending"
	OnboardingStatusKYCRejected OnboardingStatus = "kyc_rejected"
	OnboardingStatusCompleted   OnboardingStatus = "completed"
)

func kycStatusFor(status CustomerStatus) KYCStatus {
	switch status {
	case CustomerStatusActive:
		return KYCStatusApproved
	case CustomerStatusUnderReview:
		return KYCStatusProcessing
	case CustomerStatusRejected, CustomerStatusOffboarded:
		return KYCStatusRejected
	default:
		return KYCStatusPending
	}
}

func onboardingStatusFor(status CustomerStatus) OnboardingStatus {
	switch status {
	case CustomerStatusActive:
		return OnboardingStatusCompleted
	case CustomerStatusUnderReview, CustomerStatusIncomplete, CustomerStatusAwaitingQuestionnaire, CustomerStatusAwaitingUBO:
		return OnboardingStatusKYCPending
	case CustomerStatusRejected, CustomerStatusOffboarded, CustomerStatusPaused:
		return OnboardingStatusKYCRejected
	default:
		return OnboardingStatusStarted
	}
}

// Request/Response types for adapter layer

type CreateCustomerWithWalletRequest struct {
	Customer   CreateCustomerRequest
	Chain      PaymentRail
	WalletType WalletType
}

type CreateCustomerWithWalletResponse struct {
	Customer *Customer `json:"customer"`
	Wallet   *Wallet   `json:"wallet"`
	KYCLink  string    `json:"kyc_link,omitempty"`
	TOSLink  string    `json:"tos_link,omitempty"`
}

type CustomerStatusResponse struct {
	CustomerID                string           `json:"customer_id"`
	BridgeStatus              CustomerStatus   `json:"bridge_status"`
	KYCStatus                 KYCStatus        `json:"kyc_status"`
	OnboardingStatus          OnboardingStatus `json:"onboarding_status"`
	HasAcceptedTermsOfService bool             `json:"has_accepted_terms_of_service"`
	Terminal                  bool             `json:"terminal"`
}

type KYCLinkResponse struct {
	CustomerID string `json:"customer_id"`
	KYCLink    string `json:"kyc_link"`
	TOSLink    string `json:"tos_link,omitempty"`
}
