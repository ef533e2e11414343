package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rail-service/bridge_sdk/pkg/bridge"
)

func balancesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show balances held across all wallets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printResult(a.client.WalletTotalBalances(cmd.Context()))
		},
	}
}

func ratesCmd(a *app) *cobra.Command {
	var from, to string

	c := &cobra.Command{
		Use:   "rates",
		Short: "Show the current exchange rate between two currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := bridge.Params{"from": from, "to": to}
			return a.printResult(a.client.ExchangeRates(cmd.Context(), params))
		},
	}

	c.Flags().StringVar(&from, "from", "usd", "source currency")
	c.Flags().StringVar(&to, "to", "eur", "destination currency")
	return c
}

func customerWalletsCmd(a *app) *cobra.Command {
	var params bridge.ListParams

	c := &cobra.Command{
		Use:   "customer-wallets <customer-id>",
		Short: "List the wallets of a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.printResult(a.client.CustomerWallets(cmd.Context(), args[0], params))
		},
	}

	c.Flags().IntVar(&params.Limit, "limit", 0, "page size")
	return c
}

func onboardCmd(a *app) *cobra.Command {
	var req bridge.CreateCustomerWithWalletRequest
	var customerType, chain, walletType string

	c := &cobra.Command{
		Use:   "onboard",
		Short: "Create a customer with a custodial wallet and print its KYC links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Customer.Type = bridge.CustomerType(customerType)
			req.Chain = bridge.PaymentRail(chain)
			req.WalletType = bridge.WalletType(walletType)

			adapter := bridge.NewAdapter(a.client, a.log.Zap())
			resp, err := adapter.CreateCustomerWithWallet(cmd.Context(), &req)
			if err != nil {
				return err
			}
			return a.printValue(resp)
		},
	}

	c.Flags().StringVar(&req.Customer.FirstName, "first-name", "", "customer first name")
	c.Flags().StringVar(&req.Customer.LastName, "last-name", "", "customer last name")
	c.Flags().StringVar(&req.Customer.Email, "email", "", "customer email")
	c.Flags().StringVar(&customerType, "type", string(bridge.CustomerTypeIndividual), "individual or business")
	c.Flags().StringVar(&chain, "chain", string(bridge.PaymentRailEthereum), "wallet chain")
	c.Flags().StringVar(&walletType, "wallet-type", "", "wallet type (defaults to user)")
	_ = c.MarkFlagRequired("email")
	return c
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adapter := bridge.NewAdapter(a.client, a.log.Zap())
			if err := adapter.HealthCheck(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(a.out, "pong")
			return err
		},
	}
}
