package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List accounts across linked items",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, _, err := apiClient()
		if err != nil {
			return err
		}

		resp, err := api.Accounts(cmd.Context())
		if err != nil {
			return err
		}

		if len(resp.Accounts) == 0 {
			fmt.Println("No linked accounts.")
			return nil
		}
		for _, account := range resp.Accounts {
			fmt.Printf("%-24s  %-12s  %s  (item %s)\n",
				account.Name, account.Subtype, account.Mask, account.ItemID)
		}
		return nil
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "List scored transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, session, err := apiClient()
		if err != nil {
			return err
		}

		resp, err := api.Transactions(cmd.Context(), session.UID)
		if err != nil {
			return err
		}

		for _, txn := range resp.Transactions {
			pending := ""
			if txn.Pending {
				pending = "  (pending)"
			}
			fmt.Printf("%s  %-32s  %10s  score %.0f%s\n",
				txn.Date.Format("2006-01-02"), txn.Merchant,
				txn.Amount.StringFixed(2), txn.Score, pending)
		}
		return nil
	},
}

var paycheckCmd = &cobra.Command{
	Use:   "paycheck",
	Short: "Show spending since the last paycheck",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, session, err := apiClient()
		if err != nil {
			return err
		}

		resp, err := api.PaycheckSpending(cmd.Context(), session.UID)
		if err != nil {
			return err
		}

		if resp.LastPaycheckDate == "" {
			fmt.Println("No paycheck found in the lookback window.")
			return nil
		}
		fmt.Printf("Last paycheck:  %s on %s\n", resp.LastPaycheckAmount, resp.LastPaycheckDate)
		fmt.Printf("Spent since:    %s across %d transactions\n",
			resp.SpentSincePaycheck, len(resp.Transactions))
		return nil
	},
}

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show mean spending scores per month",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, session, err := apiClient()
		if err != nil {
			return err
		}

		resp, err := api.MonthlyScores(cmd.Context(), session.UID)
		if err != nil {
			return err
		}

		for _, month := range resp.Months {
			fmt.Printf("%s  mean score %.1f  (%d transactions)\n",
				month.Month, month.MeanScore, month.Count)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd, transactionsCmd, paycheckCmd, scoresCmd)
}
