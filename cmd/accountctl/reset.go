package main

import (
	"fmt"

	account "github.com/goliatone/go-customer-account"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Password reset commands",
	Long:  "Request, validate and redeem password reset tokens",
}

var resetRequestCmd = &cobra.Command{
	Use:   "request <email>",
	Short: "Issue a reset token and send the reset link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		template, _ := cmd.Flags().GetString("template")

		handler := account.NewInitializePasswordResetHandler(app.manager)
		handler.Reveal = true

		return handler.Execute(cmd.Context(), account.InitializePasswordResetMessage{
			Email:     args[0],
			Template:  template,
			WebsiteID: website(cmd),
			OnResponse: func(resp *account.InitializePasswordResetResponse) {
				fmt.Fprintf(cmd.OutOrStdout(), "Reset link sent to %s\n", resp.Email)
			},
		})
	},
}

var resetValidateCmd = &cobra.Command{
	Use:   "validate <token>",
	Short: "Check a reset token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		customerID := uuid.Nil
		if raw, _ := cmd.Flags().GetString("customer"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return account.NewInvalidInputError("customerId", raw)
			}
			customerID = id
		}

		ok, err := app.manager.ValidateResetPasswordLinkToken(cmd.Context(), customerID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var resetFinishCmd = &cobra.Command{
	Use:   "finish <token>",
	Short: "Redeem a reset token with a new password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		handler := account.NewFinalizePasswordResetHandler(app.manager).
			WithLogger(account.NewZerologLogger(app.log, "reset"))

		err := handler.Execute(cmd.Context(), account.FinalizePasswordResetMessage{
			Email:     email,
			Token:     args[0],
			Password:  password,
			WebsiteID: website(cmd),
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Password reset")
		return nil
	},
}

func init() {
	resetRequestCmd.Flags().String("template", account.TemplateEmailReset, "email_reset or email_reminder")

	resetValidateCmd.Flags().String("customer", "", "customer id, resolves the token across customers when empty")

	resetFinishCmd.Flags().String("email", "", "customer email, resolves the customer by token when empty")
	resetFinishCmd.Flags().String("password", "", "new password")
	resetFinishCmd.MarkFlagRequired("password")

	resetCmd.AddCommand(resetRequestCmd)
	resetCmd.AddCommand(resetValidateCmd)
	resetCmd.AddCommand(resetFinishCmd)
	rootCmd.AddCommand(resetCmd)
}
