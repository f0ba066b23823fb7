package main

import (
	"fmt"
	"strings"

	account "github.com/goliatone/go-customer-account"
	"github.com/goliatone/go-customer-account/repository"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Apply the versioned schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		group, err := repository.Migrate(cmd.Context(), app.db)
		if err != nil {
			return err
		}
		if group.IsZero() {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated to %s\n", group)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Register a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		password, _ := cmd.Flags().GetString("password")
		useHashid, _ := cmd.Flags().GetBool("hashid")

		handler := account.NewRegisterCustomerHandler(app.manager)
		return handler.Execute(cmd.Context(), account.RegisterCustomerMessage{
			FirstName: first,
			LastName:  last,
			Email:     args[0],
			Password:  password,
			WebsiteID: website(cmd),
			UseHashid: useHashid,
			OnResponse: func(c *account.Customer) {
				fmt.Fprintf(cmd.OutOrStdout(), "Customer %s registered (%s)\n", c.ID, c.State)
			},
		})
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate a customer and open a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")

		customer, session, err := app.manager.Login(cmd.Context(), args[0], password, website(cmd))
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Customer %s logged in, session %s\n", customer.ID, session.ID)
		return nil
	},
}

var changePasswordCmd = &cobra.Command{
	Use:   "change-password <email>",
	Short: "Change a customer password",
	Long:  "Change a customer password. With --session the session is rotated and kept, every other session is dropped.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetString("current")
		next, _ := cmd.Flags().GetString("new")
		sessionID, _ := cmd.Flags().GetString("session")

		ctx := cmd.Context()
		if sessionID != "" {
			session, err := app.manager.Sessions().Get(ctx, sessionID)
			if err != nil {
				return err
			}
			ctx = account.WithSession(ctx, session)
		}

		rotated, err := app.manager.ChangePassword(ctx, args[0], current, next, website(cmd))
		if err != nil {
			return err
		}

		if rotated != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Password changed, new session %s\n", rotated.ID)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Password changed, all sessions dropped")
		return nil
	},
}

var activateCmd = &cobra.Command{
	Use:   "activate <email|customer-id> <key>",
	Short: "Activate a pending account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg := account.AccountActivationMessage{
			ConfirmationKey: args[1],
			WebsiteID:       website(cmd),
			OnResponse: func(resp *account.AccountActivationResponse) {
				fmt.Fprintf(cmd.OutOrStdout(), "Customer %s is %s\n", resp.Customer.ID, resp.State)
			},
		}

		if id, err := uuid.Parse(args[0]); err == nil {
			msg.CustomerID = id
		} else {
			msg.Email = args[0]
		}

		return account.NewAccountActivationHandler(app.manager).Execute(cmd.Context(), msg)
	},
}

var resendConfirmationCmd = &cobra.Command{
	Use:   "resend-confirmation <email>",
	Short: "Send the confirmation key again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.manager.ResendConfirmation(cmd.Context(), args[0], website(cmd))
	},
}

var emailAvailableCmd = &cobra.Command{
	Use:   "email-available <email>",
	Short: "Check whether an email is free in the website scope",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ok, err := app.manager.IsEmailAvailable(cmd.Context(), args[0], website(cmd))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ok)
		return nil
	},
}

var addressesCmd = &cobra.Command{
	Use:   "addresses <customer-id>",
	Short: "Show the default billing and shipping addresses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return account.NewInvalidInputError("customerId", args[0])
		}

		billing, err := app.manager.GetDefaultBillingAddress(cmd.Context(), id)
		if err != nil {
			return err
		}
		shipping, err := app.manager.GetDefaultShippingAddress(cmd.Context(), id)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), print.MaybePrettyJSON(map[string]any{
			"billing":  addressSummary(billing),
			"shipping": addressSummary(shipping),
		}))
		return nil
	},
}

func addressSummary(a *account.Address) map[string]any {
	if a == nil {
		return nil
	}
	return map[string]any{
		"id":        a.ID,
		"name":      strings.TrimSpace(a.FirstName + " " + a.LastName),
		"company":   a.Company,
		"street":    a.StreetLine(),
		"city":      a.City,
		"region":    a.Region,
		"postcode":  a.Postcode,
		"country":   a.CountryID,
		"telephone": a.E164Telephone(),
	}
}

func init() {
	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("password", "", "password, a random one is set when empty")
	registerCmd.Flags().Bool("hashid", false, "derive the customer id from website and email")

	loginCmd.Flags().String("password", "", "password")
	loginCmd.MarkFlagRequired("password")

	changePasswordCmd.Flags().String("current", "", "current password")
	changePasswordCmd.Flags().String("new", "", "new password")
	changePasswordCmd.Flags().String("session", "", "session to keep, rotated")
	changePasswordCmd.MarkFlagRequired("current")
	changePasswordCmd.MarkFlagRequired("new")

	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(changePasswordCmd)
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(resendConfirmationCmd)
	rootCmd.AddCommand(emailAvailableCmd)
	rootCmd.AddCommand(addressesCmd)
}
