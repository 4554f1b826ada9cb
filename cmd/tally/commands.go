package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jrsteele09/tally-client/guard"
	"github.com/jrsteele09/tally-client/tallyapi"
	"github.com/spf13/cobra"
)

type appFunc func() *app

func loginCmd(current appFunc) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			ctx := cmd.Context()
			if err := a.require(ctx, guard.RouteLogin); err != nil {
				if !errors.Is(err, errAlreadyLoggedIn) {
					return err
				}
				facts, err := a.sessions.Facts(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Already logged in as %s\n", facts.Email)
				return nil
			}
			if password == "" {
				p, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				password = p
			}

			resp, err := a.api.Login(ctx, email, password)
			if err != nil {
				return err
			}
			written, err := a.sessions.Write(ctx, resp.JWT, resp.Secure)
			if err != nil {
				return err
			}
			if !written {
				return errors.New("session not stored, the backend requires HTTPS for its cookie")
			}
			displayAppname(a.cfg.GetAppName())
			return printFacts(ctx, a)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password, prompted for when empty")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			current().sessions.Remove(cmd.Context())
			return nil
		},
	}
}

func whoamiCmd(current appFunc) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			ctx := cmd.Context()
			if err := a.require(ctx, guard.RouteSettings); err != nil {
				return err
			}
			if !watch {
				return printFacts(ctx, a)
			}
			for f := range a.sessions.Watch(ctx, time.Second) {
				fmt.Fprintf(a.out, "\r%s expires in %s   ", f.Email, f.ExpiresLeft.Truncate(time.Second))
			}
			fmt.Fprintln(a.out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep counting down until interrupted")
	return cmd
}

func registerCmd(current appFunc) *cobra.Command {
	var email, password, code string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account with an invitation code",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteRegister); err != nil {
				return err
			}
			if err := a.api.Register(cmd.Context(), email, password, code); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Registration sent, check your email for the confirmation secret")
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password")
	cmd.Flags().StringVar(&code, "code", "", "Invitation code")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func confirmCmd(current appFunc) *cobra.Command {
	var email, secret string
	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm a registration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteRegisterConfirm); err != nil {
				return err
			}
			return a.api.RegisterConfirm(cmd.Context(), email, secret)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	cmd.Flags().StringVar(&secret, "secret", "", "Registration secret from the confirmation email")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("secret")
	return cmd
}

func resetPasswordCmd(current appFunc) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request a password reset email",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteResetPassword); err != nil {
				return err
			}
			return a.api.ResetPassword(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func passwordCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change the password of the logged in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteSettings); err != nil {
				return err
			}
			p, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "New password: ")
			if err != nil {
				return err
			}
			return a.api.ChangePassword(cmd.Context(), p)
		},
	}
}

func balanceCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RoutePurchases); err != nil {
				return err
			}
			b, err := a.api.AccountBalance(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(a.out)
			fmt.Fprintf(tw, "Payments\t%s\n", b.AmountPayments.StringFixed(2))
			fmt.Fprintf(tw, "Purchases\t%s\n", b.AmountPurchases.StringFixed(2))
			fmt.Fprintf(tw, "Balance\t%s\n", b.AmountTotal.StringFixed(2))
			return tw.Flush()
		},
	}
}

func productsCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteProducts); err != nil {
				return err
			}
			products, err := a.api.Products(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(a.out)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE")
			for _, p := range products {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func purchasesCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "purchases",
		Short: "List your purchases",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RoutePurchases); err != nil {
				return err
			}
			purchases, err := a.api.Purchases(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(a.out)
			fmt.Fprintln(tw, "ID\tWHEN\tPRODUCT\tPRICE")
			for _, p := range purchases {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.PurchaseID, formatTime(p.PurchaseTimestamp), p.ProductName, p.ProductPrice.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func paymentsCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List your payments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RoutePayments); err != nil {
				return err
			}
			payments, err := a.api.Payments(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(a.out)
			fmt.Fprintln(tw, "ID\tWHEN\tAMOUNT")
			for _, p := range payments {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, formatTime(p.Timestamp), p.Amount.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func usersCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users (admin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.require(cmd.Context(), guard.RouteUsers); err != nil {
				return err
			}
			users, err := a.api.Users(cmd.Context())
			if err != nil {
				return err
			}
			tw := table(a.out)
			fmt.Fprintln(tw, "EMAIL\tREGISTERED\tCONFIRMED\tROLES\tBALANCE")
			for _, u := range users {
				roles := make([]string, len(u.Roles))
				for i, r := range u.Roles {
					roles[i] = r.String()
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", u.Email, formatTime(u.RegistrationOn), u.RegistrationComplete, strings.Join(roles, ","), u.AccountBalance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func buyCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "buy <product-id>",
		Short: "Record a purchase of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			if err := a.require(cmd.Context(), guard.RouteQR+"/"+args[0]); err != nil {
				return err
			}
			return a.api.CreatePurchase(cmd.Context(), id)
		},
	}
}

func payCmd(current appFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "pay <amount>",
		Short: "Record a payment into your account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := current()
			amount, err := tallyapi.NewAmount(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if !amount.IsPositive() {
				return fmt.Errorf("amount must be positive, got %s", amount)
			}
			if err := a.require(cmd.Context(), guard.RoutePaymentsNew); err != nil {
				return err
			}
			return a.api.CreatePayment(cmd.Context(), amount)
		},
	}
}

func printFacts(ctx context.Context, a *app) error {
	f, err := a.sessions.Facts(ctx)
	if err != nil {
		return err
	}
	roles := make([]string, len(f.Authorities))
	for i, r := range f.Authorities {
		roles[i] = r.String()
	}
	tw := table(a.out)
	fmt.Fprintf(tw, "Email\t%s\n", f.Email)
	fmt.Fprintf(tw, "Roles\t%s\n", strings.Join(roles, ", "))
	fmt.Fprintf(tw, "Issued\t%s\n", f.IssuedAt.Local().Format(time.RFC1123))
	fmt.Fprintf(tw, "Expires\t%s (in %s)\n", f.ExpiresAt.Local().Format(time.RFC1123), f.ExpiresLeft.Truncate(time.Second))
	return tw.Flush()
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no input")
	}
	return line, nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatTime(t tallyapi.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
