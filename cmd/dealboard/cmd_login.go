package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"deal-board/internal/client"
	"deal-board/internal/dto"
	"deal-board/internal/metrics"
	"deal-board/internal/response"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the CRM and print the session token",
		Long: `Signs in with email and password and prints the bearer token on stdout,
so it can be exported for later commands:

  export CRM_API_TOKEN=$(dealboard login --email me@example.com)

The password is read from CRM_PASSWORD when --password is not given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("CRM_PASSWORD")
			}
			if email == "" || password == "" {
				return response.NewValidationError("Email and password are required", "")
			}

			api := a.newClient(metrics.NewWithRegistry(prometheus.NewRegistry(), a.logger))
			result, err := api.Login(cmd.Context(), dto.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}
			if !result.Success {
				return response.NewAppError(response.ErrCodeUnauthorized, result.Message, "")
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var req dto.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a CRM account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				req.Password = os.Getenv("CRM_PASSWORD")
			}
			return a.runAuth(cmd, func(api client.AuthClient) (*dto.AuthResult, error) {
				return api.Register(cmd.Context(), req)
			})
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "Account password")
	return cmd
}

func newForgotPasswordCmd(a *app) *cobra.Command {
	var req dto.ForgotPasswordRequest

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Ask the CRM to send a password reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuth(cmd, func(api client.AuthClient) (*dto.AuthResult, error) {
				return api.ForgotPassword(cmd.Context(), req)
			})
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Account email")
	return cmd
}

func newResetPasswordCmd(a *app) *cobra.Command {
	var req dto.ResetPasswordRequest

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with the token from the reset link",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAuth(cmd, func(api client.AuthClient) (*dto.AuthResult, error) {
				return api.ResetPassword(cmd.Context(), req)
			})
		},
	}

	cmd.Flags().StringVar(&req.Token, "token", "", "Reset token")
	cmd.Flags().StringVar(&req.Password, "password", "", "New password")
	return cmd
}

// runAuth calls one pass-through auth endpoint and prints its message
func (a *app) runAuth(cmd *cobra.Command, call func(api client.AuthClient) (*dto.AuthResult, error)) error {
	result, err := call(a.newClient(metrics.NewWithRegistry(prometheus.NewRegistry(), a.logger)))
	if err != nil {
		return err
	}
	if !result.Success {
		return response.NewValidationError(result.Message, "")
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	return nil
}
