package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	apperrors "supplier-portal/internal/common/errors"
	"supplier-portal/internal/common/supplierapi"
	"supplier-portal/internal/common/validation"
	"supplier-portal/internal/models"
	"supplier-portal/internal/submission"
)

// inlineErrors renders field errors the way the forms show them, one
// "<Label>: <message>" line per field. Other errors pass through.
func inlineErrors(err error) error {
	var ve *supplierapi.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return fieldsError(ve.Fields)
	}
	return err
}

func fieldsError(fields models.FieldErrors) error {
	return apperrors.NewValidationFailedError(submission.FormatValidationErrors(fields), fields)
}

func newLoginCmd(app *cliApp) *cobra.Command {
	var req models.LoginRequest
	var admin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if admin {
				req.UserType = models.UserTypeAdmin
			}
			resp, err := app.client.Login(cmd.Context(), req)
			if err != nil {
				return inlineErrors(err)
			}
			if !resp.HasSession() {
				return fmt.Errorf("login failed: %s", resp.Message)
			}
			app.printf("Signed in as %s\n", resp.UserType)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&admin, "admin", false, "sign in as an administrator")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear every stored session key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sess.Clear(cmd.Context()); err != nil {
				return err
			}
			app.printf("Signed out\n")
			return nil
		},
	}
}

func newRegisterCmd(app *cliApp) *cobra.Command {
	var req models.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a supplier account",
		Long: `Create a supplier account. The business name, email and phone are kept
for the profile wizard and prefill the next "profile submit".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.PasswordConfirmation == "" {
				req.PasswordConfirmation = req.Password
			}
			if fields := req.Validate(validation.ValidateEmail); len(fields) > 0 {
				return fieldsError(fields)
			}
			resp, err := app.client.Register(cmd.Context(), req)
			if err != nil {
				return inlineErrors(err)
			}
			if err := app.sess.SaveVerification(cmd.Context(), resp.Verification); err != nil {
				return err
			}
			app.printf("Registered %s. Verify your account with \"supplierctl otp verify\".\n", resp.Verification.BusinessName)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.BusinessName, "business-name", "", "business name")
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 8 characters")
	cmd.Flags().StringVar(&req.PasswordConfirmation, "password-confirmation", "", "password again (defaults to --password)")
	return cmd
}

func newOTPCmd(app *cliApp) *cobra.Command {
	var email, phone, code string

	otp := &cobra.Command{
		Use:   "otp",
		Short: "Send or verify one-time codes",
	}

	send := &cobra.Command{
		Use:   "send",
		Short: "Send a code to an email or phone",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" && phone == "" {
				return apperrors.NewInvalidInputError("--email or --phone is required")
			}
			resp, err := app.client.SendOTP(cmd.Context(), models.OTPRequest{Email: email, Phone: phone})
			if err != nil {
				return inlineErrors(err)
			}
			app.printf("%s\n", messageOr(resp.Message, "Code sent"))
			return nil
		},
	}

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Verify a code; a returned token signs you in",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.client.VerifyOTP(cmd.Context(), models.VerifyOTPRequest{Email: email, Phone: phone, OTP: code})
			if err != nil {
				return inlineErrors(err)
			}
			if resp.HasSession() {
				app.printf("Verified and signed in\n")
				return nil
			}
			app.printf("%s\n", messageOr(resp.Message, "Verified"))
			return nil
		},
	}
	verify.Flags().StringVar(&code, "code", "", "the code you received")
	_ = verify.MarkFlagRequired("code")

	for _, c := range []*cobra.Command{send, verify} {
		c.Flags().StringVar(&email, "email", "", "email the code was sent to")
		c.Flags().StringVar(&phone, "phone", "", "phone the code was sent to")
		otp.AddCommand(c)
	}
	return otp
}

func messageOr(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
