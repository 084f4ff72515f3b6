package gate

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// AccountActions performs the account maintenance calls of the login
// collaborator.
type AccountActions interface {
	AcceptInvitation(ctx context.Context, token, password string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ForgotPasswordPayload starts a password reset.
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (p ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ResetPasswordPayload finalizes a password reset.
type ResetPasswordPayload struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirmPassword"`
}

// Validate will validate the payload
func (p ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 200)),
		validation.Field(&p.ConfirmPassword, validation.Required, validation.In(p.Password).Error("passwords do not match")),
	)
}

// AcceptInvitationPayload verifies an invited account. Password is optional
// for invitations that already carry one.
type AcceptInvitationPayload struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (p AcceptInvitationPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Length(8, 200)),
	)
}

// ForgotPassword asks the collaborator to send a reset link. A rejected
// address gets the same answer as an accepted one.
func (h *HTTPController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)
	if ok, err := h.parseAccountPayload(c, payload); !ok {
		return err
	}

	if err := h.Accounts.ForgotPassword(c.UserContext(), payload.Email); err != nil && !errors.IsAuth(err) {
		return h.accountFailure(c, "forgot_password", err)
	}

	h.record(c, ActivityEvent{
		EventType: ActivityEventPasswordResetRequest,
		Metadata:  map[string]any{"email": payload.Email},
	})
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "If the address belongs to an account, a reset link is on its way",
	})
}

// ResetPassword sets a new password from a reset token.
func (h *HTTPController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)
	if ok, err := h.parseAccountPayload(c, payload); !ok {
		return err
	}

	if err := h.Accounts.ResetPassword(c.UserContext(), payload.Token, payload.Password); err != nil {
		return h.accountFailure(c, "reset_password", err)
	}

	h.record(c, ActivityEvent{EventType: ActivityEventPasswordReset})
	return c.JSON(fiber.Map{"redirect": h.Routes.SignIn})
}

// AcceptInvitation verifies an invited account.
func (h *HTTPController) AcceptInvitation(c *fiber.Ctx) error {
	payload := new(AcceptInvitationPayload)
	if ok, err := h.parseAccountPayload(c, payload); !ok {
		return err
	}

	if err := h.Accounts.AcceptInvitation(c.UserContext(), payload.Token, payload.Password); err != nil {
		return h.accountFailure(c, "accept_invitation", err)
	}

	h.record(c, ActivityEvent{EventType: ActivityEventInvitationAccepted})
	return c.JSON(fiber.Map{"redirect": h.Routes.SignIn})
}

type validatable interface {
	Validate() error
}

// parseAccountPayload reports false after writing a 400 response for a
// payload that cannot be parsed or is invalid.
func (h *HTTPController) parseAccountPayload(c *fiber.Ctx, payload validatable) (bool, error) {
	if err := c.BodyParser(payload); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      "failed to parse payload",
			"error_code": ErrInvalidAccountPayload.TextCode,
		})
	}
	if err := payload.Validate(); err != nil {
		h.Logger.Info("account payload rejected", "error", err)
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":      ErrInvalidAccountPayload.Message,
			"error_code": ErrInvalidAccountPayload.TextCode,
			"errors":     validationMessages(err),
		})
	}
	return true, nil
}

func (h *HTTPController) accountFailure(c *fiber.Ctx, operation string, err error) error {
	status, message := fiber.StatusBadGateway, "The service is unavailable, try again later"
	if errors.IsAuth(err) {
		status, message = fiber.StatusBadRequest, "The link is invalid or has expired"
	}
	h.Logger.Info("account action failed", "operation", operation, "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{"error": message})
}
