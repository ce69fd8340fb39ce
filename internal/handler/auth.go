package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/qrdine/qrdine-server/internal/config"
	"github.com/qrdine/qrdine-server/internal/repository"
	"github.com/qrdine/qrdine-server/internal/utils"
	"github.com/qrdine/qrdine-server/internal/workflow"
)

// AuthHandler bundles dependencies for the auth endpoints.  Customers
// are passwordless and log in with emailed one-time codes; staff use
// username/password.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Codes  *repository.OTPRepo
	Mailer workflow.Notifier
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, o *repository.OTPRepo, m workflow.Notifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Codes: o, Mailer: m}
}

// ----- DTOs -----

type customerRegisterReq struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}
type emailReq struct {
	Email string `json:"email"`
}
type verifyReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}
type staffLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// issueCode generates a fresh one-time code for the email, supersedes
// every earlier code, and mails it.  When delivery fails the stored
// code is removed again so the address is not left holding a code it
// never received.
func (h *AuthHandler) issueCode(c echo.Context, email string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	code, err := utils.NewOTPCode(6)
	if err != nil {
		return domainError(c, err)
	}
	expiresAt := time.Now().UTC().Add(time.Duration(h.Cfg.OTPTTLMin) * time.Minute)
	if err := h.Codes.Replace(ctx, email, code, expiresAt); err != nil {
		return domainError(c, err)
	}

	if h.Mailer == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "email delivery not configured"})
	}
	body := "Your verification code is " + code + ". It expires in a few minutes."
	if err := h.Mailer.Send(email, "Your login code", body); err != nil {
		log.Printf("auth: otp mail to %s failed: %v", email, err)
		_ = h.Codes.DeleteForEmail(ctx, email)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not send code, try again"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "code sent"})
}

// CustomerRegister creates or refreshes a customer account for the
// email and sends a login code.  Registering an existing email simply
// updates the phone and re-issues a code.
func (h *AuthHandler) CustomerRegister(c echo.Context) error {
	var req customerRegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Email == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/phone required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Users.UpsertCustomer(ctx, req.Email, req.Phone); err != nil {
		return domainError(c, err)
	}
	return h.issueCode(c, req.Email)
}

// CustomerLogin re-issues a login code for an existing customer email.
func (h *AuthHandler) CustomerLogin(c echo.Context) error {
	var req emailReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.Users.GetCustomerByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no account for email"})
		}
		return domainError(c, err)
	}
	return h.issueCode(c, req.Email)
}

// SendOTP re-sends a code for an email that already has an account.
// The route sits behind the rate limiter to keep the mailer from being
// used as a spam relay.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	return h.CustomerLogin(c)
}

// CustomerVerify exchanges a valid one-time code for an access token.
// Expired or mismatching codes are rejected; a used code is deleted so
// it cannot be replayed.
func (h *AuthHandler) CustomerVerify(c echo.Context) error {
	var req verifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/code required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	stored, err := h.Codes.Latest(ctx, req.Email)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no code issued"})
		}
		return domainError(c, err)
	}
	if stored.Expired(time.Now().UTC()) {
		_ = h.Codes.DeleteForEmail(ctx, req.Email)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code expired, request a new one"})
	}
	if stored.Code != req.Code {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid code"})
	}

	u, err := h.Users.GetCustomerByEmail(ctx, req.Email)
	if err != nil {
		return domainError(c, err)
	}
	if err := h.Codes.DeleteForEmail(ctx, req.Email); err != nil {
		return domainError(c, err)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Phone, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: u.ID, Email: u.Email, Phone: u.Phone, Role: u.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// StaffLogin authenticates a chef or admin account by username and
// password.  Unknown accounts and wrong passwords get the same answer.
func (h *AuthHandler) StaffLogin(c echo.Context) error {
	var req staffLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetStaffByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return domainError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Phone, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: u.ID, Email: u.Email, Phone: u.Phone, Role: u.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}
