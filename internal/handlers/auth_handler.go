package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/models"
	"github.com/loveall/loveall-backend/internal/services"
	"github.com/loveall/loveall-backend/pkg/jwt"
	"github.com/loveall/loveall-backend/pkg/mail"
	"github.com/loveall/loveall-backend/pkg/validator"
)

// AuthHandler handles the shared authentication endpoints: login, OTP
// issuance, password reset, consumer registration and whoami.
type AuthHandler struct {
	jwtService      *jwt.Service
	otpService      *services.OTPService
	passwordService *services.PasswordService
	credValidator   *validator.CredentialValidator
	users           *database.UserRepository
	businesses      *database.BusinessRepository
	admins          *database.AdminRepository
	mailer          mail.Mailer
	logger          *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	otpService *services.OTPService,
	passwordService *services.PasswordService,
	credValidator *validator.CredentialValidator,
	users *database.UserRepository,
	businesses *database.BusinessRepository,
	admins *database.AdminRepository,
	mailer mail.Mailer,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:      jwtService,
		otpService:      otpService,
		passwordService: passwordService,
		credValidator:   credValidator,
		users:           users,
		businesses:      businesses,
		admins:          admins,
		mailer:          mailer,
		logger:          logger,
	}
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

// RegisterUserRequest represents the consumer registration body
type RegisterUserRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// Login handles POST /api/auth/login. Email resolution tries the consumer
// table first, then business, then admin; the first match handles the
// whole request.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email is required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Password == "" && req.OTP == "" {
		respondError(c, http.StatusBadRequest, "Password or OTP is required")
		return
	}

	if user, err := h.users.FindByEmail(email); err == nil {
		h.loginUser(c, user, &req)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if business, err := h.businesses.FindByEmail(email); err == nil {
		h.loginBusiness(c, business, &req)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if admin, err := h.admins.FindByEmail(email); err == nil {
		h.loginAdmin(c, admin, &req)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondError(c, http.StatusNotFound, "Account not found, please register")
}

func (h *AuthHandler) loginUser(c *gin.Context, user *models.User, req *LoginRequest) {
	if !user.Verified {
		respondError(c, http.StatusForbidden, "Please verify your email first")
		return
	}
	if !h.checkCredentials(c, req, user.PasswordHash, user.OTP, user.OTPExpirationTime) {
		return
	}
	h.issueToken(c, user.UserID, user.Email, models.PrincipalUser)
}

func (h *AuthHandler) loginBusiness(c *gin.Context, business *models.Business, req *LoginRequest) {
	if !business.Verified {
		respondError(c, http.StatusForbidden, "Please verify your email first")
		return
	}
	if !business.ManualVerified {
		respondError(c, http.StatusForbidden, "Your account is pending manual verification")
		return
	}
	if !h.checkCredentials(c, req, business.PasswordHash, business.OTP, business.OTPExpirationTime) {
		return
	}
	h.issueToken(c, business.BusinessID, business.BusinessEmail, models.PrincipalBusiness)
}

func (h *AuthHandler) loginAdmin(c *gin.Context, admin *models.Admin, req *LoginRequest) {
	if !h.checkCredentials(c, req, admin.PasswordHash, admin.OTP, admin.OTPExpirationTime) {
		return
	}
	h.issueToken(c, admin.AdminID, admin.AdminEmail, models.PrincipalAdmin)
}

// checkCredentials verifies either the OTP branch or the password branch.
// It writes the failure response itself and reports whether login may
// proceed.
func (h *AuthHandler) checkCredentials(c *gin.Context, req *LoginRequest, passwordHash string, otp models.NullString, otpExpiry models.NullTime) bool {
	if req.OTP != "" {
		if err := h.otpService.Validate(req.OTP, otp, otpExpiry); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid or expired OTP")
			return false
		}
		return true
	}

	if passwordHash == "" || !h.passwordService.Compare(passwordHash, req.Password) {
		respondError(c, http.StatusUnauthorized, "Incorrect password")
		return false
	}
	return true
}

func (h *AuthHandler) issueToken(c *gin.Context, id uuid.UUID, email string, principalType models.PrincipalType) {
	token, err := h.jwtService.GenerateToken(id, email, string(principalType))
	if err != nil {
		h.logger.WithError(err).Error("failed to issue session token")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Login successful",
		"token":      token,
		"redirectTo": principalType.RedirectPath(),
	})
}

// SendOTPRequest represents the request to send an OTP
type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// SendOTP handles POST /api/auth/send-otp. The code lands on whichever
// account row owns the email, consumer checked before business.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email is required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	otp, expiresAt, err := h.otpService.Generate()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate OTP")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if _, err := h.users.FindByEmail(email); err == nil {
		if err := h.users.SetOTP(email, otp, expiresAt); err != nil {
			h.logger.WithError(err).Error("failed to store OTP")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	} else if _, err := h.businesses.FindByEmail(email); err == nil {
		if err := h.businesses.SetOTP(email, otp, expiresAt); err != nil {
			h.logger.WithError(err).Error("failed to store OTP")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	} else {
		respondError(c, http.StatusNotFound, "Account not found")
		return
	}

	if err := h.mailer.Send(email, "Your verification code", mail.OTPBody(otp, h.otpService.ExpiryMinutes())); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to send OTP email")
		respondError(c, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	respondOK(c, http.StatusOK, "OTP sent to your email", nil)
}

// ForgotPasswordRequest represents the password reset body
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// ForgotPassword handles POST /api/auth/forgot-password. The reset
// accepts the last issued OTP regardless of its age; only the login
// path enforces expiry.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.credValidator.ValidatePassword(req.NewPassword); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := h.passwordService.Hash(req.NewPassword)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if user, err := h.users.FindByEmail(email); err == nil {
		if !h.otpService.Matches(req.OTP, user.OTP) {
			respondError(c, http.StatusUnauthorized, "Invalid OTP")
			return
		}
		if err := h.users.UpdatePassword(email, hash); err != nil {
			h.logger.WithError(err).Error("failed to update password")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	} else if business, err := h.businesses.FindByEmail(email); err == nil {
		if !h.otpService.Matches(req.OTP, business.OTP) {
			respondError(c, http.StatusUnauthorized, "Invalid OTP")
			return
		}
		if err := h.businesses.UpdatePassword(email, hash); err != nil {
			h.logger.WithError(err).Error("failed to update password")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	} else {
		respondError(c, http.StatusNotFound, "Account not found")
		return
	}

	respondOK(c, http.StatusOK, "Password updated successfully", nil)
}

// Register handles POST /api/auth/register for consumers. The row is
// created unverified with an OTP on it; verification flips the flag.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email, password, first name and last name are required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.credValidator.ValidatePassword(req.Password); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.emailTaken(email) {
		respondError(c, http.StatusBadRequest, "An account with this email already exists")
		return
	}

	hash, err := h.passwordService.Hash(req.Password)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	otp, expiresAt, err := h.otpService.Generate()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate OTP")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	now := time.Now()
	user := &models.User{
		UserID:            uuid.New(),
		Email:             email,
		PasswordHash:      hash,
		FirstName:         strings.TrimSpace(req.FirstName),
		LastName:          strings.TrimSpace(req.LastName),
		Verified:          false,
		OTP:               models.NewNullString(otp),
		OTPExpirationTime: models.NewNullTime(expiresAt),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = models.NewNullString(req.PhoneNumber)
	}

	if err := h.users.Create(user); err != nil {
		if database.IsUniqueViolation(err) {
			respondError(c, http.StatusBadRequest, "An account with this email already exists")
			return
		}
		h.logger.WithError(err).Error("failed to create user")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if err := h.mailer.Send(email, "Verify your email", mail.OTPBody(otp, h.otpService.ExpiryMinutes())); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to send OTP email")
	}

	respondOK(c, http.StatusCreated, "Registration successful, check your email for the verification code", nil)
}

// VerifyOTPRequest represents the consumer verification body
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /api/auth/verify-otp for consumers.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.FindByEmail(email)
	if err != nil {
		respondLookupError(c, err, "Account not found")
		return
	}

	if err := h.otpService.Validate(req.OTP, user.OTP, user.OTPExpirationTime); err != nil {
		switch {
		case errors.Is(err, services.ErrNoOTPFound):
			respondError(c, http.StatusNotFound, "No OTP found for this account")
		case errors.Is(err, services.ErrOTPExpired):
			respondError(c, http.StatusForbidden, "OTP has expired")
		default:
			respondError(c, http.StatusUnauthorized, "Invalid OTP")
		}
		return
	}

	if err := h.users.MarkVerified(email); err != nil {
		h.logger.WithError(err).Error("failed to mark user verified")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if err := h.mailer.Send(email, "Welcome!", mail.WelcomeBody(user.FirstName)); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to send welcome email")
	}

	respondOK(c, http.StatusOK, "Email verified successfully", nil)
}

// WhoAmI handles GET /api/auth/whoami. It is guard-free: the handler
// decodes the token itself and cross-checks the claimed type against
// the table that actually holds the id.
func (h *AuthHandler) WhoAmI(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		respondError(c, http.StatusForbidden, "Invalid token")
		return
	}

	claims, err := h.jwtService.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		respondError(c, http.StatusForbidden, "Invalid token")
		return
	}

	principalType, err := models.ParsePrincipalType(claims.Type)
	if err != nil {
		respondError(c, http.StatusForbidden, "Invalid token")
		return
	}

	var found bool
	switch principalType {
	case models.PrincipalUser:
		_, lookupErr := h.users.FindByID(claims.ID)
		found = lookupErr == nil
	case models.PrincipalBusiness:
		_, lookupErr := h.businesses.FindByID(claims.ID)
		found = lookupErr == nil
	case models.PrincipalAdmin:
		_, lookupErr := h.admins.FindByID(claims.ID)
		found = lookupErr == nil
	}
	if !found {
		respondError(c, http.StatusForbidden, "Account no longer exists")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Authenticated",
		"id":         claims.ID,
		"redirectTo": principalType.RedirectPath(),
	})
}

// emailTaken checks whether any principal table already owns the email.
func (h *AuthHandler) emailTaken(email string) bool {
	if _, err := h.users.FindByEmail(email); err == nil {
		return true
	}
	if _, err := h.businesses.FindByEmail(email); err == nil {
		return true
	}
	if _, err := h.admins.FindByEmail(email); err == nil {
		return true
	}
	return false
}
