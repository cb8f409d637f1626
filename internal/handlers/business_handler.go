package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/middleware"
	"github.com/loveall/loveall-backend/internal/models"
	"github.com/loveall/loveall-backend/internal/services"
	"github.com/loveall/loveall-backend/pkg/mail"
	"github.com/loveall/loveall-backend/pkg/validator"
)

// BusinessHandler handles merchant registration and the authenticated
// business endpoints: profile, stores, offers, QR codes, transactions
// and feedback.
type BusinessHandler struct {
	otpService      *services.OTPService
	passwordService *services.PasswordService
	registration    *services.RegistrationService
	exportService   *services.ExportService
	credValidator   *validator.CredentialValidator
	businesses      *database.BusinessRepository
	users           *database.UserRepository
	admins          *database.AdminRepository
	stores          *database.StoreRepository
	offers          *database.OfferRepository
	qrCodes         *database.QrCodeRepository
	transactions    *database.TransactionRepository
	feedback        *database.FeedbackRepository
	mailer          mail.Mailer
	logger          *logrus.Logger
}

// NewBusinessHandler creates a new business handler
func NewBusinessHandler(
	otpService *services.OTPService,
	passwordService *services.PasswordService,
	registration *services.RegistrationService,
	exportService *services.ExportService,
	credValidator *validator.CredentialValidator,
	businesses *database.BusinessRepository,
	users *database.UserRepository,
	admins *database.AdminRepository,
	stores *database.StoreRepository,
	offers *database.OfferRepository,
	qrCodes *database.QrCodeRepository,
	transactions *database.TransactionRepository,
	feedback *database.FeedbackRepository,
	mailer mail.Mailer,
	logger *logrus.Logger,
) *BusinessHandler {
	return &BusinessHandler{
		otpService:      otpService,
		passwordService: passwordService,
		registration:    registration,
		exportService:   exportService,
		credValidator:   credValidator,
		businesses:      businesses,
		users:           users,
		admins:          admins,
		stores:          stores,
		offers:          offers,
		qrCodes:         qrCodes,
		transactions:    transactions,
		feedback:        feedback,
		mailer:          mailer,
		logger:          logger,
	}
}

// RegisterBusinessRequest represents the business registration body
type RegisterBusinessRequest struct {
	BusinessName       string `json:"business_name" binding:"required"`
	BusinessEmail      string `json:"business_email" binding:"required"`
	BusinessType       string `json:"business_type"`
	EntityType         string `json:"entity_type"`
	ContactNumber      string `json:"contact_number"`
	GSTIN              string `json:"gstin"`
	TAN                string `json:"tan"`
	OwnerName          string `json:"owner_name"`
	OwnerContactNumber string `json:"owner_contact_number"`
}

// Register handles POST /api/business/register. Nothing is persisted yet:
// the submitted fields wait in the pending store until the OTP confirms.
func (h *BusinessHandler) Register(c *gin.Context) {
	var req RegisterBusinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Business name and email are required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.BusinessEmail)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if h.anyAccountExists(email) {
		respondError(c, http.StatusBadRequest, "An account with this email already exists")
		return
	}

	otp, expiresAt, err := h.otpService.Generate()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate OTP")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	business := models.Business{
		BusinessName:  strings.TrimSpace(req.BusinessName),
		BusinessEmail: email,
	}
	setOptional := func(dst *models.NullString, v string) {
		if v != "" {
			*dst = models.NewNullString(v)
		}
	}
	setOptional(&business.BusinessType, req.BusinessType)
	setOptional(&business.EntityType, req.EntityType)
	setOptional(&business.ContactNumber, req.ContactNumber)
	setOptional(&business.GSTIN, req.GSTIN)
	setOptional(&business.TAN, req.TAN)
	setOptional(&business.OwnerName, req.OwnerName)
	setOptional(&business.OwnerContactNumber, req.OwnerContactNumber)

	h.registration.Put(email, services.PendingBusiness{
		Business:  business,
		OTP:       otp,
		ExpiresAt: expiresAt,
	})

	if err := h.mailer.Send(email, "Verify your business email", mail.OTPBody(otp, h.otpService.ExpiryMinutes())); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to send OTP email")
		respondError(c, http.StatusInternalServerError, "Failed to send OTP")
		return
	}

	respondOK(c, http.StatusOK, "OTP sent to your business email", nil)
}

// VerifyBusinessOTPRequest represents the business verification body
type VerifyBusinessOTPRequest struct {
	BusinessEmail string `json:"business_email" binding:"required"`
	OTP           string `json:"otp" binding:"required"`
}

// VerifyOTP handles POST /api/business/verify-otp. A correct, unexpired
// code promotes the pending registration into a persisted row with
// verified=true and an empty password hash; change-password establishes
// the credential afterwards.
func (h *BusinessHandler) VerifyOTP(c *gin.Context) {
	var req VerifyBusinessOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email and OTP fields should not be empty")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.BusinessEmail)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// Confirm checks the code and consumes the entry under one lock, so
	// a concurrent second confirmation cannot promote twice and the
	// promoted entry is always the one that was checked.
	pending, err := h.registration.Confirm(email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRegistrationOTPMismatch):
			respondError(c, http.StatusUnauthorized, "Incorrect verification code")
		case errors.Is(err, services.ErrRegistrationExpired):
			respondError(c, http.StatusForbidden, "OTP has expired. Please resend the OTP")
		default:
			respondError(c, http.StatusNotFound, "Business not found in the registration process")
		}
		return
	}

	now := time.Now()
	business := pending.Business
	business.BusinessID = uuid.New()
	business.PasswordHash = ""
	business.Verified = true
	business.CreatedAt = now
	business.UpdatedAt = now

	if err := h.businesses.Create(&business); err != nil {
		if database.IsUniqueViolation(err) {
			respondError(c, http.StatusBadRequest, "An account with this email already exists")
			return
		}
		h.logger.WithError(err).Error("failed to create business")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if err := h.mailer.Send(email, "Business Registration Successful", mail.WelcomeBody(business.BusinessName)); err != nil {
		h.logger.WithError(err).WithField("email", email).Error("failed to send confirmation email")
	}

	respondOK(c, http.StatusOK, "Business successfully verified", business)
}

// ChangePasswordRequest represents the business change-password body
type ChangePasswordRequest struct {
	BusinessEmail string `json:"business_email" binding:"required"`
	OTP           string `json:"otp" binding:"required"`
	NewPassword   string `json:"newPassword" binding:"required"`
}

// ChangePassword handles POST /api/business/change-password. This is the
// flow that establishes the password left empty by OTP promotion; it also
// clears the temp_pass flag set by manual verification.
func (h *BusinessHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Email, OTP and new password are required")
		return
	}

	email, err := h.credValidator.ValidateEmail(req.BusinessEmail)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.credValidator.ValidatePassword(req.NewPassword); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	business, err := h.businesses.FindByEmail(email)
	if err != nil {
		respondLookupError(c, err, "Business not found")
		return
	}

	if err := h.otpService.Validate(req.OTP, business.OTP, business.OTPExpirationTime); err != nil {
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

	hash, err := h.passwordService.Hash(req.NewPassword)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if err := h.businesses.UpdatePassword(email, hash); err != nil {
		h.logger.WithError(err).Error("failed to update password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Password changed successfully", nil)
}

// Profile handles POST /api/business/profile.
func (h *BusinessHandler) Profile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondOK(c, http.StatusOK, "", principal.Business)
}

// UpdateBusinessProfileRequest represents the profile update body
type UpdateBusinessProfileRequest struct {
	BusinessName       string `json:"business_name" binding:"required"`
	ContactNumber      string `json:"contact_number"`
	OwnerName          string `json:"owner_name"`
	OwnerContactNumber string `json:"owner_contact_number"`
}

// UpdateProfile handles PUT /api/business/update-profile.
func (h *BusinessHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateBusinessProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Business name is required")
		return
	}

	toNull := func(v string) models.NullString {
		if v == "" {
			return models.NullString{}
		}
		return models.NewNullString(v)
	}

	err := h.businesses.UpdateProfile(
		principal.Business.BusinessID,
		req.BusinessName,
		toNull(req.ContactNumber),
		toNull(req.OwnerName),
		toNull(req.OwnerContactNumber),
	)
	if err != nil {
		h.logger.WithError(err).Error("failed to update business profile")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Profile updated", nil)
}

// ListStores handles GET /api/business/stores.
func (h *BusinessHandler) ListStores(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	stores, err := h.stores.ListByBusiness(principal.Business.BusinessID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list stores")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "", gin.H{
		"business_name":  principal.Business.BusinessName,
		"business_email": principal.Business.BusinessEmail,
		"stores":         stores,
	})
}

// StoreDetails handles GET /api/business/stores/:store_id, the
// ownership-scoped single-store read.
func (h *BusinessHandler) StoreDetails(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid store id")
		return
	}

	store, err := h.stores.FindOwned(storeID, principal.Business.BusinessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.WithError(err).Error("failed to load store")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "", store)
}

// StoreRequest represents the store create/update body
type StoreRequest struct {
	StoreName           string  `json:"store_name" binding:"required"`
	StoreEmail          string  `json:"store_email"`
	Address             string  `json:"address"`
	StoreAddress        string  `json:"store_address"`
	City                string  `json:"city"`
	State               string  `json:"state"`
	ZipCode             string  `json:"zip_code"`
	CategoryID          string  `json:"category_id"`
	Category            string  `json:"category"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	OpeningHours        string  `json:"opening_hours"`
	Logo                string  `json:"logo"`
	ManagerName         string  `json:"manager_name"`
	ManagerContact      string  `json:"manager_contact"`
	PhoneNumber         string  `json:"phone_number"`
	Status              string  `json:"status"`
	BusinessDescription string  `json:"business_description"`
}

func (req *StoreRequest) toStore(businessID uuid.UUID) (*models.Store, error) {
	store := &models.Store{
		BusinessID: businessID,
		StoreName:  strings.TrimSpace(req.StoreName),
	}

	if req.Status != "" {
		status, err := models.ParseStoreStatus(req.Status)
		if err != nil {
			return nil, err
		}
		store.Status = status
	}

	setString := func(dst *models.NullString, v string) {
		if v != "" {
			*dst = models.NewNullString(v)
		}
	}
	setString(&store.StoreEmail, req.StoreEmail)
	setString(&store.Address, req.Address)
	setString(&store.StoreAddress, req.StoreAddress)
	setString(&store.City, req.City)
	setString(&store.State, req.State)
	setString(&store.ZipCode, req.ZipCode)
	setString(&store.CategoryID, req.CategoryID)
	setString(&store.Category, req.Category)
	setString(&store.OpeningHours, req.OpeningHours)
	setString(&store.Logo, req.Logo)
	setString(&store.ManagerName, req.ManagerName)
	setString(&store.ManagerContact, req.ManagerContact)
	setString(&store.PhoneNumber, req.PhoneNumber)
	setString(&store.BusinessDescription, req.BusinessDescription)

	if req.Latitude != 0 || req.Longitude != 0 {
		store.Latitude = models.NewNullFloat64(req.Latitude)
		store.Longitude = models.NewNullFloat64(req.Longitude)
	}

	return store, nil
}

// AddStore handles POST /api/business/stores.
func (h *BusinessHandler) AddStore(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "store_name is required")
		return
	}

	store, err := req.toStore(principal.Business.BusinessID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.stores.Create(store); err != nil {
		h.logger.WithError(err).Error("failed to create store")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusCreated, "Store added successfully", store)
}

// UpdateStore handles PUT /api/business/stores/:store_id.
func (h *BusinessHandler) UpdateStore(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid store id")
		return
	}

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "store_name is required")
		return
	}

	store, err := req.toStore(principal.Business.BusinessID)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	store.StoreID = storeID

	if err := h.stores.Update(store, principal.Business.BusinessID); err != nil {
		if errors.Is(err, database.ErrNotOwned) {
			respondError(c, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.WithError(err).Error("failed to update store")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Store updated successfully", store)
}

// DeleteStore handles DELETE /api/business/stores/:store_id.
func (h *BusinessHandler) DeleteStore(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid store id")
		return
	}

	if err := h.stores.Delete(storeID, principal.Business.BusinessID); err != nil {
		if errors.Is(err, database.ErrNotOwned) {
			respondError(c, http.StatusNotFound, "Store not found")
			return
		}
		h.logger.WithError(err).Error("failed to delete store")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Store deleted successfully", nil)
}

// AddOfferRequest represents the offer creation body
type AddOfferRequest struct {
	StoreID            int64   `json:"store_id" binding:"required"`
	OfferType          string  `json:"offer_type" binding:"required"`
	Description        string  `json:"description"`
	DiscountPercentage float64 `json:"discount_percentage"`
	MinimumPurchase    float64 `json:"minimum_purchase"`
	MaximumDiscount    float64 `json:"maximum_discount"`
	StartDate          string  `json:"start_date"`
	EndDate            string  `json:"end_date"`
	TermsConditions    string  `json:"terms_conditions"`
	Featured           bool    `json:"featured"`
}

// AddOffer handles POST /api/business/add-offer. Store ownership is
// re-verified per request; a mismatch reads the same as a missing store.
func (h *BusinessHandler) AddOffer(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AddOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "store_id and offer_type are required")
		return
	}

	if _, err := h.stores.FindOwned(req.StoreID, principal.Business.BusinessID); err != nil {
		respondLookupError(c, err, "Store not found or unauthorized")
		return
	}

	offer := &models.Offer{
		StoreID:   req.StoreID,
		OfferType: req.OfferType,
		Featured:  req.Featured,
	}
	if req.Description != "" {
		offer.Description = models.NewNullString(req.Description)
	}
	if req.TermsConditions != "" {
		offer.TermsConditions = models.NewNullString(req.TermsConditions)
	}
	if req.DiscountPercentage != 0 {
		offer.DiscountPercentage = models.NewNullFloat64(req.DiscountPercentage)
	}
	if req.MinimumPurchase != 0 {
		offer.MinimumPurchase = models.NewNullFloat64(req.MinimumPurchase)
	}
	if req.MaximumDiscount != 0 {
		offer.MaximumDiscount = models.NewNullFloat64(req.MaximumDiscount)
	}
	if req.StartDate != "" {
		t, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
		offer.StartDate = models.NewNullTime(t)
	}
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		offer.EndDate = models.NewNullTime(t)
	}

	if err := h.offers.Create(offer); err != nil {
		h.logger.WithError(err).Error("failed to create offer")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusCreated, "Offer created successfully", offer)
}

// StoreWithOffers is one element of the your-offers listing. Offers is
// always present, empty for stores without offers.
type StoreWithOffers struct {
	models.Store
	Offers []models.Offer `json:"offers"`
}

// YourOffers handles POST /api/business/your-offers.
func (h *BusinessHandler) YourOffers(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	stores, err := h.stores.ListByBusiness(principal.Business.BusinessID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list stores")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	ids := make([]int64, len(stores))
	for i := range stores {
		ids[i] = stores[i].StoreID
	}

	offersByStore, err := h.stores.OffersForStores(ids)
	if err != nil {
		h.logger.WithError(err).Error("failed to list offers")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	result := make([]StoreWithOffers, len(stores))
	for i := range stores {
		offers := offersByStore[stores[i].StoreID]
		if offers == nil {
			offers = []models.Offer{}
		}
		result[i] = StoreWithOffers{Store: stores[i], Offers: offers}
	}

	respondOK(c, http.StatusOK, "", result)
}

// EditOfferRequest represents the offer edit body
type EditOfferRequest struct {
	OfferID   int64  `json:"offer_id" binding:"required"`
	OfferType string `json:"offer_type" binding:"required"`
	EndDate   string `json:"end_date"`
}

// EditOffer handles PUT /api/business/edit-offer.
func (h *BusinessHandler) EditOffer(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req EditOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "offer_id and offer_type are required")
		return
	}

	var endDate models.NullTime
	if req.EndDate != "" {
		t, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			respondError(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		endDate = models.NewNullTime(t)
	}

	if err := h.offers.Update(req.OfferID, principal.Business.BusinessID, req.OfferType, endDate); err != nil {
		if errors.Is(err, database.ErrNotOwned) {
			respondError(c, http.StatusNotFound, "Offer not found")
			return
		}
		h.logger.WithError(err).Error("failed to update offer")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Offer updated successfully", nil)
}

// DeleteOffer handles DELETE /api/business/delete-offer/:offer_id.
func (h *BusinessHandler) DeleteOffer(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := strconv.ParseInt(c.Param("offer_id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid offer id")
		return
	}

	if err := h.offers.Delete(offerID, principal.Business.BusinessID); err != nil {
		if errors.Is(err, database.ErrNotOwned) {
			respondError(c, http.StatusNotFound, "Offer not found")
			return
		}
		h.logger.WithError(err).Error("failed to delete offer")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Offer deleted successfully", nil)
}

// GetQrCode handles GET /api/business/qr-code/:offerId. Idempotent
// creation: the first call mints the row and answers 201, later calls
// return the same row with 200.
func (h *BusinessHandler) GetQrCode(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := strconv.ParseInt(c.Param("offerId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid offer id")
		return
	}

	offer, err := h.offers.FindByID(offerID)
	if err != nil {
		respondLookupError(c, err, "Offer not found")
		return
	}

	qrCode, err := h.qrCodes.FindBusinessByOffer(offerID)
	if err == nil {
		respondOK(c, http.StatusOK, "", qrCode)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		h.logger.WithError(err).Error("failed to look up QR code")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	payload := models.BusinessQRPayload{
		OfferID:     offer.OfferID,
		OfferType:   offer.OfferType,
		Description: offer.Description.String,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	qrCode = &models.QrCodeBusiness{
		OfferID: offer.OfferID,
		Data:    string(encoded),
	}
	if err := h.qrCodes.CreateBusiness(qrCode); err != nil {
		h.logger.WithError(err).Error("failed to create QR code")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusCreated, "", qrCode)
}

// DeleteQrCode handles DELETE /api/business/qr-code/:offerId. Dependent
// user QR rows go with it via the foreign key cascade.
func (h *BusinessHandler) DeleteQrCode(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := strconv.ParseInt(c.Param("offerId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid offer id")
		return
	}

	if err := h.qrCodes.DeleteBusinessByOffer(offerID); err != nil {
		if errors.Is(err, database.ErrNotOwned) {
			respondError(c, http.StatusNotFound, "QR code not found")
			return
		}
		h.logger.WithError(err).Error("failed to delete QR code")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "QR code deleted successfully", nil)
}

// Transactions handles POST /api/business/transaction: the business's
// transaction history across its stores plus summary metrics.
func (h *BusinessHandler) Transactions(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	rows, err := h.businessTransactions(principal.Business.BusinessID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list transactions")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	metrics := models.TransactionMetrics{}
	for i := range rows {
		metrics.TotalAmount += rows[i].Amount
		switch rows[i].Status {
		case "completed":
			metrics.CompletedTransactions++
		case "pending":
			metrics.PendingTransactions++
		}
	}
	if len(rows) > 0 {
		metrics.AverageAmount = metrics.TotalAmount / float64(len(rows))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": rows,
		"metrics":      metrics,
	})
}

// ExportTransactionsCSV handles GET /api/business/transaction/export.
func (h *BusinessHandler) ExportTransactionsCSV(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	rows, err := h.businessTransactions(principal.Business.BusinessID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list transactions")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.exportService.WriteTransactionsCSV(c.Writer, rows); err != nil {
		h.logger.WithError(err).Error("failed to write CSV")
	}
}

func (h *BusinessHandler) businessTransactions(businessID uuid.UUID) ([]models.TransactionWithStore, error) {
	storeIDs, err := h.stores.StoreIDs(businessID)
	if err != nil {
		return nil, err
	}

	transactions, err := h.transactions.ListByStores(storeIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]models.TransactionWithStore, len(transactions))
	for i := range transactions {
		rows[i] = models.TransactionWithStore{OfferTransaction: transactions[i]}
	}
	return rows, nil
}

// Feedback handles GET /api/business/feedback: all feedback left on the
// business's stores.
func (h *BusinessHandler) Feedback(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.Business == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	storeIDs, err := h.stores.StoreIDs(principal.Business.BusinessID)
	if err != nil {
		h.logger.WithError(err).Error("failed to list store ids")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	rows, err := h.feedback.ListByStores(storeIDs)
	if err != nil {
		h.logger.WithError(err).Error("failed to list feedback")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "", rows)
}

func (h *BusinessHandler) anyAccountExists(email string) bool {
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
