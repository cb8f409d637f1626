package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/middleware"
	"github.com/loveall/loveall-backend/internal/models"
)

// UserHandler handles the consumer-facing endpoints: browsing, redemption,
// profile, card, transactions and feedback.
type UserHandler struct {
	stores       *database.StoreRepository
	offers       *database.OfferRepository
	qrCodes      *database.QrCodeRepository
	transactions *database.TransactionRepository
	feedback     *database.FeedbackRepository
	users        *database.UserRepository
	charity      *database.CharityRepository
	logger       *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	stores *database.StoreRepository,
	offers *database.OfferRepository,
	qrCodes *database.QrCodeRepository,
	transactions *database.TransactionRepository,
	feedback *database.FeedbackRepository,
	users *database.UserRepository,
	charity *database.CharityRepository,
	logger *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		stores:       stores,
		offers:       offers,
		qrCodes:      qrCodes,
		transactions: transactions,
		feedback:     feedback,
		users:        users,
		charity:      charity,
		logger:       logger,
	}
}

// HomeRequest represents the home feed body. All limits default to 10.
type HomeRequest struct {
	BrandLimit    int `json:"brand_limit"`
	OfferLimit    int `json:"offer_limit"`
	FeaturedLimit int `json:"featured_limit"`
}

// Home handles POST /api/user/home. Public.
func (h *UserHandler) Home(c *gin.Context) {
	req := HomeRequest{BrandLimit: 10, OfferLimit: 10, FeaturedLimit: 10}
	_ = c.ShouldBindJSON(&req)
	if req.BrandLimit <= 0 {
		req.BrandLimit = 10
	}
	if req.OfferLimit <= 0 {
		req.OfferLimit = 10
	}
	if req.FeaturedLimit <= 0 {
		req.FeaturedLimit = 10
	}

	brands, err := h.stores.ListBrands(req.BrandLimit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list brands")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	offers, err := h.offers.TopActive(req.OfferLimit, false)
	if err != nil {
		h.logger.WithError(err).Error("failed to list top offers")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	featured, err := h.offers.TopActive(req.FeaturedLimit, true)
	if err != nil {
		h.logger.WithError(err).Error("failed to list featured offers")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"brand":         brands,
			"offers":        offers,
			"featureOffers": featured,
		},
		"limit": gin.H{
			"brand_limit":    req.BrandLimit,
			"offer_limit":    req.OfferLimit,
			"featured_limit": req.FeaturedLimit,
		},
	})
}

// DiscountRequest represents the discovery filter body
type DiscountRequest struct {
	OfferID   int64   `json:"offer_id"`
	Category  string  `json:"category"`
	Search    string  `json:"search"`
	OfferType string  `json:"type"`
	Rating    float64 `json:"rating"`
	Discount  float64 `json:"discount"`
	Featured  bool    `json:"featured"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
}

// Discount handles POST /api/user/discount, the paginated offer browser.
// Public. A page past the end of the result set is a 400.
func (h *UserHandler) Discount(c *gin.Context) {
	req := DiscountRequest{Page: 1, Limit: 12}
	_ = c.ShouldBindJSON(&req)

	if req.Page < 1 || req.Limit < 1 {
		respondError(c, http.StatusBadRequest, "Page and limit must be positive integers")
		return
	}

	filter := models.OfferFilter{
		OfferID:   req.OfferID,
		Category:  req.Category,
		Search:    req.Search,
		OfferType: req.OfferType,
		Rating:    req.Rating,
		Discount:  req.Discount,
		Featured:  req.Featured,
		Page:      req.Page,
		Limit:     req.Limit,
	}

	rows, total, err := h.offers.Filter(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to filter offers")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	// With zero rows totalPages is 0, so even page 1 is past the end.
	totalPages := (total + req.Limit - 1) / req.Limit
	if req.Page > totalPages {
		respondError(c, http.StatusBadRequest, "Not enough data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rows,
		"pagination": models.Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: req.Page,
			Limit:       req.Limit,
		},
	})
}

// RecommendedBrandsRequest represents the per-store offer listing body
type RecommendedBrandsRequest struct {
	StoreID int64 `json:"store_id" binding:"required"`
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
}

// RecommendedBrands handles POST /api/user/recommended-brands. Public.
func (h *UserHandler) RecommendedBrands(c *gin.Context) {
	req := RecommendedBrandsRequest{Page: 1, Limit: 10}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "store_id is required")
		return
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 10
	}

	rows, total, err := h.offers.ActiveByStore(req.StoreID, req.Page, req.Limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list store offers")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	totalPages := (total + req.Limit - 1) / req.Limit
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    rows,
		"pagination": models.Pagination{
			TotalItems:  total,
			TotalPages:  totalPages,
			CurrentPage: req.Page,
			Limit:       req.Limit,
		},
	})
}

// RedeemRequest represents the redemption body
type RedeemRequest struct {
	OfferID int64 `json:"offer_id" binding:"required"`
}

// Redeem handles POST /api/user/redeem. The business QR payload is
// enriched with the consumer's identity and persisted as a new user QR
// row. Repeat calls create new rows.
func (h *UserHandler) Redeem(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "offer_id is required")
		return
	}

	if _, err := h.offers.FindByID(req.OfferID); err != nil {
		respondLookupError(c, err, "Offer not found")
		return
	}

	businessQR, err := h.qrCodes.FindBusinessByOffer(req.OfferID)
	if err != nil {
		respondLookupError(c, err, "No QR code exists for this offer")
		return
	}

	var basePayload models.BusinessQRPayload
	if err := json.Unmarshal([]byte(businessQR.Data), &basePayload); err != nil {
		h.logger.WithError(err).WithField("offer_id", req.OfferID).Error("corrupt business QR payload")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	payload := models.UserQRPayload{
		BusinessQRPayload: basePayload,
		UserID:            principal.User.UserID,
		FirstName:         principal.User.FirstName,
		LastName:          principal.User.LastName,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	userQR := &models.QrCodeUser{
		QrCodeBusinessID: businessQR.QrCodeBusinessID,
		UserID:           principal.User.UserID,
		Data:             string(encoded),
	}
	if err := h.qrCodes.CreateUser(userQR); err != nil {
		h.logger.WithError(err).Error("failed to create user QR code")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Offer redeemed",
		"qrCodeData": string(encoded),
	})
}

// Charity handles POST /api/user/charity, the public charity feed.
func (h *UserHandler) Charity(c *gin.Context) {
	images, err := h.charity.ListImages()
	if err != nil {
		h.logger.WithError(err).Error("failed to list charity images")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	videos, err := h.charity.ListVideos()
	if err != nil {
		h.logger.WithError(err).Error("failed to list charity videos")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}
	stories, err := h.charity.ListStories()
	if err != nil {
		h.logger.WithError(err).Error("failed to list charity stories")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "", gin.H{
		"images":  images,
		"videos":  videos,
		"stories": stories,
	})
}

// Profile handles GET /api/user/profile.
func (h *UserHandler) Profile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	respondOK(c, http.StatusOK, "", principal.User)
}

// UpdateProfileRequest represents the profile update body
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name" binding:"required"`
	LastName    string `json:"last_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// UpdateProfile handles PUT /api/user/profile.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "First name and last name are required")
		return
	}

	var phone models.NullString
	if req.PhoneNumber != "" {
		phone = models.NewNullString(req.PhoneNumber)
	}

	if err := h.users.UpdateProfile(principal.User.UserID, req.FirstName, req.LastName, phone); err != nil {
		h.logger.WithError(err).Error("failed to update profile")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Profile updated", nil)
}

// Card handles POST /api/user/card, the consumer's loyalty card.
func (h *UserHandler) Card(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	card, err := h.users.FindCard(principal.User.UserID)
	if err != nil {
		respondLookupError(c, err, "No card found for this account")
		return
	}

	respondOK(c, http.StatusOK, "", card)
}

// Transactions handles POST /api/user/transaction, the consumer's own
// purchase history.
func (h *UserHandler) Transactions(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	rows, err := h.transactions.ListByUser(principal.User.UserID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		h.logger.WithError(err).Error("failed to list transactions")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "", rows)
}

// FeedbackRequest represents the feedback submission body
type FeedbackRequest struct {
	StoreID int64  `json:"store_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitFeedback handles POST /api/user/feedback.
func (h *UserHandler) SubmitFeedback(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok || principal.User == nil {
		respondError(c, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "store_id and rating are required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	fb := &models.Feedback{
		UserID:  principal.User.UserID,
		StoreID: req.StoreID,
		Rating:  req.Rating,
	}
	if req.Comment != "" {
		fb.Comment = models.NewNullString(req.Comment)
	}

	if err := h.feedback.Create(fb); err != nil {
		h.logger.WithError(err).Error("failed to create feedback")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusCreated, "Feedback submitted", fb)
}
