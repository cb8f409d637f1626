package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/loveall/loveall-backend/internal/database"
	"github.com/loveall/loveall-backend/internal/models"
	"github.com/loveall/loveall-backend/internal/services"
	"github.com/loveall/loveall-backend/pkg/mail"
)

// AdminHandler handles the platform administration endpoints: manual
// business verification, account listings, transaction reporting,
// dashboard aggregates and charity content management.
type AdminHandler struct {
	passwordService *services.PasswordService
	exportService   *services.ExportService
	businesses      *database.BusinessRepository
	users           *database.UserRepository
	stores          *database.StoreRepository
	offers          *database.OfferRepository
	transactions    *database.TransactionRepository
	charity         *database.CharityRepository
	mailer          mail.Mailer
	logger          *logrus.Logger
	uploadDir       string
}

// NewAdminHandler creates a new admin handler. uploadDir is where charity
// files and invoice PDFs live, served statically under /images.
func NewAdminHandler(
	passwordService *services.PasswordService,
	exportService *services.ExportService,
	businesses *database.BusinessRepository,
	users *database.UserRepository,
	stores *database.StoreRepository,
	offers *database.OfferRepository,
	transactions *database.TransactionRepository,
	charity *database.CharityRepository,
	mailer mail.Mailer,
	logger *logrus.Logger,
	uploadDir string,
) *AdminHandler {
	return &AdminHandler{
		passwordService: passwordService,
		exportService:   exportService,
		businesses:      businesses,
		users:           users,
		stores:          stores,
		offers:          offers,
		transactions:    transactions,
		charity:         charity,
		mailer:          mailer,
		logger:          logger,
		uploadDir:       uploadDir,
	}
}

// ManualVerificationRequest represents the manual verification body
type ManualVerificationRequest struct {
	BusinessEmail string `json:"business_email" binding:"required"`
}

// ManualVerification handles POST /api/admin/manual-verification.
// A temporary password is generated, emailed, and only then written to
// the row together with manual_verified and temp_pass. A failed send
// leaves the account untouched.
func (h *AdminHandler) ManualVerification(c *gin.Context) {
	var req ManualVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "business_email is required")
		return
	}

	business, err := h.businesses.FindByEmail(req.BusinessEmail)
	if err != nil {
		respondLookupError(c, err, "Business not found")
		return
	}

	tempPassword, err := h.passwordService.GenerateTempPassword()
	if err != nil {
		h.logger.WithError(err).Error("failed to generate temporary password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	hash, err := h.passwordService.Hash(tempPassword)
	if err != nil {
		h.logger.WithError(err).Error("failed to hash temporary password")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	subject := "Manual Verification Completed"
	body := mail.BusinessApprovalBody(business.BusinessName, tempPassword)
	if err := h.mailer.Send(business.BusinessEmail, subject, body); err != nil {
		h.logger.WithError(err).WithField("email", business.BusinessEmail).Error("failed to send verification email")
		respondError(c, http.StatusInternalServerError, "Failed to send verification email")
		return
	}

	if err := h.businesses.ManualVerify(business.BusinessEmail, hash); err != nil {
		h.logger.WithError(err).Error("failed to mark business manually verified")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondOK(c, http.StatusOK, "Manual verification completed and email sent", nil)
}

// Transactions handles GET /api/admin/transactions with optional
// userId, storeId and status query filters.
func (h *AdminHandler) Transactions(c *gin.Context) {
	filter := models.TransactionFilter{
		UserID: c.Query("userId"),
		Status: c.Query("status"),
	}
	if storeID := c.Query("storeId"); storeID != "" {
		id, err := strconv.ParseInt(storeID, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "Invalid store id")
			return
		}
		filter.StoreID = id
	}

	rows, err := h.transactions.ListFiltered(filter)
	if err != nil {
		h.logger.WithError(err).Error("failed to list transactions")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"transactions": rows,
	})
}

// ExportTransactionsCSV handles GET /api/admin/transactions/export,
// a full CSV dump streamed as a download.
func (h *AdminHandler) ExportTransactionsCSV(c *gin.Context) {
	rows, err := h.transactions.ListFiltered(models.TransactionFilter{})
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

// DownloadInvoices handles GET /api/admin/transactions/invoices,
// bundling the stored invoice files into a zip download.
func (h *AdminHandler) DownloadInvoices(c *gin.Context) {
	transactions, err := h.transactions.ListWithInvoices()
	if err != nil {
		h.logger.WithError(err).Error("failed to list invoiced transactions")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	rows := make([]models.TransactionWithStore, len(transactions))
	for i := range transactions {
		rows[i] = models.TransactionWithStore{OfferTransaction: transactions[i]}
	}

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="invoices.zip"`)
	if err := h.exportService.WriteInvoiceZip(c.Writer, h.uploadDir, rows); err != nil {
		h.logger.WithError(err).Error("failed to write invoice zip")
	}
}

// BusinessAccounts handles GET /api/admin/business-accounts.
func (h *AdminHandler) BusinessAccounts(c *gin.Context) {
	businesses, err := h.businesses.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list businesses")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	accounts := make([]gin.H, len(businesses))
	for i := range businesses {
		accounts[i] = gin.H{
			"business_id":     businesses[i].BusinessID,
			"business_name":   businesses[i].BusinessName,
			"email":           businesses[i].BusinessEmail,
			"registered_date": businesses[i].CreatedAt,
			"status":          businessStatus(&businesses[i]),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"businesses": accounts,
	})
}

// BusinessDetails handles GET /api/admin/business-accounts/:businessId.
func (h *AdminHandler) BusinessDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("businessId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid business id")
		return
	}

	business, err := h.businesses.FindByID(id)
	if err != nil {
		respondLookupError(c, err, "Business not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"business": gin.H{
			"business_name":   business.BusinessName,
			"email":           business.BusinessEmail,
			"registered_date": business.CreatedAt,
			"status":          businessStatus(business),
		},
	})
}

// UserAccounts handles GET /api/admin/user-accounts.
func (h *AdminHandler) UserAccounts(c *gin.Context) {
	users, err := h.users.ListAll()
	if err != nil {
		h.logger.WithError(err).Error("failed to list users")
		respondError(c, http.StatusInternalServerError, "Something went wrong")
		return
	}

	accounts := make([]gin.H, len(users))
	for i := range users {
		accounts[i] = gin.H{
			"user_id":         users[i].UserID,
			"name":            users[i].FirstName + " " + users[i].LastName,
			"email":           users[i].Email,
			"phone_number":    users[i].PhoneNumber,
			"registered_date": users[i].CreatedAt,
			"status":          userStatus(&users[i]),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   accounts,
	})
}

// UserDetails handles GET /api/admin/user-accounts/:userId.
func (h *AdminHandler) UserDetails(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.users.FindByID(id)
	if err != nil {
		respondLookupError(c, err, "User not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"name":            user.FirstName + " " + user.LastName,
			"email":           user.Email,
			"phone_number":    user.PhoneNumber,
			"registered_date": user.CreatedAt,
			"status":          userStatus(user),
		},
	})
}

// Dashboard handles GET /api/admin/dashboard. All grouping happens in
// the database; this handler just assembles the pieces.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	data := models.DashboardData{}
	var err error

	if data.TotalUsers, err = h.users.Count(); err != nil {
		h.dashboardError(c, err, "count users")
		return
	}
	if data.ActiveBusinesses, err = h.businesses.CountVerified(); err != nil {
		h.dashboardError(c, err, "count businesses")
		return
	}
	if data.TotalTransactions, err = h.transactions.Count(); err != nil {
		h.dashboardError(c, err, "count transactions")
		return
	}
	if data.TotalOffers, err = h.offers.Count(); err != nil {
		h.dashboardError(c, err, "count offers")
		return
	}
	if data.WeeklyActivity, err = h.transactions.WeeklyActivity(); err != nil {
		h.dashboardError(c, err, "weekly activity")
		return
	}
	if data.TopBusinesses, err = h.transactions.TopBusinesses(3); err != nil {
		h.dashboardError(c, err, "top businesses")
		return
	}
	if data.UserGrowth, err = h.transactions.UserGrowth(); err != nil {
		h.dashboardError(c, err, "user growth")
		return
	}
	if data.CategoryDistribution, err = h.stores.CategoryDistribution(5); err != nil {
		h.dashboardError(c, err, "category distribution")
		return
	}

	respondOK(c, http.StatusOK, "", data)
}

func (h *AdminHandler) dashboardError(c *gin.Context, err error, step string) {
	h.logger.WithError(err).WithField("step", step).Error("failed to build dashboard data")
	respondError(c, http.StatusInternalServerError, "Something went wrong")
}

// CharityData handles GET /api/admin/charity.
func (h *AdminHandler) CharityData(c *gin.Context) {
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

// AddCharityContent handles POST /api/admin/charity/:type. Image and
// video take a multipart file; story is inline text. A failed insert
// cleans up the freshly saved file, best effort.
func (h *AdminHandler) AddCharityContent(c *gin.Context) {
	charityType, err := models.ParseCharityType(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid charity type")
		return
	}

	switch charityType {
	case models.CharityImageType:
		filename, ok := h.saveUpload(c)
		if !ok {
			return
		}
		item := &models.CharityImage{
			Image:       filename,
			Description: formNullString(c, "description"),
			Time:        time.Now(),
		}
		if err := h.charity.CreateImage(item); err != nil {
			h.logger.WithError(err).Error("failed to create charity image")
			h.removeUpload(filename)
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
		respondOK(c, http.StatusCreated, "Image added successfully", item)

	case models.CharityVideoType:
		filename, ok := h.saveUpload(c)
		if !ok {
			return
		}
		item := &models.CharityVideo{
			Video:       filename,
			Description: formNullString(c, "description"),
			Time:        time.Now(),
		}
		if err := h.charity.CreateVideo(item); err != nil {
			h.logger.WithError(err).Error("failed to create charity video")
			h.removeUpload(filename)
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
		respondOK(c, http.StatusCreated, "Video added successfully", item)

	case models.CharityStoryType:
		title := c.PostForm("title")
		story := c.PostForm("story")
		if title == "" || story == "" {
			respondError(c, http.StatusBadRequest, "Title and story are required")
			return
		}
		item := &models.CharityStory{
			Title: title,
			Story: story,
			Time:  time.Now(),
		}
		if err := h.charity.CreateStory(item); err != nil {
			h.logger.WithError(err).Error("failed to create charity story")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
		respondOK(c, http.StatusCreated, "Story added successfully", item)
	}
}

// UpdateCharityItem handles PUT /api/admin/charity/:type/:id. With
// keepExisting=true (or no file) the stored file stays; a replacement
// deletes the old file after the new one is saved.
func (h *AdminHandler) UpdateCharityItem(c *gin.Context) {
	charityType, err := models.ParseCharityType(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid charity type")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return
	}

	keepExisting := c.PostForm("keepExisting") == "true"

	switch charityType {
	case models.CharityImageType:
		item, err := h.charity.FindImage(id)
		if err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		newFile := h.maybeReplaceFile(c, keepExisting, item.Image)
		if err := h.charity.UpdateImage(id, formNullString(c, "description"), newFile); err != nil {
			h.logger.WithError(err).Error("failed to update charity image")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}

	case models.CharityVideoType:
		item, err := h.charity.FindVideo(id)
		if err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		newFile := h.maybeReplaceFile(c, keepExisting, item.Video)
		if err := h.charity.UpdateVideo(id, formNullString(c, "description"), newFile); err != nil {
			h.logger.WithError(err).Error("failed to update charity video")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}

	case models.CharityStoryType:
		if _, err := h.charity.FindStory(id); err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		title := c.PostForm("title")
		story := c.PostForm("story")
		if title == "" || story == "" {
			respondError(c, http.StatusBadRequest, "Title and story are required")
			return
		}
		if err := h.charity.UpdateStory(id, title, story); err != nil {
			h.logger.WithError(err).Error("failed to update charity story")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	respondOK(c, http.StatusOK, "Item updated successfully", nil)
}

// DeleteCharityItem handles DELETE /api/admin/charity/:type/:id. The
// stored file goes with the row for image and video.
func (h *AdminHandler) DeleteCharityItem(c *gin.Context) {
	charityType, err := models.ParseCharityType(c.Param("type"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid charity type")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id")
		return
	}

	switch charityType {
	case models.CharityImageType:
		item, err := h.charity.FindImage(id)
		if err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		if err := h.charity.DeleteImage(id); err != nil {
			h.logger.WithError(err).Error("failed to delete charity image")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
		h.removeUpload(item.Image)

	case models.CharityVideoType:
		item, err := h.charity.FindVideo(id)
		if err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		if err := h.charity.DeleteVideo(id); err != nil {
			h.logger.WithError(err).Error("failed to delete charity video")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
		h.removeUpload(item.Video)

	case models.CharityStoryType:
		if _, err := h.charity.FindStory(id); err != nil {
			respondLookupError(c, err, "Item not found")
			return
		}
		if err := h.charity.DeleteStory(id); err != nil {
			h.logger.WithError(err).Error("failed to delete charity story")
			respondError(c, http.StatusInternalServerError, "Something went wrong")
			return
		}
	}

	respondOK(c, http.StatusOK, "Item deleted successfully", nil)
}

// saveUpload stores the multipart "file" under the upload dir with a
// timestamp-prefixed name and returns the stored filename. It writes
// the error response itself on failure.
func (h *AdminHandler) saveUpload(c *gin.Context) (string, bool) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return "", false
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		h.logger.WithError(err).Error("failed to save uploaded file")
		respondError(c, http.StatusInternalServerError, "Failed to save uploaded file")
		return "", false
	}
	return filename, true
}

// maybeReplaceFile saves a replacement upload unless keepExisting is set
// or no file came with the request. It returns the new filename, or ""
// when the stored file should stay. The old file is removed only after
// the new one is on disk.
func (h *AdminHandler) maybeReplaceFile(c *gin.Context, keepExisting bool, oldFile string) string {
	if keepExisting {
		return ""
	}
	file, err := c.FormFile("file")
	if err != nil {
		return ""
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		h.logger.WithError(err).Error("failed to save uploaded file")
		return ""
	}

	h.removeUpload(oldFile)
	return filename
}

// removeUpload deletes a stored file, best effort.
func (h *AdminHandler) removeUpload(filename string) {
	if filename == "" {
		return
	}
	path := filepath.Join(h.uploadDir, filepath.Clean(filename))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		h.logger.WithError(err).WithField("file", path).Error("failed to remove file")
	}
}

func formNullString(c *gin.Context, key string) models.NullString {
	if v := c.PostForm(key); v != "" {
		return models.NewNullString(v)
	}
	return models.NullString{}
}

func businessStatus(b *models.Business) string {
	if b.ManualVerified {
		return "Approved"
	}
	return "Pending"
}

func userStatus(u *models.User) string {
	if u.Verified {
		return "Verified"
	}
	return "Unverified"
}
