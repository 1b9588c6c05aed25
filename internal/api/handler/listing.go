package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanhvu/jobradar/internal/domain"
	"github.com/khanhvu/jobradar/internal/repository"
)

// ListingHandler handles listing query endpoints.
type ListingHandler struct {
	listings  *repository.ListingRepository
	companies *repository.CompanyRepository
}

// NewListingHandler creates a new listing handler.
// Parameters:
//   - listings: listing repository.
//   - companies: company repository.
// Returns:
//   - *ListingHandler: initialized handler.
func NewListingHandler(listings *repository.ListingRepository, companies *repository.CompanyRepository) *ListingHandler {
	return &ListingHandler{listings: listings, companies: companies}
}

// ListListings handles GET /api/v1/listings.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ListingHandler) ListListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := repository.ListingFilter{
		Source:          c.Query("source"),
		CompanyID:       c.Query("company_id"),
		Location:        c.Query("location"),
		Keyword:         c.Query("q"),
		JobType:         domain.JobType(c.Query("job_type")),
		ExperienceLevel: domain.ExperienceLevel(c.Query("experience_level")),
		RelevantOnly:    c.Query("relevant") == "true",
		ActiveOnly:      c.DefaultQuery("active", "true") == "true",
		Limit:           limit,
		Offset:          offset,
	}

	if days, err := strconv.Atoi(c.Query("posted_within_days")); err == nil && days > 0 {
		cutoff := time.Now().AddDate(0, 0, -days)
		filter.PostedAfter = &cutoff
	}

	listings, total, err := h.listings.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list listings: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetListing handles GET /api/v1/listings/:id.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ListingHandler) GetListing(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Listing ID is required",
		})
		return
	}

	listing, err := h.listings.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Listing not found",
		})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// GetStats handles GET /api/v1/stats.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ListingHandler) GetStats(c *gin.Context) {
	stats, err := h.listings.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to compute stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListCompanies handles GET /api/v1/companies.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *ListingHandler) ListCompanies(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	companies, err := h.companies.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list companies: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"companies": companies,
		"limit":     limit,
		"offset":    offset,
	})
}
