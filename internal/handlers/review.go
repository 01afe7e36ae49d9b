package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// ReviewHandler manages product reviews and the rating aggregates they drive.
type ReviewHandler struct {
	db *gorm.DB
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(db *gorm.DB) *ReviewHandler {
	return &ReviewHandler{db: db}
}

func publicAuthor(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name")
}

// ListReviews returns a product's reviews, newest first.
func (h *ReviewHandler) ListReviews(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var reviews []models.Review
	if err := query.Preload("User", publicAuthor).
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&reviews).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       reviews,
		"pagination": pg.Meta(total),
	})
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

// CreateReview adds the caller's review; each user reviews a product once.
func (h *ReviewHandler) CreateReview(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return fiber.NewError(fiber.StatusBadRequest, "rating must be between 1 and 5")
	}

	review := models.Review{
		ProductID: productID,
		UserID:    userID,
		Rating:    req.Rating,
		Content:   strings.TrimSpace(req.Content),
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Select("id").First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "product not found")
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.Review{}).
			Where("product_id = ? AND user_id = ?", productID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fiber.NewError(fiber.StatusConflict, "you have already reviewed this product")
		}

		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fiber.NewError(fiber.StatusConflict, "you have already reviewed this product")
			}
			return err
		}
		return refreshRating(tx, productID)
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": review})
}

// DeleteReview removes a review; only its author or an admin may do so.
func (h *ReviewHandler) DeleteReview(c *fiber.Ctx) error {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "review not found")
			}
			return err
		}
		if review.UserID != identity.UserID && !identity.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}

		if err := tx.Delete(&review).Error; err != nil {
			return err
		}
		return refreshRating(tx, review.ProductID)
	})
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// refreshRating recomputes the product's average (two decimals) and count.
func refreshRating(tx *gorm.DB, productID uuid.UUID) error {
	var stats struct {
		Average float64
		Count   int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&stats).Error; err != nil {
		return err
	}

	average, _ := decimal.NewFromFloat(stats.Average).Round(2).Float64()
	return tx.Model(&models.Product{}).Where("id = ?", productID).Updates(map[string]any{
		"rating_average": average,
		"rating_count":   stats.Count,
	}).Error
}
