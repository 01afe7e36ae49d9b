package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

const maxCommentLength = 2000

// CommentHandler manages product discussion threads.
type CommentHandler struct {
	db *gorm.DB
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

// ListComments returns top-level comments of a product with their replies.
func (h *CommentHandler) ListComments(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Comment{}).Where("product_id = ? AND parent_id IS NULL", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var comments []models.Comment
	if err := query.
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&comments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       comments,
		"pagination": pg.Meta(total),
	})
}

type commentRequest struct {
	Content    string `json:"content"`
	AuthorName string `json:"author_name"`
	ParentID   string `json:"parent_id"`
}

// CreateComment posts a comment or a reply. Guests must give a name;
// signed-in users are named from their account.
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	productID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	comment := models.Comment{
		ProductID:  productID,
		Content:    strings.TrimSpace(req.Content),
		AuthorName: strings.TrimSpace(req.AuthorName),
	}
	if comment.Content == "" {
		return fiber.NewError(fiber.StatusBadRequest, "content is required")
	}
	if len(comment.Content) > maxCommentLength {
		return fiber.NewError(fiber.StatusBadRequest, "content is too long")
	}

	if userID, ok := middleware.GetCurrentUserID(c); ok {
		var user models.User
		if err := h.db.Select("id", "name").First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "account no longer exists")
			}
			return err
		}
		comment.UserID = &user.ID
		comment.AuthorName = user.Name
	} else if comment.AuthorName == "" {
		return fiber.NewError(fiber.StatusBadRequest, "author_name is required")
	}

	var product models.Product
	if err := h.db.Select("id").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	if req.ParentID != "" {
		parentID, err := uuid.Parse(req.ParentID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid parent_id")
		}
		var parent models.Comment
		if err := h.db.First(&parent, "id = ? AND product_id = ?", parentID, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusBadRequest, "parent comment not found on this product")
			}
			return err
		}
		// replies stay one level deep
		if parent.ParentID != nil {
			parentID = *parent.ParentID
		}
		comment.ParentID = &parentID
	}

	if err := h.db.Create(&comment).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": comment})
}

// DeleteComment removes a comment and its replies.
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var deleted int64
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, "id = ?", id)
		deleted = res.RowsAffected
		return res.Error
	}); err != nil {
		return err
	}
	if deleted == 0 {
		return fiber.NewError(fiber.StatusNotFound, "comment not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
