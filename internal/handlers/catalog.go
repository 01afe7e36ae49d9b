package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// CatalogHandler manages categories and brands.
type CatalogHandler struct {
	db *gorm.DB
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{db: db}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

func (r categoryRequest) apply(category *models.Category) error {
	category.Name = strings.TrimSpace(r.Name)
	if category.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	category.Slug = slugOrName(r.Slug, category.Name)
	category.Description = r.Description
	category.Image = r.Image
	return nil
}

type brandRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Country     string `json:"country"`
	Image       string `json:"image"`
}

func (r brandRequest) apply(brand *models.Brand) error {
	brand.Name = strings.TrimSpace(r.Name)
	if brand.Name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	}
	brand.Slug = slugOrName(r.Slug, brand.Name)
	brand.Description = r.Description
	brand.Country = r.Country
	brand.Image = r.Image
	return nil
}

func slugOrName(slug, name string) string {
	if s := utils.Slugify(slug); s != "" {
		return s
	}
	return utils.Slugify(name)
}

// ListCategories returns paginated categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var categories []models.Category
	var total int64

	if err := h.db.Model(&models.Category{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       categories,
		"pagination": pg.Meta(total),
	})
}

// GetCategory returns a single category by ID.
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// CreateCategory persists a new category.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var category models.Category
	if err := req.apply(&category); err != nil {
		return err
	}

	if err := h.db.Create(&category).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": category})
}

// UpdateCategory updates an existing category.
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "category not found")
		}
		return err
	}

	var req categoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.apply(&category); err != nil {
		return err
	}

	if err := h.db.Save(&category).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteCategory removes a category; its products become uncategorised.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListBrands returns paginated brands.
func (h *CatalogHandler) ListBrands(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	var brands []models.Brand
	var total int64

	if err := h.db.Model(&models.Brand{}).Count(&total).Error; err != nil {
		return err
	}

	if err := h.db.Limit(pg.Limit).Offset(pg.Offset).Order("name asc").
		Find(&brands).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       brands,
		"pagination": pg.Meta(total),
	})
}

// GetBrand returns a single brand by ID.
func (h *CatalogHandler) GetBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var brand models.Brand
	if err := h.db.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "brand not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": brand})
}

// CreateBrand persists a new brand.
func (h *CatalogHandler) CreateBrand(c *fiber.Ctx) error {
	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var brand models.Brand
	if err := req.apply(&brand); err != nil {
		return err
	}

	if err := h.db.Create(&brand).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": brand})
}

// UpdateBrand updates an existing brand.
func (h *CatalogHandler) UpdateBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var brand models.Brand
	if err := h.db.First(&brand, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "brand not found")
		}
		return err
	}

	var req brandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.apply(&brand); err != nil {
		return err
	}

	if err := h.db.Save(&brand).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": brand})
}

// DeleteBrand removes a brand; its products keep existing without one.
func (h *CatalogHandler) DeleteBrand(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("brand_id = ?", id).
			Update("brand_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Brand{}, "id = ?", id).Error
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
