package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// ProductHandler manages product CRUD and inventory.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

var productSorts = map[string]string{
	"newest":     "created_at desc",
	"price_asc":  "base_price asc",
	"price_desc": "base_price desc",
	"rating":     "rating_average desc, rating_count desc",
}

// ListProducts returns active products, paginated, with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	return h.listProducts(c, h.db.Where("is_active = ?", true))
}

// AdminListProducts is ListProducts including inactive products.
func (h *ProductHandler) AdminListProducts(c *fiber.Ctx) error {
	return h.listProducts(c, h.db)
}

func (h *ProductHandler) listProducts(c *fiber.Ctx, base *gorm.DB) error {
	pg := utils.ParsePagination(c)
	query := base.Model(&models.Product{})

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid category_id")
		}
		query = query.Where("category_id = ?", id)
	}

	if v := c.Query("brand_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid brand_id")
		}
		query = query.Where("brand_id = ?", id)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(short_description) LIKE ?", q, q)
	}

	if minPrice := c.Query("min_price"); minPrice != "" {
		if val, err := strconv.ParseInt(minPrice, 10, 64); err == nil {
			query = query.Where("base_price >= ?", val)
		}
	}

	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if val, err := strconv.ParseInt(maxPrice, 10, 64); err == nil {
			query = query.Where("base_price <= ?", val)
		}
	}

	order, ok := productSorts[c.Query("sort", "newest")]
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "sort must be one of newest, price_asc, price_desc, rating")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Brand").Preload("Category").Preload("Variants").
		Limit(pg.Limit).Offset(pg.Offset).
		Order(order).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       products,
		"pagination": pg.Meta(total),
	})
}

func (h *ProductHandler) withDetails() *gorm.DB {
	return h.db.Preload("Brand").
		Preload("Category").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("price asc") }).
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("display_order asc") })
}

// GetProduct loads an active product with variants and media.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.respondProduct(c, h.withDetails().Where("is_active = ?", true), "id = ?", id)
}

// GetProductBySlug is GetProduct keyed by slug.
func (h *ProductHandler) GetProductBySlug(c *fiber.Ctx) error {
	return h.respondProduct(c, h.withDetails().Where("is_active = ?", true), "slug = ?", c.Params("slug"))
}

// AdminGetProduct loads any product, active or not.
func (h *ProductHandler) AdminGetProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	return h.respondProduct(c, h.withDetails(), "id = ?", id)
}

func (h *ProductHandler) respondProduct(c *fiber.Ctx, query *gorm.DB, cond string, arg any) error {
	var product models.Product
	if err := query.First(&product, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Slug             string           `json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	Description      string           `json:"description"`
	BasePrice        int64            `json:"base_price"`
	HeroImage        string           `json:"hero_image"`
	IsActive         *bool            `json:"is_active"`
	BrandID          string           `json:"brand_id"`
	CategoryID       string           `json:"category_id"`
	Variants         []variantRequest `json:"variants"`
	Media            []mediaRequest   `json:"media"`
}

type variantRequest struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	Label         string `json:"label"`
	Price         int64  `json:"price"`
	OriginalPrice int64  `json:"original_price"`
	Stock         *int   `json:"stock"`
}

type mediaRequest struct {
	URL          string `json:"url"`
	AltText      string `json:"alt_text"`
	DisplayOrder int    `json:"display_order"`
}

// CreateProduct handles product creation with nested variants and media.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.IsActive == nil {
		product.IsActive = true
	}

	if err := h.db.Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct updates a product, replaces its media and upserts variants by id.
// Variants missing from the payload are removed. Existing variants keep their
// stock; it changes only through checkout and UpdateVariantStock.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var existing models.Product
	if err := h.db.Preload("Variants").First(&existing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product, err := buildProductFromRequest(req)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt
	product.RatingAverage = existing.RatingAverage
	product.RatingCount = existing.RatingCount
	if req.IsActive == nil {
		product.IsActive = existing.IsActive
	}

	known := make(map[uuid.UUID]bool, len(existing.Variants))
	for _, v := range existing.Variants {
		known[v.ID] = true
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&existing).Select("*").Omit("ID", "CreatedAt", "Variants", "Media", "Brand", "Category").
			Updates(&product).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(product.Variants))
		for i := range product.Variants {
			variant := &product.Variants[i]
			variant.ProductID = product.ID
			if variant.ID == uuid.Nil {
				if err := tx.Create(variant).Error; err != nil {
					return err
				}
			} else {
				if !known[variant.ID] {
					return fiber.NewError(fiber.StatusBadRequest, "variant "+variant.ID.String()+" does not belong to this product")
				}
				if err := tx.Model(&models.ProductVariant{}).
					Where("id = ? AND product_id = ?", variant.ID, product.ID).
					Select("sku", "label", "price", "original_price", "updated_at").
					Updates(variant).Error; err != nil {
					return err
				}
			}
			keep = append(keep, variant.ID)
		}

		cleanup := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			cleanup = cleanup.Where("id NOT IN ?", keep)
		}
		if err := cleanup.Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductMedia{}).Error; err != nil {
			return err
		}
		for i := range product.Media {
			product.Media[i].ProductID = product.ID
		}
		if len(product.Media) > 0 {
			if err := tx.Create(&product.Media).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	var updated models.Product
	if err := h.withDetails().First(&updated, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": updated})
}

// DeleteProduct removes a product and everything hanging off it except orders.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&models.ProductVariant{},
			&models.ProductMedia{},
			&models.Review{},
			&models.Comment{},
			&models.WishlistItem{},
		} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.Product{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return nil
	}); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type stockRequest struct {
	Stock *int `json:"stock"`
}

// UpdateVariantStock sets the stock counter of one variant.
func (h *ProductHandler) UpdateVariantStock(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req stockRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Stock == nil || *req.Stock < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "stock must be zero or greater")
	}

	res := h.db.Model(&models.ProductVariant{}).Where("id = ?", id).Update("stock", *req.Stock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "variant not found")
	}

	var variant models.ProductVariant
	if err := h.db.First(&variant, "id = ?", id).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": variant})
}

func buildProductFromRequest(req productRequest) (models.Product, error) {
	product := models.Product{
		Name:             strings.TrimSpace(req.Name),
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		BasePrice:        req.BasePrice,
		HeroImage:        req.HeroImage,
	}
	if product.Name == "" {
		return product, errors.New("name is required")
	}
	if product.BasePrice < 0 {
		return product, errors.New("base_price must not be negative")
	}
	product.Slug = slugOrName(req.Slug, product.Name)
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if req.BrandID != "" {
		id, err := uuid.Parse(req.BrandID)
		if err != nil {
			return product, errors.New("invalid brand_id")
		}
		product.BrandID = &id
	}
	if req.CategoryID != "" {
		id, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return product, errors.New("invalid category_id")
		}
		product.CategoryID = &id
	}

	for _, v := range req.Variants {
		if v.Price < 0 || v.OriginalPrice < 0 {
			return product, errors.New("variant price must not be negative")
		}
		if v.Stock != nil && *v.Stock < 0 {
			return product, errors.New("variant stock must not be negative")
		}
		variant := models.ProductVariant{
			SKU:           v.SKU,
			Label:         v.Label,
			Price:         v.Price,
			OriginalPrice: v.OriginalPrice,
		}
		if v.Stock != nil {
			variant.Stock = *v.Stock
		}
		if v.ID != "" {
			id, err := uuid.Parse(v.ID)
			if err != nil {
				return product, errors.New("invalid variant id")
			}
			variant.ID = id
		}
		product.Variants = append(product.Variants, variant)
	}

	for _, m := range req.Media {
		if strings.TrimSpace(m.URL) == "" {
			return product, errors.New("media url is required")
		}
		product.Media = append(product.Media, models.ProductMedia{
			URL:          m.URL,
			AltText:      m.AltText,
			DisplayOrder: m.DisplayOrder,
		})
	}

	return product, nil
}
