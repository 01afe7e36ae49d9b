package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/middleware"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, events services.OrderEventPublisher) {
	telegramService := services.NewTelegramService(cfg.TelegramBotToken, cfg.TelegramAdminChat)
	checkoutService := services.NewCheckoutService(db, events, cfg.Currency)
	couponService := services.NewCouponService(db)

	authHandler := handlers.NewAuthHandler(db, cfg)
	catalogHandler := handlers.NewCatalogHandler(db)
	productHandler := handlers.NewProductHandler(db)
	orderHandler := handlers.NewOrderHandler(db, checkoutService, telegramService)
	couponHandler := handlers.NewCouponHandler(db, couponService)
	reviewHandler := handlers.NewReviewHandler(db)
	commentHandler := handlers.NewCommentHandler(db)
	wishlistHandler := handlers.NewWishlistHandler(db)
	adminHandler := handlers.NewAdminHandler(db, telegramService)

	requireAuth := middleware.AuthMiddleware(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Put("/me", requireAuth, authHandler.UpdateMe)
	auth.Put("/password", requireAuth, authHandler.ChangePassword)

	// Catalog routes
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/categories/:id", catalogHandler.GetCategory)
	api.Get("/brands", catalogHandler.ListBrands)
	api.Get("/brands/:id", catalogHandler.GetBrand)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/slug/:slug", productHandler.GetProductBySlug)
	products.Get("/:id", productHandler.GetProduct)
	products.Get("/:id/reviews", reviewHandler.ListReviews)
	products.Post("/:id/reviews", requireAuth, reviewHandler.CreateReview)
	products.Get("/:id/comments", commentHandler.ListComments)
	products.Post("/:id/comments", optionalAuth, commentHandler.CreateComment)

	api.Delete("/reviews/:id", requireAuth, reviewHandler.DeleteReview)

	// Checkout and coupons
	api.Post("/coupons/validate", couponHandler.ValidateCoupon)

	orders := api.Group("/orders")
	orders.Post("/checkout", optionalAuth, orderHandler.Checkout)
	orders.Get("/", requireAuth, orderHandler.ListOrders)
	orders.Get("/:id", requireAuth, orderHandler.GetOrder)
	orders.Post("/:id/cancel", requireAuth, orderHandler.CancelOrder)

	wishlist := api.Group("/wishlist", requireAuth)
	wishlist.Get("/", wishlistHandler.ListWishlist)
	wishlist.Post("/", wishlistHandler.AddToWishlist)
	wishlist.Delete("/:product_id", wishlistHandler.RemoveFromWishlist)

	// Admin routes
	api.Post("/admin/auth/login", authHandler.AdminLogin)

	admin := api.Group("/admin", requireAuth, middleware.RequireRole(models.RoleAdmin))
	admin.Get("/dashboard", adminHandler.DashboardStats)
	admin.Get("/users", adminHandler.ListAllUsers)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Get("/orders/recent", adminHandler.RecentOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Patch("/orders/:id/status", adminHandler.UpdateOrderStatus)

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)

	admin.Post("/brands", catalogHandler.CreateBrand)
	admin.Put("/brands/:id", catalogHandler.UpdateBrand)
	admin.Delete("/brands/:id", catalogHandler.DeleteBrand)

	admin.Get("/products", productHandler.AdminListProducts)
	admin.Get("/products/:id", productHandler.AdminGetProduct)
	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)
	admin.Patch("/variants/:id/stock", productHandler.UpdateVariantStock)

	admin.Get("/coupons", couponHandler.ListCoupons)
	admin.Post("/coupons", couponHandler.CreateCoupon)
	admin.Get("/coupons/:id", couponHandler.GetCoupon)
	admin.Put("/coupons/:id", couponHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", couponHandler.DeleteCoupon)

	api.Delete("/comments/:id", requireAuth, middleware.RequireRole(models.RoleAdmin), commentHandler.DeleteComment)
}
