package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopshere/internal/chat"
	"shopshere/internal/config"
	"shopshere/internal/database"
	"shopshere/internal/handlers"
	"shopshere/internal/mailer"
	"shopshere/internal/middleware"
	"shopshere/internal/payments"
	"shopshere/internal/storage"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureCartIndexes(db); err != nil {
		log.Printf("cart index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}

	images, err := storage.NewImageStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatal("cloudinary init failed:", err)
	}

	gateway := payments.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	mail := mailer.New(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword)
	chatClient := chat.NewClient(cfg.GroqAPIURL, cfg.GroqAPIKey)
	chatLimiter := middleware.NewRateLimiter(10, 3)

	authed := middleware.IsAuthenticated(db, cfg.JWTSecret)
	admin := middleware.IsAdmin()

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register(db, cfg))
		auth.POST("/google", handlers.GoogleLogin(db, cfg))
		auth.POST("/login", handlers.Login(db, cfg))
		auth.POST("/logout", handlers.Logout(cfg))
		auth.GET("/me", authed, handlers.GetMe())

		auth.POST("/forgot-password", handlers.ForgotPassword(db, cfg, mail))
		auth.POST("/reset-password/:token", handlers.ResetPassword(db))
		auth.PUT("/update-password", authed, handlers.UpdatePassword(db))
	}

	products := api.Group("/products")
	{
		products.GET("/admin", authed, admin, handlers.GetAdminProducts(db))
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProductByID(db))
		products.POST("", authed, admin, handlers.CreateProduct(db, images))
		products.PATCH("/:id", authed, admin, handlers.UpdateProduct(db, images))
		products.DELETE("/:id", authed, admin, handlers.DeleteProduct(db, images))
	}

	reviews := api.Group("/reviews")
	{
		reviews.PUT("", authed, handlers.CreateOrUpdateReview(db))
		reviews.DELETE("", authed, handlers.DeleteReview(db))
		reviews.GET("/:productId", handlers.GetProductReviews(db))
	}

	cart := api.Group("/cart", authed)
	{
		cart.GET("", handlers.GetCart(db))
		cart.POST("", handlers.AddToCart(db))
		cart.PUT("", handlers.UpdateCartItem(db))
		cart.DELETE("", handlers.RemoveFromCart(db))
		cart.DELETE("/clear", handlers.ClearCart(db))
	}

	orders := api.Group("/orders", authed)
	{
		orders.POST("", handlers.CreateOrder(db))
		orders.GET("/mine", handlers.GetUserOrders(db))
		orders.POST("/verify", handlers.VerifyOrderPayment(db, gateway))

		orders.GET("", admin, handlers.GetAllOrders(db))
		orders.GET("/admin/analytics", admin, handlers.GetAnalytics(db))
		orders.GET("/admin/:id", admin, handlers.GetOrderByID(db))
		orders.PUT("/:id/deliver", admin, handlers.MarkAsDelivered(db))
	}

	payment := api.Group("/payment")
	{
		payment.POST("/razorpay", handlers.CreatePaymentOrder(gateway))
		payment.POST("/verify", handlers.VerifyPaymentSignature(gateway))
	}

	adminGroup := api.Group("/admin", authed, admin)
	{
		adminGroup.GET("/users", handlers.GetAllUsers(db))
		adminGroup.GET("/users/:id", handlers.GetUserByID(db))
		adminGroup.PUT("/users/:id", handlers.UpdateUserByID(db))
		adminGroup.DELETE("/users/:id", handlers.DeleteUserByID(db))
	}

	api.POST("/chat", chatLimiter.Limit(), handlers.HandleChatMessage(chatClient))

	log.Println("Server running on port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
