package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"church-library/pkg/borrow"
	"church-library/pkg/config"
	"church-library/pkg/database"
	"church-library/pkg/models"
	"church-library/pkg/notifier"
	"church-library/pkg/store"
)

var (
	db       *gorm.DB
	entities *store.Store
	loans    *borrow.Service
	notify   notifier.Notifier
)

func main() {
	log.Println("Starting church library service...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err = database.Init(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.RabbitMQURL != "" {
		amqpNotifier, err := notifier.NewAMQP(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			log.Fatalf("Failed to connect notifier: %v", err)
		}
		defer amqpNotifier.Close()
		notify = amqpNotifier
	} else {
		log.Println("RABBITMQ_URL not set, borrow confirmations will be logged only")
		notify = notifier.LogNotifier{}
	}

	entities = store.New(db)
	loans = borrow.NewService(db, notify)

	seedData()

	server := gin.Default()

	server.POST("/api/v1/auth/register", register)
	server.POST("/api/v1/auth/login", login)

	server.GET("/api/v1/categories", getCategories)
	server.POST("/api/v1/categories", createCategory)
	server.PATCH("/api/v1/categories/:id", updateCategory)
	server.DELETE("/api/v1/categories/:id", deleteCategory)

	server.GET("/api/v1/books", getBooks)
	server.POST("/api/v1/books", createBook)
	server.PATCH("/api/v1/books/:id", updateBook)
	server.DELETE("/api/v1/books/:id", deleteBook)

	server.GET("/api/v1/users", getUsers)
	server.GET("/api/v1/users/:id", getUser)
	server.PATCH("/api/v1/users/:id", updateUser)

	server.GET("/api/v1/qrcode", getOwnQRCode)
	server.POST("/api/v1/scan", scanQRCode)

	server.POST("/api/v1/borrows", createBorrow)
	server.POST("/api/v1/borrows/:recordUid/return", returnBorrow)
	server.GET("/api/v1/borrows/history", getBorrowHistory)

	server.GET("/manage/health", healthCheck)

	log.Printf("Church library service starting on :%s", cfg.ServerPort)
	if err := server.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// seedData creates the admin account, the base categories and a few books
// on first boot. An existing user table means the instance is already set
// up and nothing is touched.
func seedData() {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Printf("Failed to inspect users for seeding: %v", err)
		return
	}
	if userCount > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}
	admin := models.User{
		Name:         "Library Admin",
		Age:          30,
		Email:        "admin@church.local",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("Failed to create admin account: %v", err)
		return
	}

	categories := []models.Category{
		{Name: "Spirituality", Color: "#2196F3", Description: "Prayer and spiritual life"},
		{Name: "Theology", Color: "#4CAF50", Description: "Doctrine and dogma"},
		{Name: "Church History", Color: "#FF9800", Description: "History of the church"},
		{Name: "Lives of Saints", Color: "#9C27B0", Description: "Biographies of the saints"},
	}
	for i := range categories {
		if err := db.Create(&categories[i]).Error; err != nil {
			log.Printf("Failed to seed category %s: %v", categories[i].Name, err)
		}
	}

	books := []models.Book{
		{Name: "The Life of Prayer", Author: "Fr Matta El-Meskeen", Price: 50, CategoryID: categories[0].ID, Available: true},
		{Name: "Orthodox Prayer Life", Author: "Fr Matta El-Meskeen", Price: 65, CategoryID: categories[0].ID, Available: true},
		{Name: "Introduction to Theology", Author: "Fr Tadros Malaty", Price: 80, CategoryID: categories[1].ID, Available: true},
		{Name: "Story of the Coptic Church", Author: "Iris Habib Elmasry", Price: 120, CategoryID: categories[2].ID, Available: true},
		{Name: "St Anthony the Great", Author: "St Athanasius", Price: 40, CategoryID: categories[3].ID, Available: true},
	}
	for i := range books {
		if err := db.Create(&books[i]).Error; err != nil {
			log.Printf("Failed to seed book %s: %v", books[i].Name, err)
		}
	}

	log.Println("Seeded admin account and starter catalog")
}

func healthCheck(c *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}
