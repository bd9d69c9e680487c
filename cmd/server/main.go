package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"acenta-backend/internal/audit"
	"acenta-backend/internal/auth"
	"acenta-backend/internal/cariaccount"
	"acenta-backend/internal/cariself"
	"acenta-backend/internal/cash"
	"acenta-backend/internal/catalog"
	"acenta-backend/internal/config"
	"acenta-backend/internal/currency"
	"acenta-backend/internal/database"
	"acenta-backend/internal/extrasale"
	"acenta-backend/internal/hotel"
	"acenta-backend/internal/jobs"
	"acenta-backend/internal/ledger"
	"acenta-backend/internal/notification"
	"acenta-backend/internal/payroll"
	"acenta-backend/internal/reservation"
	"acenta-backend/internal/servicepurchase"
	"acenta-backend/internal/settlement"
	"acenta-backend/internal/transaction"
	"acenta-backend/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] .env dosyası bulunamadı, ortam değişkenleri kullanılacak")
	}

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Veritabanına bağlanılamadı: %v", err)
	}

	// Servisler
	engine := ledger.NewEngine()
	settlementSvc := settlement.NewService(engine)
	auditLog := audit.NewLogger(db)
	notifySvc := notification.NewService(db)
	pushSvc := hotel.NewPushService(db, cfg)
	syncSvc := hotel.NewSyncService(db)
	currencySvc := currency.NewService()

	// Handler'lar
	authHandler := auth.NewHandler(db, cfg)
	userHandler := users.NewHandler(db, auditLog)
	cariHandler := cariaccount.NewHandler(db, auditLog)
	txHandler := transaction.NewHandler(db, engine, settlementSvc, auditLog)
	reservationHandler := reservation.NewHandler(db, engine, auditLog)
	extraSaleHandler := extrasale.NewHandler(db, engine, auditLog)
	purchaseHandler := servicepurchase.NewHandler(db, engine, auditLog)
	cariSelfHandler := cariself.NewHandler(db, engine, notifySvc, auditLog)
	hotelHandler := hotel.NewHandler(db, pushSvc, syncSvc, auditLog)
	cashHandler := cash.NewHandler(db)
	catalogHandler := catalog.NewHandler(db)
	payrollHandler := payroll.NewHandler(db, engine, auditLog)
	currencyHandler := currency.NewHandler(currencySvc)
	notifyHandler := notification.NewHandler(db)
	auditHandler := audit.NewHandler(db)

	app := fiber.New(fiber.Config{
		AppName: "acenta-backend",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Kimlik doğrulama (public)
	api.Post("/auth/register", authHandler.RegisterCompany())
	api.Post("/auth/login", authHandler.Login())
	api.Post("/auth/cari-login", authHandler.CariLogin())

	// Buradan sonrası JWT ister
	api.Use(auth.JWTMiddleware(cfg))
	api.Get("/auth/me", authHandler.Me())

	// Cari panel (cari token)
	panel := api.Group("/cari-panel", auth.RequireCari())
	panel.Post("/reservations", cariSelfHandler.Submit())
	panel.Put("/reservations/:id", cariSelfHandler.EditSubmission())
	panel.Get("/reservations", cariSelfHandler.ListMine())
	panel.Get("/balance", cariSelfHandler.MyBalance())

	// Firma kullanıcısı uçları
	user := api.Group("", auth.RequireUser())

	// Kullanıcı yönetimi (admin)
	admin := user.Group("/users", auth.RequireAdmin())
	admin.Get("/", userHandler.List())
	admin.Post("/", userHandler.Create())
	admin.Put("/:id", userHandler.Update())
	admin.Delete("/:id", userHandler.Delete())

	// Cari hesaplar
	user.Get("/cari-accounts", cariHandler.List())
	user.Get("/cari-accounts/:id", cariHandler.Get())
	user.Post("/cari-accounts", cariHandler.Create())
	user.Put("/cari-accounts/:id", cariHandler.Update())
	user.Delete("/cari-accounts/:id", cariHandler.Delete())
	user.Post("/cari-accounts/:id/panel-access", cariHandler.EnablePanelAccess())
	user.Post("/cari-accounts/:id/recalculate", txHandler.Recalculate())

	// İşlemler ve tahsilatlar
	user.Get("/transactions", txHandler.List())
	user.Post("/transactions", txHandler.Create())
	user.Put("/transactions/:id", txHandler.Update())
	user.Delete("/transactions/:id", txHandler.Delete())
	user.Get("/checks", txHandler.ListChecks())
	user.Post("/checks/:id/collect", txHandler.CollectCheck())

	// Tur modülü
	tour := user.Group("", auth.RequireModule(db, "tour"))
	tour.Get("/reservations", reservationHandler.List())
	tour.Get("/reservations/pending", cariSelfHandler.ListPending())
	tour.Get("/reservations/:id", reservationHandler.Get())
	tour.Post("/reservations", reservationHandler.Create())
	tour.Put("/reservations/:id", reservationHandler.Update())
	tour.Post("/reservations/:id/cancel", reservationHandler.Cancel())
	tour.Post("/reservations/:id/approve", cariSelfHandler.Approve())
	tour.Post("/reservations/:id/reject", cariSelfHandler.Reject())
	tour.Delete("/reservations/:id", reservationHandler.Delete())

	tour.Get("/extra-sales", extraSaleHandler.List())
	tour.Post("/extra-sales", extraSaleHandler.Create())
	tour.Put("/extra-sales/:id", extraSaleHandler.Update())
	tour.Post("/extra-sales/:id/cancel", extraSaleHandler.Cancel())
	tour.Delete("/extra-sales/:id", extraSaleHandler.Delete())

	tour.Get("/service-purchases", purchaseHandler.List())
	tour.Post("/service-purchases", purchaseHandler.Create())
	tour.Put("/service-purchases/:id", purchaseHandler.Update())
	tour.Delete("/service-purchases/:id", purchaseHandler.Delete())

	tour.Get("/tour-types", catalogHandler.ListTourTypes())
	tour.Post("/tour-types", catalogHandler.CreateTourType())
	tour.Put("/tour-types/:id", catalogHandler.UpdateTourType())
	tour.Delete("/tour-types/:id", catalogHandler.DeleteTourType())

	tour.Get("/seasonal-prices", catalogHandler.ListSeasonalPrices())
	tour.Post("/seasonal-prices", catalogHandler.CreateSeasonalPrice())
	tour.Put("/seasonal-prices/:id", catalogHandler.UpdateSeasonalPrice())
	tour.Delete("/seasonal-prices/:id", catalogHandler.DeleteSeasonalPrice())

	// Otel modülü
	hotelGrp := user.Group("/hotels", auth.RequireModule(db, "hotel"))
	hotelGrp.Get("/", hotelHandler.ListHotels())
	hotelGrp.Post("/", hotelHandler.CreateHotel())
	hotelGrp.Post("/rooms", hotelHandler.CreateRoom())
	hotelGrp.Post("/reservations", hotelHandler.CreateReservation())
	hotelGrp.Delete("/reservations/:id", hotelHandler.DeleteReservation())
	hotelGrp.Get("/reservations/:id/push-logs", hotelHandler.ListPushLogs())
	hotelGrp.Get("/push-queue", hotelHandler.ListQueue())
	hotelGrp.Post("/push-queue/:id/retry", hotelHandler.RetryQueueItem())
	hotelGrp.Put("/:id", hotelHandler.UpdateHotel())
	hotelGrp.Get("/:id/rooms", hotelHandler.ListRooms())
	hotelGrp.Get("/:id/reservations", hotelHandler.ListReservations())
	hotelGrp.Get("/:id/calendar", hotelHandler.Calendar())
	hotelGrp.Post("/:id/sync", hotelHandler.SyncICS())

	// Kasa / banka
	user.Get("/cash-accounts", cashHandler.List())
	user.Post("/cash-accounts", cashHandler.Create())
	user.Delete("/cash-accounts/:id", cashHandler.Delete())
	user.Get("/bank-accounts", cashHandler.ListBanks())
	user.Post("/bank-accounts", cashHandler.CreateBank())
	user.Put("/bank-accounts/:id", cashHandler.UpdateBank())

	// Ödeme tipleri
	user.Get("/payment-types", catalogHandler.ListPaymentTypes())
	user.Post("/payment-types", catalogHandler.CreatePaymentType())
	user.Delete("/payment-types/:id", catalogHandler.DeletePaymentType())

	// Personel / bordro
	user.Get("/staff", payrollHandler.ListStaff())
	user.Post("/staff", payrollHandler.CreateStaff())
	user.Get("/payroll/payments", payrollHandler.ListPayments())
	user.Post("/payroll/payments", payrollHandler.CreatePayment())

	// Diğer
	user.Get("/currency-rates", currencyHandler.Get())
	user.Get("/notifications", notifyHandler.List())
	user.Put("/notifications/:id/read", notifyHandler.MarkRead())
	user.Get("/activity-logs", auditHandler.List())

	// Zamanlanmış işler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if cfg.SchedulerEnabled {
		scheduler := jobs.NewScheduler(db, cfg, pushSvc, syncSvc, settlementSvc)
		scheduler.Start(ctx)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("[INFO] Kapatma sinyali alındı, sunucu durduruluyor...")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("[ERROR] Sunucu kapatılamadı: %v", err)
		}
	}()

	log.Printf("[INFO] Sunucu %s portunda dinliyor", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("[FATAL] Sunucu başlatılamadı: %v", err)
	}
}
