package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/nivash/building-service/internal/app"
	"github.com/nivash/building-service/internal/config"
	"github.com/nivash/building-service/internal/constants"
	"github.com/nivash/building-service/internal/controllers"
	"github.com/nivash/building-service/internal/middleware"
	"github.com/nivash/building-service/internal/models"
	"github.com/nivash/building-service/internal/repositories"
	"github.com/nivash/building-service/internal/routes"
	"github.com/nivash/building-service/internal/services"
	"github.com/nivash/building-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize building-service:", err)
	}
	defer application.Close()

	// Repositories
	userRepo := repositories.NewUserRepository(application.DB)
	apartmentRepo := repositories.NewApartmentRepository(application.DB)
	agreementRepo := repositories.NewAgreementRepository(application.DB)
	couponRepo := repositories.NewCouponRepository(application.DB)
	paymentRepo := repositories.NewPaymentRepository(application.DB)
	announcementRepo := repositories.NewAnnouncementRepository(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := app.SeedAllTestData(context.Background(), apartmentRepo, couponRepo, userRepo, agreementRepo); err != nil {
			utils.Logger.Fatal("Failed to seed test data:", err)
		}
	}

	// Services
	userService := services.NewUserService(userRepo)
	apartmentService := services.NewApartmentService(apartmentRepo)
	agreementService := services.NewAgreementService(agreementRepo, apartmentRepo, userRepo)
	couponService := services.NewCouponService(couponRepo)
	announcementService := services.NewAnnouncementService(announcementRepo)
	statsService := services.NewStatsService(userRepo, apartmentRepo, agreementRepo, couponRepo, paymentRepo, announcementRepo)
	receiptService := services.NewReceiptService(cfg)
	stripeGateway := services.NewStripeGateway(cfg)
	paymentService := services.NewPaymentService(cfg, agreementRepo, paymentRepo, couponService, stripeGateway, receiptService)

	// Controllers
	healthController := controllers.NewHealthController(application)
	userController := controllers.NewUserController(userService)
	apartmentController := controllers.NewApartmentController(apartmentService)
	agreementController := controllers.NewAgreementController(agreementService)
	couponController := controllers.NewCouponController(couponService)
	paymentController := controllers.NewPaymentController(paymentService)
	announcementController := controllers.NewAnnouncementController(announcementService)
	adminController := controllers.NewAdminController(agreementService, couponService, announcementService, userService, statsService)

	// Router setup
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.Apartments, apartmentController.ListApartmentsHandler).Methods(http.MethodGet)

	// Authenticated routes (any role)
	authed := router.NewRoute().Subrouter()
	authed.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	authed.HandleFunc(routes.UsersMe, userController.SyncProfileHandler).Methods(http.MethodPost)
	authed.HandleFunc(routes.UsersMe, userController.GetProfileHandler).Methods(http.MethodGet)
	authed.HandleFunc(routes.UsersMe, userController.UpdateProfileHandler).Methods(http.MethodPatch)
	authed.HandleFunc(routes.Announcements, announcementController.ListAnnouncementsHandler).Methods(http.MethodGet)
	authed.HandleFunc(routes.Coupons, couponController.ListAvailableCouponsHandler).Methods(http.MethodGet)

	// Routes for plain users (agreement requests)
	userGated := router.NewRoute().Subrouter()
	userGated.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	userGated.Use(middleware.RequireRole(userRepo, models.RoleUser, models.RoleMember, models.RoleAdmin))
	userGated.HandleFunc(routes.Agreements, agreementController.RequestAgreementHandler).Methods(http.MethodPost)
	userGated.HandleFunc(routes.Agreements, agreementController.ListAgreementsHandler).Methods(http.MethodGet)

	// Member routes (payment workflow)
	memberGated := router.NewRoute().Subrouter()
	memberGated.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	memberGated.Use(middleware.RequireRole(userRepo, models.RoleMember, models.RoleAdmin))
	memberGated.HandleFunc(routes.AgreementActive, agreementController.GetActiveAgreementHandler).Methods(http.MethodGet)
	memberGated.HandleFunc(routes.CouponValidate, couponController.ValidateCouponHandler).Methods(http.MethodGet)
	memberGated.HandleFunc(routes.PaymentIntent, paymentController.CreatePaymentIntentHandler).Methods(http.MethodPost)
	memberGated.HandleFunc(routes.Payments, paymentController.RecordPaymentHandler).Methods(http.MethodPost)
	memberGated.HandleFunc(routes.Payments, paymentController.ListPaymentsHandler).Methods(http.MethodGet)

	// Admin routes
	adminGated := router.NewRoute().Subrouter()
	adminGated.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	adminGated.Use(middleware.RequireRole(userRepo, models.RoleAdmin))
	adminGated.HandleFunc(routes.AdminAgreements, adminController.ListPendingAgreementsHandler).Methods(http.MethodGet)
	adminGated.HandleFunc(routes.AdminAgreementByID, adminController.ReviewAgreementHandler).Methods(http.MethodPatch)
	adminGated.HandleFunc(routes.AdminCoupons, adminController.ListCouponsHandler).Methods(http.MethodGet)
	adminGated.HandleFunc(routes.AdminCoupons, adminController.CreateCouponHandler).Methods(http.MethodPost)
	adminGated.HandleFunc(routes.AdminCoupons, adminController.UpdateCouponHandler).Methods(http.MethodPatch)
	adminGated.HandleFunc(routes.AdminCoupons, adminController.DeleteCouponHandler).Methods(http.MethodDelete)
	adminGated.HandleFunc(routes.AdminAnnouncements, adminController.CreateAnnouncementHandler).Methods(http.MethodPost)
	adminGated.HandleFunc(routes.AdminAnnouncementByID, adminController.UpdateAnnouncementHandler).Methods(http.MethodPatch)
	adminGated.HandleFunc(routes.AdminAnnouncementByID, adminController.DeleteAnnouncementHandler).Methods(http.MethodDelete)
	adminGated.HandleFunc(routes.AdminMembers, adminController.ListMembersHandler).Methods(http.MethodGet)
	adminGated.HandleFunc(routes.AdminMemberByEmail, adminController.RemoveMemberHandler).Methods(http.MethodPatch)
	adminGated.HandleFunc(routes.AdminAdminByEmail, adminController.MakeAdminHandler).Methods(http.MethodPatch)
	adminGated.HandleFunc(routes.AdminStats, adminController.GetStatsHandler).Methods(http.MethodGet)

	// Cron: hourly coupon expiry sweep
	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc(constants.CouponExpiryCronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.CouponExpiryJobTimeout)
		defer cancel()
		if err := couponService.DisableExpired(ctx); err != nil {
			utils.Logger.WithError(err).Error("Failed to disable expired coupons")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule coupon expiry cron")
	}
	c.Start()
	utils.Logger.Info("Scheduled coupon expiry cron job")

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, constants.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("building-service failed to start:", err)
	}
}
