package main

import (
	"database/sql"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/handywriterz/submissions/pkg/config"
	"github.com/handywriterz/submissions/pkg/files"
	"github.com/handywriterz/submissions/pkg/logger"
	"github.com/handywriterz/submissions/pkg/middleware"
	"github.com/handywriterz/submissions/pkg/notify"
	"github.com/handywriterz/submissions/pkg/order"
	"github.com/handywriterz/submissions/pkg/storage"
	"github.com/handywriterz/submissions/pkg/submission"
)

func main() {
	cfg := config.Parse()
	lg := logger.Run(cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("unable to reach PostgreSQL: %v", err)
	}

	ordersRepo := order.NewOrderRepo(db)
	orderHandler := order.NewHandler(ordersRepo)

	storageClient := storage.NewClient(cfg.StorageAddress, cfg.SendTimeout)
	reconciler := files.NewReconciler(storageClient)

	channels := []notify.Channel{
		notify.NewEmailChannel(cfg.EmailGatewayAddress, cfg.SendTimeout, cfg.FromEmail, cfg.AdminEmails),
		notify.NewChatChannel(cfg.ChatGatewayAddress, cfg.SendTimeout, cfg.ChatRoomID),
		notify.NewInAppChannel(ordersRepo),
	}

	submissionService := submission.NewService(ordersRepo, reconciler, channels, cfg.SendTimeout)
	submissionHandler := submission.NewHandler(submissionService)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	// Submission pipeline
	api.HandleFunc("/submissions", submissionHandler.Submit).Methods("POST")

	// Order dashboard
	api.HandleFunc("/orders/{orderId}", orderHandler.GetOrder).Methods("GET")
	api.HandleFunc("/orders/{orderId}/status", orderHandler.UpdateStatus).Methods("POST")
	api.HandleFunc("/users/{userId}/orders", orderHandler.GetUserOrders).Methods("GET")

	logMiddleware := middleware.NewLoggingMiddleware(lg)
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)

	log.Printf("Serving at http://%s/", cfg.RunAddress)
	log.Fatalln(http.ListenAndServe(cfg.RunAddress, r))
}
