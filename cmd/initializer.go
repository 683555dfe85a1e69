package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"ridereminder/internal/auth"
	"ridereminder/internal/config"
	"ridereminder/internal/geo"
	"ridereminder/internal/handlers"
	"ridereminder/internal/repositories"
	"ridereminder/internal/services"
	"ridereminder/internal/uber"
)

type application struct {
	errorLog       *log.Logger
	infoLog        *log.Logger
	cfg            config.Config
	db             *sql.DB
	tokens         *auth.Manager
	requestHandler *handlers.RequestHandler
	userRepo       *repositories.UserRepository
	requestRepo    *repositories.RequestRepository
	tripRepo       *repositories.TripRepository
}

func initializeApp(db *sql.DB, rdb *redis.Client, cfg config.Config, errorLog, infoLog *log.Logger) (*application, error) {
	tokens, err := auth.NewManager(cfg.Auth.SigningKey)
	if err != nil {
		return nil, err
	}

	// Repositories
	userRepo := repositories.UserRepository{DB: db}
	requestRepo := repositories.RequestRepository{DB: db}
	tripRepo := repositories.TripRepository{DB: db}

	// External clients
	httpClient := &http.Client{Timeout: 10 * time.Second}
	geocoder := geo.NewCachedGeocoder(geo.NewGoogleClient(httpClient, cfg.Geocoder.APIKey), rdb, 0)
	rideAPI := uber.NewClient(httpClient, uber.Config{
		BaseURL:     cfg.Uber.BaseURL,
		SandboxURL:  cfg.Uber.SandboxBaseURL,
		ServerToken: cfg.Uber.ServerToken,
	})

	// Services
	requestService := &services.RequestService{
		UserRepo:    &userRepo,
		RequestRepo: &requestRepo,
		TripRepo:    &tripRepo,
		Geocoder:    geocoder,
		RideAPI:     rideAPI,
	}

	// Handlers
	requestHandler := &handlers.RequestHandler{Service: requestService}

	return &application{
		errorLog:       errorLog,
		infoLog:        infoLog,
		cfg:            cfg,
		db:             db,
		tokens:         tokens,
		requestHandler: requestHandler,
		userRepo:       &userRepo,
		requestRepo:    &requestRepo,
		tripRepo:       &tripRepo,
	}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}
