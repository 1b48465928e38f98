package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"picfeed/pkg/config"
	"picfeed/pkg/db"
	"picfeed/pkg/feed"
	"picfeed/pkg/logger"
	"picfeed/pkg/middleware"
	"picfeed/pkg/post"
	"picfeed/pkg/sessions"
	"picfeed/pkg/storage"
	"picfeed/pkg/user"
	"picfeed/pkg/user/api"
)

func main() {
	seedFlag := flag.Bool("seed", false, "fill the database with fake users and posts, then exit")
	envFile := flag.String("env", ".env", "dotenv file to read")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalln("main:", err)
	}
	zl := logger.Run(cfg.LogLevel)
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		zl.Fatalf("main: %v", err)
	}
	defer sqlDB.Close()
	if err := db.Migrate(ctx, sqlDB); err != nil {
		zl.Fatalf("main: %v", err)
	}

	redisPool := &redis.Pool{
		MaxIdle:     8,
		IdleTimeout: 5 * time.Minute,
		Dial:        func() (redis.Conn, error) { return redis.DialURL(cfg.RedisAddr) },
	}
	defer redisPool.Close()

	bucket, serveImages, closeBucket, err := openStorage(ctx, cfg)
	if err != nil {
		zl.Fatalf("main: %v", err)
	}
	defer closeBucket()

	postsRepo := post.NewPostRepo(sqlDB)
	usersRepo := user.NewUserRepo(sqlDB)

	if *seedFlag {
		seed(ctx, usersRepo, postsRepo, bucket)
		return
	}

	sessionManager := sessions.NewSessionManager(cfg.SecretKey, redisPool)
	viewers := feed.NewViewers(postsRepo, bucket, cfg.MaxImageBytes)
	viewers.IdleTimeout = cfg.ViewerIdleTimeout
	go viewers.Run(ctx, time.Minute)
	feedHandler := feed.NewFeedHandler(viewers, cfg.MaxImageBytes)
	userHandler := api.NewUserHandler(usersRepo, sessionManager)
	userHandler.OnSignOut = viewers.Drop

	r := mux.NewRouter()

	logMiddleware := middleware.NewLoggingMiddleware(zl)
	r.Use(logMiddleware.SetupTracing)
	r.Use(logMiddleware.SetupLogging)
	r.Use(logMiddleware.AccessLog)

	auth := middleware.NewAuthMiddleware(sessionManager, usersRepo)
	r.Use(auth.Middleware)

	apiRouter := r.PathPrefix("/api").Subrouter()

	// Feed
	apiRouter.HandleFunc("/feed", feedHandler.Feed).Methods("GET")
	apiRouter.HandleFunc("/feed/bookmarks", feedHandler.ToggleBookmarks).Methods("POST")
	apiRouter.HandleFunc("/feed/likes", feedHandler.ToggleLikes).Methods("POST")

	// Posts
	apiRouter.HandleFunc("/posts", feedHandler.AddPost).Methods("POST")
	apiRouter.HandleFunc("/post/{post_id}/like", feedHandler.Like).Methods("POST")
	apiRouter.HandleFunc("/post/{post_id}/bookmark", feedHandler.Bookmark).Methods("POST")
	apiRouter.HandleFunc("/post/{post_id}/comments", feedHandler.AddComment).Methods("POST")

	// User
	apiRouter.HandleFunc("/register", userHandler.Register).Methods("POST")
	apiRouter.HandleFunc("/login", userHandler.LogIn).Methods("POST")
	apiRouter.HandleFunc("/logout", userHandler.LogOut).Methods("POST")

	if serveImages != nil {
		r.Handle(storage.ImagesPrefix+"{path:.*}", serveImages).Methods("GET")
	}
	r.Handle("/metrics", promhttp.Handler())

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(cors(r)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Errorf("main: shutdown: %v", err)
		}
	}()

	zl.Infof("serving at %s", cfg.PublicURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zl.Fatalf("main: %v", err)
	}
}

// openStorage returns the configured image bucket, the handler serving its
// objects when the app serves them itself, and a cleanup func.
func openStorage(ctx context.Context, cfg *config.Config) (feed.Bucket, http.Handler, func(), error) {
	if cfg.StorageDriver == config.StorageSupabase {
		s := storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket)
		return s, nil, func() { s.Close() }, nil
	}

	mongoCtx, mongoCtxCancel := context.WithTimeout(ctx, 3*time.Second)
	defer mongoCtxCancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, nil, err
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		return nil, nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			logger.Log(disconnectCtx).Errorf("main: failed disconnecting from MongoDB: %v", err)
		}
	}

	g, err := storage.NewGridFS(mongoClient.Database(cfg.MongoDatabase), cfg.StorageBucket, cfg.PublicURL)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return g, g, closeFn, nil
}
