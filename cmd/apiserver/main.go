package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingolink/internal/config"
	"lingolink/internal/handlers/apiserver"
	appKafka "lingolink/internal/kafka"
	"lingolink/internal/middleware"
	"lingolink/internal/notify"
	"lingolink/internal/prefs"
	appRedis "lingolink/internal/redis"
	"lingolink/internal/services"
	"lingolink/internal/storage"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Println("API 服务器配置加载成功。")

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("API 服务器数据库连接成功。")

	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("数据库表迁移失败: %v", err)
	}

	// 3. 初始化 Redis Client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("无法连接到 Redis: %v", err)
	}
	log.Println("成功连接到 Redis")

	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)

	// 4. 初始化偏好存储（默认内存后端，可切换为 Redis 持久化后端）
	prefDefaults := prefs.Preferences{Theme: cfg.Prefs.DefaultTheme}
	var prefStore prefs.Store
	switch cfg.Prefs.Backend {
	case "redis":
		prefStore = prefs.NewRedisStore(redisClient, prefDefaults)
	default:
		prefStore = prefs.NewMemoryStore(prefDefaults)
	}

	// 5. 初始化 Repositories 与事务管理器
	userRepo := storage.NewGormUserRepository(db)
	friendReqRepo := storage.NewGormFriendRequestRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	txManager := storage.NewGormTxManager(db)

	// 6. 初始化 Kafka Producer（好友事件通知）
	kfkProducer, err := appKafka.NewConfluentKafkaProducer(cfg.Kafka)
	if err != nil {
		log.Fatalf("无法创建 Kafka 生产者: %v", err)
	}
	defer kfkProducer.Close()

	// 7. 初始化 Services
	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	friendService := services.NewFriendService(txManager, userRepo, friendReqRepo, friendshipRepo, kfkProducer, cfg.Kafka)

	// 8. 初始化通知 Hub 与 Handlers
	hub := notify.NewHub()
	go hub.Run()

	authHandler := apiserver.NewAuthHandler(authService, tokenBlacklist)
	userHandler := apiserver.NewUserHandler(userService)
	friendHandler := apiserver.NewFriendHandler(friendService)
	prefsHandler := apiserver.NewPrefsHandler(prefStore)
	wsHandler := apiserver.NewWSHandler(hub, tokenBlacklist, cfg)

	// 9. 设置 HTTP 路由
	r := mux.NewRouter()

	// 9.1 认证路由（公开）
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist)

	// 9.2 API 子路由（需要认证）
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	apiRouter.HandleFunc("/auth/logout", authHandler.LogoutHandler).Methods(http.MethodPost)

	// 用户路由
	apiRouter.HandleFunc("/users/me", userHandler.GetMyProfileHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me", userHandler.UpdateMyProfileHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/me/onboarding", userHandler.OnboardingHandler).Methods(http.MethodPost)
	apiRouter.HandleFunc("/users/me/preferences", prefsHandler.GetPreferencesHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/me/preferences", prefsHandler.SetPreferencesHandler).Methods(http.MethodPut)
	apiRouter.HandleFunc("/users/search", userHandler.SearchUsersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/recommended", friendHandler.RecommendedUsersHandler).Methods(http.MethodGet)
	apiRouter.HandleFunc("/users/{userID:[0-9]+}", userHandler.GetUserByIDHandler).Methods(http.MethodGet)

	// 好友与好友请求路由
	apiRouter.HandleFunc("/friends", friendHandler.ListFriendsHandler).Methods(http.MethodGet)
	friendRequestRouter := apiRouter.PathPrefix("/friend-requests").Subrouter()
	friendRequestRouter.HandleFunc("", friendHandler.ListFriendRequestsHandler).Methods(http.MethodGet)
	friendRequestRouter.HandleFunc("/outgoing", friendHandler.ListOutgoingRequestsHandler).Methods(http.MethodGet)
	friendRequestRouter.HandleFunc("/{userID:[0-9]+}", friendHandler.SendFriendRequestHandler).Methods(http.MethodPost)
	friendRequestRouter.HandleFunc("/{requestID:[0-9]+}/accept", friendHandler.AcceptFriendRequestHandler).Methods(http.MethodPut)

	// 9.3 通知 WebSocket（令牌通过查询参数认证）
	r.HandleFunc("/ws", wsHandler.ServeWS).Methods(http.MethodGet)

	// 10. 启动好友事件 Kafka 消费者
	friendEventConsumer, err := appKafka.NewConfluentKafkaConsumer(cfg.Kafka)
	if err != nil {
		log.Fatalf("无法创建好友事件 Kafka 消费者: %v", err)
	}
	defer friendEventConsumer.Close()

	consumerCtx, cancelConsumers := context.WithCancel(context.Background())
	defer cancelConsumers()

	pusher := notify.NewFriendEventPusher(hub)
	go func() {
		topics := []string{cfg.Kafka.FriendEventTopic}
		log.Printf("Kafka 好友事件消费者启动，监听 topic: %s, GroupID: %s", cfg.Kafka.FriendEventTopic, cfg.Kafka.ConsumerGroup)
		err := friendEventConsumer.Consume(consumerCtx, topics, cfg.Kafka.ConsumerGroup, pusher.HandleFriendEvent)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Kafka 好友事件消费者错误: %v", err)
		}
		log.Println("Kafka 好友事件消费者 goroutine 已停止。")
	}()

	// 11. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)

	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}
	corsHandler := handlers.CORS(corsOptions...)(r)

	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        corsHandler,
		ReadTimeout:    cfg.APIServer.ReadTimeout,
		WriteTimeout:   cfg.APIServer.WriteTimeout,
		MaxHeaderBytes: cfg.APIServer.MaxHeaderBytes,
		IdleTimeout:    time.Second * 60,
	}

	go func() {
		log.Printf("API 服务器启动于 %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API 服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到关闭信号，正在关闭 API 服务器...")

	cancelConsumers() // Signal Kafka consumer to stop

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API 服务器强制关闭: %v", err)
	}

	log.Println("API 服务器已成功关闭")
}
