package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/landmark/pkg/api"
	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/commands"
	"github.com/cbodonnell/landmark/pkg/config"
	"github.com/cbodonnell/landmark/pkg/events"
	"github.com/cbodonnell/landmark/pkg/landmark"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/network"
	"github.com/cbodonnell/landmark/pkg/queue"
	"github.com/cbodonnell/landmark/pkg/repositories"
	"github.com/cbodonnell/landmark/pkg/version"
	"github.com/cbodonnell/landmark/pkg/workers"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file to load before reading the environment")
	port := flag.Int("port", 0, "WebSocket port to listen on (overrides LANDMARK_PORT)")
	tcpPort := flag.Int("tcp-port", -1, "TCP port to listen on, 0 disables (overrides LANDMARK_TCP_PORT)")
	apiPort := flag.Int("api-port", -1, "HTTP API port to listen on, 0 disables (overrides LANDMARK_API_PORT)")
	logLevel := flag.String("log-level", "", "Log level (overrides LANDMARK_LOG_LEVEL)")
	databaseURL := flag.String("database-url", "", "memory://, sqlite://, postgresql:// or redis:// url (overrides LANDMARK_DATABASE_URL)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *tcpPort >= 0 {
		cfg.TCPPort = *tcpPort
	}
	if *apiPort >= 0 {
		cfg.APIPort = *apiPort
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *databaseURL != "" {
		cfg.DatabaseURL = *databaseURL
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", logger.Level())

	log.Info("Starting landmark server version %s", version.Get())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, err := repositories.New(ctx, cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(context.Background())

	var authProvider authproviders.AuthProvider
	if cfg.FirebaseProjectID != "" {
		authProvider, err = authproviders.NewFirebaseAuthProvider(ctx, cfg.FirebaseProjectID, cfg.FirebaseAPIKey)
		if err != nil {
			panic(fmt.Sprintf("Failed to create Firebase auth provider: %v", err))
		}
		log.Info("Verifying logins with Firebase project %s", cfg.FirebaseProjectID)
	} else {
		authProvider = authproviders.NewTrustedAuthProvider()
		log.Warn("No Firebase project configured, trusting user ids presented by hosts")
	}

	clientManager := network.NewClientManager()
	hostEventQueue := queue.NewInMemoryQueue(cfg.QueueSize)

	router := commands.NewRouter()
	bus := events.NewBus()

	service := landmark.NewService(landmark.NewServiceOptions{
		Landmarks: repository,
		Deaths:    repository,
		Host:      clientManager,
	})
	if err := service.Register(router, bus); err != nil {
		panic(fmt.Sprintf("Failed to register landmark service: %v", err))
	}
	helpReply := func(ctx context.Context, userID string, text string) error {
		return clientManager.SendMessage(ctx, userID, messages.ChatCategoryInfo, text)
	}
	if err := router.Register(commands.HelpCommand(router, helpReply)); err != nil {
		panic(fmt.Sprintf("Failed to register help command: %v", err))
	}

	hostEventWorker := workers.NewHostEventWorker(workers.NewHostEventWorkerOptions{
		HostEventQueue: hostEventQueue,
		Positions:      clientManager,
		Bus:            bus,
		Router:         router,
		Host:           clientManager,
		Interval:       cfg.EventInterval,
	})
	workerDone := make(chan struct{})
	go func() {
		hostEventWorker.Start(ctx)
		close(workerDone)
	}()

	var wsTLS *network.TLSConfig
	var apiTLS *api.TLSConfig
	if cfg.TLSCertFile != "" {
		wsTLS = &network.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
		apiTLS = &api.TLSConfig{CertFile: cfg.TLSCertFile, KeyFile: cfg.TLSKeyFile}
	}

	networkManager := network.NewNetworkManager(network.NewNetworkManagerOptions{
		AuthProvider:   authProvider,
		ClientManager:  clientManager,
		HostEventQueue: hostEventQueue,
		TCPPort:        cfg.TCPPort,
		WSPort:         cfg.Port,
		WSServerTLS:    wsTLS,
		OriginPatterns: cfg.AllowedOrigins,
	})
	networkManager.Start(ctx)

	var apiServer *api.APIServer
	switch {
	case cfg.APIEnabled():
		apiServer, err = api.NewAPIServer(api.NewAPIServerOptions{
			Port:         cfg.APIPort,
			TLS:          apiTLS,
			AuthProvider: authProvider,
			Landmarks:    repository,
			Deaths:       repository,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create API server: %v", err))
		}
		go apiServer.Start()
	case cfg.APIPort > 0:
		log.Warn("HTTP API disabled: it needs a Firebase project to verify bearer tokens")
	}

	<-ctx.Done()
	log.Info("Shutting down")

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			log.Error("Failed to stop API server: %v", err)
		}
	}
	<-workerDone
}
