package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-battle/internal/app"
	"quiz-battle/internal/config"
	"quiz-battle/internal/domain"
	"quiz-battle/internal/infra/memory"
	pginfra "quiz-battle/internal/infra/postgres"
	redisinfra "quiz-battle/internal/infra/redis"
	transport "quiz-battle/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz battle server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.BankLoader = memory.NewStaticBankLoader(sampleBank())
	if pool != nil {
		loader = pginfra.NewBankLoader(pool)
	}

	bankTTL := config.TTLDuration(cfg.Bank.TTL, 10*time.Minute)
	var bank app.QuestionRepository
	if redisClient != nil {
		bank = redisinfra.NewBankRepository(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewBankRepository(loader, bankTTL)
	}

	progressTTL := config.TTLDuration(cfg.Progress.TTL, 24*time.Hour)
	var progress app.ProgressStore
	if redisClient != nil {
		progress = redisinfra.NewProgressStore(redisClient, progressTTL)
	} else {
		progress = memory.NewProgressStore(progressTTL)
	}

	var matches app.MatchStore
	if redisClient != nil {
		matches = redisinfra.NewMatchStore(redisClient, redisTTL)
	} else {
		matches = memory.NewMatchStore()
	}

	var players app.PlayerRepository
	if pool != nil {
		players = pginfra.NewPlayerStore(pool)
	} else {
		players = memory.NewPlayerStore(cfg.Battle.StartingBoosters)
	}

	service := app.NewMatchService(cfg.BattleConfig(), bank, players, progress, matches)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz battle service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleBank provides a minimal question set for running without Postgres;
// production deployments load the bank from the questions table.
func sampleBank() domain.QuestionBank {
	return domain.QuestionBank{
		Questions: []domain.Question{
			{ID: "q1", Prompt: "What is the largest planet in the solar system?", Options: []string{"Earth", "Jupiter", "Saturn", "Neptune"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
			{ID: "q2", Prompt: "How many continents are there?", Options: []string{"5", "6", "7", "8"}, CorrectIndex: 2, Difficulty: domain.DifficultyEasy},
			{ID: "q3", Prompt: "Which element has the symbol O?", Options: []string{"Gold", "Oxygen", "Osmium", "Silver"}, CorrectIndex: 1, Difficulty: domain.DifficultyEasy},
			{ID: "q4", Prompt: "What is the capital of Australia?", Options: []string{"Sydney", "Melbourne", "Canberra", "Perth"}, CorrectIndex: 2, Difficulty: domain.DifficultyMedium},
			{ID: "q5", Prompt: "In which year did the Berlin Wall fall?", Options: []string{"1987", "1989", "1991", "1993"}, CorrectIndex: 1, Difficulty: domain.DifficultyMedium},
			{ID: "q6", Prompt: "Which ocean is the deepest?", Options: []string{"Atlantic", "Indian", "Arctic", "Pacific"}, CorrectIndex: 3, Difficulty: domain.DifficultyMedium},
			{ID: "q7", Prompt: "Who composed The Four Seasons?", Options: []string{"Bach", "Vivaldi", "Mozart", "Handel"}, CorrectIndex: 1, Difficulty: domain.DifficultyHard},
			{ID: "q8", Prompt: "What is the smallest prime number greater than 100?", Options: []string{"101", "103", "107", "109"}, CorrectIndex: 0, Difficulty: domain.DifficultyHard},
		},
	}
}
