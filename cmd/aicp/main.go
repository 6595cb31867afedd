package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/andyjacy/aicommonplatform/internal/profile"
	"github.com/andyjacy/aicommonplatform/internal/version"
	"github.com/andyjacy/aicommonplatform/qa/cache"
	"github.com/andyjacy/aicommonplatform/qa/collab"
	"github.com/andyjacy/aicommonplatform/qa/intent"
	"github.com/andyjacy/aicommonplatform/qa/llm"
	"github.com/andyjacy/aicommonplatform/qa/metrics"
	"github.com/andyjacy/aicommonplatform/qa/pipeline"
	"github.com/andyjacy/aicommonplatform/qa/synthesis"
	"github.com/andyjacy/aicommonplatform/server"
	apiv1 "github.com/andyjacy/aicommonplatform/server/router/api/v1"
	"github.com/andyjacy/aicommonplatform/store"
	"github.com/andyjacy/aicommonplatform/store/db/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "aicp",
	Short: `Enterprise question-answering platform: classify, retrieve, query business systems, and synthesize answers with full execution traces.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env from the current directory; absence is fine.
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := &profile.Profile{
			Mode: viper.GetString("mode"),
			Addr: viper.GetString("addr"),
			Port: viper.GetInt("port"),
			Data: viper.GetString("data"),
			DSN:  viper.GetString("dsn"),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			panic(err)
		}
		instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)

		setupLogging(instanceProfile)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		dbDriver, err := sqlite.NewDB(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return
		}
		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return
		}
		defer storeInstance.Close()

		collector := metrics.NewCollector()
		orchestrator, err := buildPipeline(instanceProfile, collector)
		if err != nil {
			slog.Error("failed to build pipeline", "error", err)
			return
		}

		api := apiv1.NewAPIV1Service(instanceProfile, storeInstance, orchestrator, collector)
		s := server.NewServer(ctx, instanceProfile, api)

		c := make(chan os.Signal, 1)
		// Trigger graceful shutdown on SIGINT or SIGTERM.
		signal.Notify(c, terminationSignals...)
		go func() {
			<-c
			s.Shutdown(ctx)
			cancel()
		}()

		printGreetings(instanceProfile)

		if err := s.Start(ctx); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("failed to start server", "error", err)
				cancel()
			}
		}

		<-ctx.Done()
	},
}

// buildPipeline wires the classifier, collaborator adapters, synthesizer,
// cache and metrics into an orchestrator.
func buildPipeline(p *profile.Profile, collector *metrics.Collector) (*pipeline.Orchestrator, error) {
	llmService, err := llm.NewService(&llm.Config{
		Provider: p.LLMProvider,
		Model:    p.LLMModel,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Timeout:  p.LLMTimeout,
	})
	if err != nil {
		return nil, err
	}
	if !p.IsGeneratorConfigured() {
		slog.Warn("answer generator has no API key; generation will fall back to templated answers",
			"provider", p.LLMProvider,
		)
	}

	collaboratorTimeout := time.Duration(p.CollaboratorTimeout) * time.Second

	retriever := collab.NewRetrievalClient(collab.RetrievalConfig{
		BaseURL:    p.RetrievalURL,
		Timeout:    collaboratorTimeout,
		Confidence: p.RetrievalConfidence,
	})

	var agent collab.Agent
	if p.AgentURL != "" {
		agent = collab.NewAgentClient(collab.AgentConfig{
			BaseURL: p.AgentURL,
			Timeout: collaboratorTimeout,
		})
		slog.Info("using external business agent", "url", p.AgentURL)
	} else {
		agent = collab.NewStaticAgent(collab.AgentConfidence{
			Sales: p.AgentSalesConfidence,
			HR:    p.AgentHRConfidence,
		})
		slog.Info("using built-in static business agent")
	}

	generator := collab.NewGeneratorClient(llmService)

	return pipeline.New(pipeline.Config{
		Classifier:  intent.NewKeywordClassifier(),
		Retriever:   retriever,
		Agent:       agent,
		Synthesizer: synthesis.NewSynthesizer(generator),
		Generator:   generator,
		Cache:       cache.NewAnswerCache(p.CacheCapacity, time.Duration(p.CacheTTL)*time.Second),
		Metrics:     collector,
	}), nil
}

func setupLogging(p *profile.Profile) {
	level := slog.LevelInfo
	if p.IsDev() {
		level = slog.LevelDebug
	}
	var handler slog.Handler
	if p.Mode == "prod" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

func printGreetings(p *profile.Profile) {
	fmt.Printf("AI Common Platform %s started successfully!\n", p.Version)
	if p.IsDev() {
		fmt.Fprintf(os.Stderr, "Development mode is enabled\nDatabase: %s\n", p.DSN)
	}
	fmt.Printf("Mode: %s\n", p.Mode)
	if len(p.Addr) == 0 {
		fmt.Printf("Server running on port %d\n", p.Port)
	} else {
		fmt.Printf("Server running on %s:%d\n", p.Addr, p.Port)
	}
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("port", 8001)

	rootCmd.PersistentFlags().String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8001, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("dsn", "", "database source name (sqlite file path)")

	for _, flag := range []string{"mode", "addr", "port", "data", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("aicp")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
