package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/switchboard/internal/profile"
	"github.com/hrygo/switchboard/plugin/ai/router"
	"github.com/hrygo/switchboard/plugin/ai/session"
	"github.com/hrygo/switchboard/plugin/ai/timeout"
	"github.com/hrygo/switchboard/server"
	"github.com/hrygo/switchboard/store"
	"github.com/hrygo/switchboard/store/db"
)

var version = "0.1.0"

var (
	rootCmd = &cobra.Command{
		Use:           "switchboard",
		Short:         "A conversational front door that routes each message to the right assistant module.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(context.Background(), profileFromFlags())
		},
	}
)

func profileFromFlags() *profile.Profile {
	return &profile.Profile{
		Mode:                     viper.GetString("mode"),
		Addr:                     viper.GetString("addr"),
		Port:                     viper.GetInt("port"),
		Data:                     viper.GetString("data"),
		Driver:                   viper.GetString("driver"),
		DSN:                      viper.GetString("dsn"),
		Version:                  version,
		OpenAIAPIKey:             viper.GetString("openai-api-key"),
		OpenAIBaseURL:            viper.GetString("openai-base-url"),
		ChatModel:                viper.GetString("chat-model"),
		ClassifierModel:          viper.GetString("classifier-model"),
		AnthropicAPIKey:          viper.GetString("anthropic-api-key"),
		AnthropicModel:           viper.GetString("anthropic-model"),
		RemoteModuleURL:          viper.GetString("remote-module-url"),
		RemotePollAttempts:       viper.GetInt("remote-poll-attempts"),
		ClassifierEnterThreshold: viper.GetFloat64("classifier-enter-threshold"),
		ClassifierStayThreshold:  viper.GetFloat64("classifier-stay-threshold"),
		RegistrationThreshold:    viper.GetInt("registration-threshold"),
		HistoryCap:               viper.GetInt("history-cap"),
		MaxConcurrentCalls:       viper.GetInt("max-concurrent-calls"),
		ChatRateLimit:            viper.GetFloat64("chat-rate-limit"),
		ChatRateBurst:            viper.GetInt("chat-rate-burst"),
	}
}

// run serves until SIGINT or SIGTERM. Every startup failure is returned.
func run(ctx context.Context, instanceProfile *profile.Profile) error {
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return errors.Wrap(err, "failed to create db driver")
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to migrate")
	}

	s, err := server.NewServer(ctx, instanceProfile, storeInstance, nil)
	if err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to create server")
	}

	c := make(chan os.Signal, 1)
	// Trigger graceful shutdown on SIGINT or SIGTERM.
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(c)

	if err := s.Start(ctx); err != nil {
		_ = storeInstance.Close()
		return errors.Wrap(err, "failed to start server")
	}

	printGreetings(instanceProfile)

	go func() {
		<-c
		s.Shutdown(ctx)
		cancel()
	}()

	<-ctx.Done()
	return nil
}

func init() {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8000)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", "", "address of server")
	flags.Int("port", 8000, "port of server")
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver (sqlite or postgres)")
	flags.String("dsn", "", "database source name")
	flags.String("openai-api-key", "", "API key of the OpenAI-compatible provider")
	flags.String("openai-base-url", "", "base URL of the OpenAI-compatible provider")
	flags.String("chat-model", "", "chat-completion model")
	flags.String("classifier-model", "", "model used for intent classification")
	flags.String("anthropic-api-key", "", "API key of the Anthropic fallback provider")
	flags.String("anthropic-model", "", "Anthropic fallback model")
	flags.String("remote-module-url", "", "base URL of the remote legal/social module service")
	flags.Int("remote-poll-attempts", timeout.RemotePollAttempts, "polls of a pending remote job before giving up")
	flags.Float64("classifier-enter-threshold", router.DefaultEnterThreshold, "probability needed to enter psychology")
	flags.Float64("classifier-stay-threshold", router.DefaultStayThreshold, "probability needed to stay in psychology; sticky sessions skip classification, so it applies only to direct classifier use")
	flags.Int("registration-threshold", router.DefaultRegistrationThreshold, "user messages before an unregistered session must sign up")
	flags.Int("history-cap", session.DefaultHistoryCap, "messages kept per session")
	flags.Int("max-concurrent-calls", 8, "concurrent upstream model calls")
	flags.Float64("chat-rate-limit", 2, "chat requests per second per session")
	flags.Int("chat-rate-burst", 5, "chat request burst per session")

	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix("switchboard")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

func printGreetings(profile *profile.Profile) {
	if profile.IsDev() {
		println("Development mode is enabled")
		println("DSN: ", profile.DSN)
	}
	fmt.Printf(`---
Server profile
version: %s
data: %s
addr: %s
port: %d
mode: %s
driver: %s
---
`, profile.Version, profile.Data, profile.Addr, profile.Port, profile.Mode, profile.Driver)

	if len(profile.Addr) == 0 {
		fmt.Printf("Switchboard is listening on port %d\n", profile.Port)
	} else {
		fmt.Printf("Switchboard is listening on %s:%d\n", profile.Addr, profile.Port)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("switchboard exited", "error", err)
		os.Exit(1)
	}
}
