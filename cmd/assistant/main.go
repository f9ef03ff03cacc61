package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Pomiro/assistant/internal/ai"
	"github.com/Pomiro/assistant/internal/assistant"
	"github.com/Pomiro/assistant/internal/calendar"
	"github.com/Pomiro/assistant/internal/observability"
	"github.com/Pomiro/assistant/internal/profile"
	"github.com/Pomiro/assistant/internal/telegram"
	"github.com/Pomiro/assistant/internal/timeparse"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "assistant",
		Short: "Chat-driven calendar assistant",
	}
	rootCmd.AddCommand(serveCmd(), authCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prof, err := profile.Load()
			if err != nil {
				return err
			}
			if err := prof.Validate(); err != nil {
				return err
			}

			logger, closeLog, err := observability.NewLogger(prof.LogFile, prof.IsDev())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			provider := ai.NewProvider(&ai.Config{
				APIKey:  prof.LLMAPIKey,
				BaseURL: prof.LLMBaseURL,
				Model:   prof.LLMModel,
			})

			calendarSvc := calendar.NewService(calendar.Config{
				CredentialsFile: prof.GoogleCredentials,
				TokenFile:       prof.GoogleToken,
				CalendarID:      prof.CalendarID,
			}, logger)

			router := assistant.NewRouter(
				assistant.NewClassifier(provider),
				assistant.NewExtractor(provider),
				assistant.NewBuilder(timeparse.NewNormalizer()),
				calendarSvc,
				logger,
			)

			bot, err := telegram.New(prof.TelegramToken, router, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("starting the bot")
			return bot.Run(ctx)
		},
	}
}

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Google Calendar access and save the token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			prof, err := profile.Load()
			if err != nil {
				return err
			}

			config, err := calendar.OAuthConfigForAuthFlow(prof.GoogleCredentials)
			if err != nil {
				return err
			}

			authURL := config.AuthCodeURL("state-token")
			fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

			reader := bufio.NewReader(os.Stdin)
			code, err := reader.ReadString('\n')
			if err != nil {
				return err
			}

			token, err := calendar.ExchangeAuthCode(context.Background(), config, strings.TrimSpace(code))
			if err != nil {
				return err
			}

			if err := calendar.SaveToken(prof.GoogleToken, token); err != nil {
				return err
			}
			fmt.Printf("Token saved to %s\n", prof.GoogleToken)
			return nil
		},
	}
}
