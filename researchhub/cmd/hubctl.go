// Command hubctl manages research hub accounts directly against the
// configured store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"researchhub/researchhub/config"
	"researchhub/researchhub/controllers"
	"researchhub/researchhub/services/token"
	"researchhub/researchhub/sources"
	"researchhub/researchhub/sources/memory"
	"researchhub/researchhub/sources/stores"
	"researchhub/researchhub/types"
	"researchhub/researchhub/utils/apperrors"
	"researchhub/researchhub/utils/color"
	"researchhub/researchhub/utils/logging"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "hubctl",
	Short:         "Manage research hub accounts",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo account if it does not exist",
	Long: `Create the demo account (testuser / password123) in the configured store.

Running seed twice is harmless; an existing account is left untouched.`,
	RunE: withStore(runSeed),
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Register a new account",
	Long: `Register a new account with the same rules the API applies.

Examples:
  hubctl create-user --username ada --email ada@example.com \
    --full-name "Ada Lovelace" --password analytical`,
	RunE: withStore(runCreateUser),
}

var deactivateUserCmd = &cobra.Command{
	Use:   "deactivate-user",
	Short: "Block an account from authenticating",
	RunE:  withStore(runDeactivateUser),
}

var (
	cfg config.Config

	flagUsername string
	flagEmail    string
	flagFullName string
	flagPassword string
)

func init() {
	createUserCmd.Flags().StringVar(&flagUsername, "username", "", "account username (required)")
	createUserCmd.Flags().StringVar(&flagEmail, "email", "", "account email (required)")
	createUserCmd.Flags().StringVar(&flagFullName, "full-name", "", "display name (required)")
	createUserCmd.Flags().StringVar(&flagPassword, "password", "", "initial password (required)")
	for _, name := range []string{"username", "email", "full-name", "password"} {
		_ = createUserCmd.MarkFlagRequired(name)
	}

	deactivateUserCmd.Flags().StringVar(&flagUsername, "username", "", "account username (required)")
	_ = deactivateUserCmd.MarkFlagRequired("username")

	rootCmd.AddCommand(seedCmd, createUserCmd, deactivateUserCmd)
}

func main() {
	cfg = config.LoadConfig()
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.Error("Error:"), describe(err))
		logging.Sync()
		os.Exit(1)
	}
}

// withStore opens the configured store for the duration of one command.
// Unlike the server there is no in-memory fallback: writing accounts into a
// throwaway store would silently lose them.
func withStore(run func(ctx context.Context, store sources.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if cfg.StoreDriver == config.DriverMemory {
			return fmt.Errorf("hubctl needs a persistent store, STORE_DRIVER is %q", cfg.StoreDriver)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		store, err := stores.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		runID := uuid.New().String()[:8]
		logging.AppLogger.Info("hubctl command started",
			zap.String("command", cmd.Name()),
			zap.String("run_id", runID),
			zap.String("store", store.Driver()),
		)
		return run(ctx, store)
	}
}

func runSeed(ctx context.Context, store sources.Store) error {
	existing, err := store.GetUserByUsername(ctx, memory.DemoUsername)
	if err != nil {
		return err
	}
	if existing != nil {
		fmt.Println(color.Warning(fmt.Sprintf("demo account %q already exists", memory.DemoUsername)))
		return nil
	}
	user, err := authController(store).CreateUser(ctx, types.RegisterRequest{
		Email:    memory.DemoEmail,
		Username: memory.DemoUsername,
		FullName: memory.DemoFullName,
		Password: memory.DemoPassword,
	})
	if err != nil {
		return err
	}
	fmt.Println(color.Success(fmt.Sprintf("created demo account %q", user.Username)), color.Info(user.ID))
	return nil
}

func runCreateUser(ctx context.Context, store sources.Store) error {
	user, err := authController(store).CreateUser(ctx, types.RegisterRequest{
		Email:    flagEmail,
		Username: flagUsername,
		FullName: flagFullName,
		Password: flagPassword,
	})
	if err != nil {
		return err
	}
	fmt.Println(color.Success(fmt.Sprintf("created account %q", user.Username)), color.Info(user.ID))
	return nil
}

func runDeactivateUser(ctx context.Context, store sources.Store) error {
	user, err := store.GetUserByUsername(ctx, flagUsername)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no account named %q", flagUsername)
	}
	if err := store.UpdateUser(ctx, user.ID, map[string]any{sources.FieldIsActive: false}); err != nil {
		return err
	}
	fmt.Println(color.Success(fmt.Sprintf("deactivated account %q", user.Username)))
	return nil
}

// CreateUser never issues tokens, so the secret is irrelevant here.
func authController(store sources.Store) *controllers.AuthController {
	return controllers.NewAuthController(store, token.NewService("hubctl", 0))
}

// describe prefers the human message of an AppError over its debug form.
func describe(err error) string {
	if appErr := apperrors.From(err); appErr.Type != apperrors.TypeInternal {
		return appErr.Message
	}
	return err.Error()
}
