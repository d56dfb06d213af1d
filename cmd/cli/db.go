package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/spendtrack/internal/adapter/repository/postgres"
	"github.com/iho/spendtrack/internal/domain"
	"github.com/iho/spendtrack/internal/infrastructure/auth"
	"github.com/iho/spendtrack/internal/infrastructure/config"
	"github.com/iho/spendtrack/internal/infrastructure/postgres"
)

var seedCategories = []string{"Food", "Transport", "Rent", "Utilities", "Entertainment", "Health", "Shopping"}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrations(cfg.DatabaseURL)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return postgres.RunMigrationsDown(cfg.DatabaseURL)
			},
		},
	)

	return cmd
}

func seedCmd() *cobra.Command {
	var (
		userID string
		count  int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert fake transactions for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			if err := domain.ValidateUserID(userID); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.InitSchema(ctx, pool); err != nil {
				return err
			}

			repo := postgresRepo.NewTransactionRepository(pool)
			created, err := repo.CreateMany(ctx, fakeTransactions(gofakeit.New(seed), userID, count))
			if err != nil {
				return err
			}

			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d transactions for %s (%d in table)\n", len(created), userID, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "u1", "Owner user id")
	cmd.Flags().IntVar(&count, "count", 20, "Number of transactions to insert")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Faker seed (0 picks a random one)")

	return cmd
}

// fakeTransactions builds n valid transactions, roughly one in four an income.
func fakeTransactions(faker *gofakeit.Faker, userID string, n int) []*domain.Transaction {
	txs := make([]*domain.Transaction, 0, n)

	for range n {
		amount := decimal.NewFromFloat(faker.Float64Range(1, 500)).Round(domain.AmountPrecision)
		if amount.IsZero() {
			amount = decimal.NewFromInt(1)
		}

		t := &domain.Transaction{UserID: userID}
		if faker.Number(1, 4) == 1 {
			t.Title = "Salary " + faker.Company()
			t.Category = "Income"
			t.Amount = amount.Mul(decimal.NewFromInt(10))
		} else {
			t.Title = faker.Company()
			t.Category = faker.RandomString(seedCategories)
			t.Amount = amount.Neg()
		}

		txs = append(txs, t)
	}

	return txs
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not set")
			}

			token, err := auth.NewJWTManager(cfg.JWTSecret, ttl).Generate(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}
