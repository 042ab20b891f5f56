package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	authorrepo "bookshelf-api/internal/domains/author/repository"
	bookrepo "bookshelf-api/internal/domains/book/repository"
	"bookshelf-api/internal/fixtures"
	"bookshelf-api/pkg/cache"
	"bookshelf-api/pkg/database"
)

var seedValue uint64

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample authors and books",
	Long: `Insert 10 authors and 20 books, each book linked to a random author.

Examples:
  bookshelfctl seed             # random links
  bookshelfctl seed --rand 42   # reproducible links`,
	RunE: func(cmd *cobra.Command, args []string) error {
		seed := seedValue
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		rng := rand.New(rand.NewPCG(seed, seed>>1))

		return withPool(cmd.Context(), func(ctx context.Context, pool *pgxpool.Pool) error {
			noop := cache.NewNoop()
			res, err := fixtures.Load(
				ctx,
				database.NewTransactionManager(pool),
				authorrepo.NewPostgresRepository(pool, noop),
				bookrepo.NewPostgresRepository(pool, noop),
				rng,
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d authors and %d books\n", len(res.AuthorIDs), len(res.BookIDs))
			return nil
		})
	},
}

func init() {
	seedCmd.Flags().Uint64Var(&seedValue, "rand", 0, "Random seed for author links (0 = time based)")
	rootCmd.AddCommand(seedCmd)
}
