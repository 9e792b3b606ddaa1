package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/internal/settlement-worker/ledger"
	"github.com/mm2d3d/lottery-platform/internal/shared/config"
	"github.com/mm2d3d/lottery-platform/internal/shared/db"
	"github.com/mm2d3d/lottery-platform/internal/shared/kafka"
	ev "github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// settlementctl is the operator's escape hatch: inspect and resolve
// bets parked in SETTLEMENT_FAILED, validate a payout rules file before
// deploying it, and republish a result event when the Kafka leg of a
// publication was lost.
func main() {
	root := &cobra.Command{
		Use:          "settlementctl",
		Short:        "Operator tooling for the lottery settlement pipeline",
		SilenceUsage: true,
	}

	root.AddCommand(rulesCmd(), failedCmd(), republishCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func rulesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Payout rules maintenance",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a payout rules file and print the table",
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := settlement.LoadRules(file)
			if err != nil {
				return err
			}
			for game, gr := range rules.Games {
				fmt.Printf("%s: stake [%d, %d] kyat, result length %d\n",
					game, gr.MinBetKyat, gr.MaxBetKyat, gr.ResultLength)
				for method, mult := range gr.Multipliers {
					fmt.Printf("  %-10s x%d\n", method, mult)
				}
			}
			fmt.Println("rules OK")
			return nil
		},
	}
	validate.Flags().StringVarP(&file, "file", "f", "", "rules file (compiled-in defaults when omitted)")

	cmd.AddCommand(validate)
	return cmd
}

func failedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "failed",
		Short: "Inspect and resolve SETTLEMENT_FAILED bets",
	}
	cmd.AddCommand(failedListCmd(), failedResolveCmd())
	return cmd
}

func connectPG() (*sql.DB, error) {
	cfg := config.Load()
	return db.ConnectPostgres(cfg.PostgresDSN)
}

func failedListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bets whose payout credit failed",
		RunE: func(cmd *cobra.Command, args []string) error {
			pg, err := connectPG()
			if err != nil {
				return err
			}
			defer pg.Close()

			rows, err := pg.QueryContext(cmd.Context(), `
				SELECT id, user_id, game_type, draw_date, draw_session, payout_kyat, COALESCE(failure_reason, '')
				FROM bets
				WHERE status='SETTLEMENT_FAILED'
				ORDER BY updated_at`)
			if err != nil {
				return err
			}
			defer rows.Close()

			n := 0
			for rows.Next() {
				var id, user, game, date, session, reason string
				var payout int64
				if err := rows.Scan(&id, &user, &game, &date, &session, &payout, &reason); err != nil {
					return err
				}
				fmt.Printf("%s  user=%s  %s %s/%s  owed=%d kyat  reason=%s\n",
					id, user, game, date, session, payout, reason)
				n++
			}
			fmt.Printf("%d bet(s) awaiting manual resolution\n", n)
			return rows.Err()
		},
	}
}

func failedResolveCmd() *cobra.Command {
	var walletURL string

	cmd := &cobra.Command{
		Use:   "resolve <betID>",
		Short: "Retry the payout credit and move the bet back to WON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			betID := args[0]

			pg, err := connectPG()
			if err != nil {
				return err
			}
			defer pg.Close()

			var userID string
			var payout int64
			err = pg.QueryRowContext(cmd.Context(), `
				SELECT user_id, payout_kyat FROM bets
				WHERE id=$1 AND status='SETTLEMENT_FAILED'`,
				betID,
			).Scan(&userID, &payout)
			if err == sql.ErrNoRows {
				return fmt.Errorf("bet %s is not in SETTLEMENT_FAILED", betID)
			}
			if err != nil {
				return err
			}

			// same idempotency key the worker used, so a credit that
			// actually landed is absorbed instead of doubled
			lc := ledger.New(walletURL)
			if err := lc.Credit(cmd.Context(), userID, payout, "lottery win (manual resolve)", "win:"+betID); err != nil {
				return fmt.Errorf("credit still failing: %w", err)
			}

			res, err := pg.ExecContext(cmd.Context(), `
				UPDATE bets SET status='WON', failure_reason=NULL, updated_at=NOW()
				WHERE id=$1 AND status='SETTLEMENT_FAILED'`,
				betID,
			)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n != 1 {
				return fmt.Errorf("bet %s changed status underneath us", betID)
			}
			_, _ = pg.ExecContext(cmd.Context(), `
				INSERT INTO bet_transitions (bet_id, old_status, new_status, reason, created_at)
				VALUES ($1, 'SETTLEMENT_FAILED', 'WON', 'manual resolve', NOW())`,
				betID,
			)

			fmt.Printf("bet %s resolved: %d kyat credited to %s\n", betID, payout, userID)
			return nil
		},
	}
	cmd.Flags().StringVar(&walletURL, "wallet-url", "http://localhost:8082", "wallet-service base URL")
	return cmd
}

func republishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "republish <game> <drawDate> <session>",
		Short: "Re-emit the result_published event of a stored result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, drawDate, session := args[0], args[1], args[2]
			cfg := config.Load()

			pg, err := db.ConnectPostgres(cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer pg.Close()

			var resultID, winning string
			var publishedBy sql.NullString
			err = pg.QueryRowContext(cmd.Context(), `
				SELECT id, winning_number, published_by FROM draw_results
				WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3`,
				game, drawDate, session,
			).Scan(&resultID, &winning, &publishedBy)
			if err == sql.ErrNoRows {
				return fmt.Errorf("no result stored for %s %s/%s", game, drawDate, session)
			}
			if err != nil {
				return err
			}

			writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultPublished)
			defer writer.Close()

			payload, _ := json.Marshal(ev.ResultPublished{
				ResultID:      resultID,
				GameType:      game,
				DrawDate:      drawDate,
				DrawSession:   session,
				WinningNumber: winning,
				PublishedBy:   publishedBy.String,
				Ts:            time.Now(),
			})

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if err := kafka.WriteJSON(ctx, writer, resultID, payload); err != nil {
				return err
			}

			fmt.Printf("result %s republished (%s %s/%s, winning %s)\n",
				resultID, game, drawDate, session, winning)
			return nil
		},
	}
}
