package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/ledger"
)

type historyEntry struct {
	ID           int64  `json:"id"`
	InputPath    string `json:"input_path"`
	OutputPath   string `json:"output_path"`
	Digest       string `json:"digest"`
	PayloadBytes int    `json:"payload_bytes"`
	Algorithm    string `json:"algorithm"`
	Sealed       bool   `json:"sealed"`
	CreatedAt    string `json:"created_at"`
}

func (a *App) historyCmd() *cobra.Command {
	var (
		limit  int
		output string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded embeds, newest first",
		Args:  exactArgs(),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.cfg.LedgerPath()
			if err != nil {
				return err
			}
			if path == "" {
				return fmt.Errorf("%w: no ledger configured, pass --ledger or set ledger in the config", stego.ErrUsage)
			}
			l, err := ledger.Open(path)
			if err != nil {
				return err
			}
			defer l.Close()

			var artifacts []ledger.Artifact
			if output != "" {
				art, err := l.FindByOutput(cmd.Context(), output)
				if err != nil {
					return err
				}
				artifacts = []ledger.Artifact{art}
			} else {
				artifacts, err = l.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
			}
			for _, art := range artifacts {
				a.print(historyEntry{
					ID:           art.ID,
					InputPath:    art.InputPath,
					OutputPath:   art.OutputPath,
					Digest:       art.Digest,
					PayloadBytes: art.PayloadBytes,
					Algorithm:    art.Algorithm,
					Sealed:       art.Sealed,
					CreatedAt:    art.CreatedAt.UTC().Format(time.RFC3339),
				})
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries, 0 for all")
	cmd.Flags().StringVar(&output, "output", "", "only the newest entry written to this path")
	return cmd
}
