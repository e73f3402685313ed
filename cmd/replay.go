package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/killallgit/sanbao/pkg/config"
	"github.com/killallgit/sanbao/pkg/logger"
	"github.com/killallgit/sanbao/pkg/message"
	"github.com/killallgit/sanbao/pkg/stream"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var replayCmd = &cobra.Command{
	Use:   "replay [files...]",
	Short: "Replay recorded NDJSON streams",
	Long: `Replay recorded chat streams through fresh sessions and print the
finalized messages. Reads stdin when no file, or "-", is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		live, _ := cmd.Flags().GetBool("live")
		jobs, _ := cmd.Flags().GetInt("jobs")

		if err := validateFormat(format); err != nil {
			return err
		}
		if len(args) == 0 {
			args = []string{"-"}
		}

		finals, err := runReplay(cmd.Context(), cmd, args, live, jobs)
		if err != nil {
			return err
		}
		return writeFinals(cmd.OutOrStdout(), format, finals)
	},
}

func init() {
	replayCmd.Flags().StringP("format", "f", formatJSON, "output format (json or yaml)")
	replayCmd.Flags().Bool("live", false, "print snapshot progress to stderr")
	replayCmd.Flags().IntP("jobs", "j", 4, "number of streams replayed at once")
}

func runReplay(ctx context.Context, cmd *cobra.Command, inputs []string, live bool, jobs int) ([]message.Final, error) {
	log := logger.WithComponent("replay")
	progressOut := &syncWriter{w: cmd.ErrOrStderr()}
	readSize := config.Get().Stream.ReadSize

	finals := make([]message.Final, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}

	for i, input := range inputs {
		g.Go(func() error {
			r, label, closeFn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeFn()

			opts := []stream.SessionOption{stream.WithStreamID(label), stream.WithReadSize(readSize)}
			if live {
				opts = append(opts, stream.WithObserver(newProgress(progressOut, label)))
			}
			sess := stream.NewSession(opts...)

			snap := sess.Run(ctx, r)
			log.Info("replayed stream", "stream_id", label, "state", snap.State.String(),
				"events", snap.Events, "decode_errors", sess.DecodeErrors())

			final, err := message.Finalize(snap)
			if err != nil {
				return fmt.Errorf("failed to finalize %s: %w", label, err)
			}
			finals[i] = final
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return finals, nil
}

func openInput(cmd *cobra.Command, input string) (io.Reader, string, func(), error) {
	if input == "-" {
		return cmd.InOrStdin(), "stdin", func() {}, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to open %s: %w", input, err)
	}
	return f, filepath.Base(input), func() { f.Close() }, nil
}
