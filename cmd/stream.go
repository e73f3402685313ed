package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/killallgit/sanbao/pkg/config"
	"github.com/killallgit/sanbao/pkg/message"
	"github.com/killallgit/sanbao/pkg/stream"
	"github.com/spf13/cobra"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Send a prompt and consume the live response",
	Long: `Post a prompt to the configured chat backend, print live progress to
stderr and the finalized message to stdout. Ctrl+C stops generation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt, _ := cmd.Flags().GetString("prompt")
		conversation, _ := cmd.Flags().GetString("conversation")
		format, _ := cmd.Flags().GetString("format")

		if prompt == "" {
			return errors.New("--prompt is required")
		}
		if err := validateFormat(format); err != nil {
			return err
		}

		final, err := runStream(cmd, stream.NewChatRequest(conversation, prompt))
		if err != nil {
			return err
		}
		if err := writeFinals(cmd.OutOrStdout(), format, []message.Final{final}); err != nil {
			return err
		}
		if final.Error != nil {
			return fmt.Errorf("stream ended with error: %s", *final.Error)
		}
		return nil
	},
}

func init() {
	streamCmd.Flags().StringP("prompt", "p", "", "prompt to send")
	streamCmd.Flags().String("conversation", "", "conversation ID to continue")
	streamCmd.Flags().StringP("format", "f", formatJSON, "output format (json or yaml)")
}

func runStream(cmd *cobra.Command, req stream.ChatRequest) (message.Final, error) {
	cfg := config.Get()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sess := stream.NewSession()
	updates := sess.Watch(cfg.Stream.WatchBuffer)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		p := newProgress(cmd.ErrOrStderr(), sess.StreamID()[:8])
		for snap := range updates {
			p.OnSnapshot(snap)
		}
	}()

	snap, err := stream.NewClientFromConfig(cfg).Stream(ctx, req, sess)
	<-printed
	if err != nil {
		return message.Final{}, err
	}
	return message.Finalize(snap)
}
