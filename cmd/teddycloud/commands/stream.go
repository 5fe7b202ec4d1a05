package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/transcode"
)

var (
	streamAudioID uint32
	streamOut     string
	streamSource  string
	streamStorage storageFlags
)

var streamCmd = &cobra.Command{
	Use:   "stream <uri...>",
	Short: "Encode a live TAF file, cycling through sources until interrupted",
	Long: `Encode one or more audio sources into a TAF file marked live=true
in its sidecar. The URI list is cycled indefinitely, opening a new
chapter after each pass, until the process receives SIGINT/SIGTERM.

Example:
  teddycloud stream http://example.com/radio.mp3 --audio-id 42 --out /var/lib/teddycloud/content/01234567/89ABCDEF`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if streamOut == "" {
			return fmt.Errorf("--out is required")
		}
		root, ruid, err := splitOutPath(streamOut)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cache, err := streamStorage.buildCache()
		if err != nil {
			return err
		}
		store := content.NewStore(root, cache)
		orch := transcode.New(store)

		mirror, err := streamStorage.buildMirror(ctx, root)
		if err != nil {
			return err
		}
		orch.WithMirror(mirror)

		desc := &content.Descriptor{Source: streamSource}
		if desc.Source == "" {
			desc.Source = args[0]
		}

		fmt.Printf("Streaming to %s (rUID %s), press Ctrl-C to stop\n", streamOut, ruid)
		if err := orch.Stream(ctx, ruid, streamAudioID, args, desc); err != nil {
			return fmt.Errorf("stream: %w", err)
		}

		fmt.Println("Stopped.")
		return nil
	},
}

func init() {
	streamCmd.Flags().Uint32Var(&streamAudioID, "audio-id", 0, "32-bit audio ID stored in the TAF header")
	streamCmd.Flags().StringVar(&streamOut, "out", "", "output path, <content-dir>/<8hex>/<8hex>")
	streamCmd.Flags().StringVar(&streamSource, "source", "", "descriptor source string (defaults to the first URI)")
	streamCmd.MarkFlagRequired("audio-id")
	streamCmd.MarkFlagRequired("out")
	streamStorage.register(streamCmd)

	rootCmd.AddCommand(streamCmd)
}
