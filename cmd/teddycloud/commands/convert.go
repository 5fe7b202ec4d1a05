package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/transcode"
)

var (
	convertAudioID uint32
	convertOut     string
	convertSkip    float64
	convertSource  string
	convertStorage storageFlags
)

var convertCmd = &cobra.Command{
	Use:   "convert <uri...>",
	Short: "Transcode one or more audio sources into a TAF file",
	Long: `Decode one or more audio sources (file://, http(s)://, or any
input ffmpeg accepts) into a single non-live TAF file.

Multiple URIs are decoded back to back, in the order given, into one
continuous stream; no chapter marks are added between them.

Example:
  teddycloud convert file:///tmp/episode.mp3 --audio-id 42 --out /var/lib/teddycloud/content/01234567/89ABCDEF`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if convertOut == "" {
			return fmt.Errorf("--out is required")
		}
		root, ruid, err := splitOutPath(convertOut)
		if err != nil {
			return err
		}

		ctx := context.Background()

		cache, err := convertStorage.buildCache()
		if err != nil {
			return err
		}
		store := content.NewStore(root, cache)
		orch := transcode.New(store)

		mirror, err := convertStorage.buildMirror(ctx, root)
		if err != nil {
			return err
		}
		orch.WithMirror(mirror)

		desc := &content.Descriptor{Source: convertSource}
		if desc.Source == "" {
			desc.Source = args[0]
		}

		if err := orch.Convert(ctx, ruid, convertAudioID, args, convertSkip, desc); err != nil {
			return fmt.Errorf("convert: %w", err)
		}

		fmt.Printf("Wrote %s (rUID %s)\n", convertOut, ruid)
		return nil
	},
}

func init() {
	convertCmd.Flags().Uint32Var(&convertAudioID, "audio-id", 0, "32-bit audio ID stored in the TAF header")
	convertCmd.Flags().StringVar(&convertOut, "out", "", "output path, <content-dir>/<8hex>/<8hex>")
	convertCmd.Flags().Float64Var(&convertSkip, "skip", 0, "seconds to skip from the start of the source")
	convertCmd.Flags().StringVar(&convertSource, "source", "", "descriptor source string (defaults to the first URI)")
	convertCmd.MarkFlagRequired("audio-id")
	convertCmd.MarkFlagRequired("out")
	convertStorage.register(convertCmd)

	rootCmd.AddCommand(convertCmd)
}
