package commands

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/kv"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/storage"
)

// storageFlags holds the cache/library flags shared by serve, convert, and
// stream, each of which registers its own copy so `--help` output stays
// local to the command instead of leaking global flags.
type storageFlags struct {
	cacheDir      string
	libraryDir    string
	libraryBucket string
	libraryPrefix string
}

func (f *storageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "badger directory for the rUID lookup cache (disabled if empty)")
	cmd.Flags().StringVar(&f.libraryDir, "library-dir", "", "local directory to mirror published TAFs into")
	cmd.Flags().StringVar(&f.libraryBucket, "library-s3-bucket", "", "S3 bucket to mirror published TAFs into (uses the default AWS credential chain)")
	cmd.Flags().StringVar(&f.libraryPrefix, "library-s3-prefix", "", "key prefix for --library-s3-bucket")
}

// buildCache opens a badger-backed content.Cache at f.cacheDir, or returns
// nil if caching wasn't requested.
func (f *storageFlags) buildCache() (*content.Cache, error) {
	if f.cacheDir == "" {
		return nil, nil
	}
	db, err := kv.NewBadger(kv.BadgerOptions{Dir: f.cacheDir})
	if err != nil {
		return nil, fmt.Errorf("open cache-dir %q: %w", f.cacheDir, err)
	}
	return content.NewCache(db), nil
}

// buildMirror builds a content.LibraryMirror backed by either a local
// directory or an S3 bucket, or returns nil if neither was requested.
// root is the content store's root, used to derive each mirrored object's
// relative key.
func (f *storageFlags) buildMirror(ctx context.Context, root string) (*content.LibraryMirror, error) {
	switch {
	case f.libraryBucket != "":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		client := s3.NewFromConfig(cfg)
		return content.NewLibraryMirror(storage.NewS3(client, f.libraryBucket, f.libraryPrefix), root), nil

	case f.libraryDir != "":
		local, err := storage.NewLocal(f.libraryDir)
		if err != nil {
			return nil, fmt.Errorf("open library-dir %q: %w", f.libraryDir, err)
		}
		return content.NewLibraryMirror(local, root), nil

	default:
		return nil, nil
	}
}
