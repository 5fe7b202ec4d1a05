package commands

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/toniebox-reverse-engineering/teddy-cloud/cmd/teddycloud/internal/config"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/content"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/contenthandler"
	"github.com/toniebox-reverse-engineering/teddy-cloud/pkg/corecontext"
)

var (
	serveContentDir string
	serveAddr       string
	serveContext    string
	serveStorage    storageFlags
)

// coreSettings registers a context's core.yaml values into a Settings map
// so the cloud-proxy policy flags are readable (and reloadable) through
// the same ambient-context handle the rest of the server uses.
func coreSettings(core *config.CoreConfig) *corecontext.Settings {
	s := corecontext.NewSettings()
	s.Define("cloud.cacheContent", corecontext.BoolValue(core.Cloud.CacheContent))
	s.Define("cloud.cacheToLibrary", corecontext.BoolValue(core.Cloud.CacheToLibrary))
	s.Define("cloud.prioCustomContent", corecontext.BoolValue(core.Cloud.PrioCustomContent))
	s.Define("cloud.updateOnLowerAudioId", corecontext.BoolValue(core.Cloud.UpdateOnLowerAudioID))
	s.Define("cloud.ffmpegStreamBufferMs", corecontext.IntValue(int64(core.Cloud.FfmpegStreamBufferMs), 0, 60000))
	return s
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a content directory over HTTP",
	Long: `Serve a content directory over HTTP, implementing the
v1/v2 content routes, the download-path alias, and the raw PCM upload
endpoint.

This is a plain net/http server for local development and integration
testing. It performs no TLS termination; put a reverse proxy in front
of it for production use.

Examples:
  teddycloud serve --content-dir /var/lib/teddycloud/content --addr :8080
  teddycloud serve --context dev --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		core := &config.CoreConfig{}
		if serveContext != "" {
			cfg, err := GetConfig()
			if err != nil {
				return err
			}
			loaded, err := config.LoadCore(cfg.ContextDir(serveContext))
			if err != nil {
				return fmt.Errorf("load context %q: %w", serveContext, err)
			}
			core = loaded
			if serveContentDir == "" {
				serveContentDir = core.Internal.ContentDirFull
			}
		}
		if serveContentDir == "" {
			return fmt.Errorf("--content-dir or --context is required")
		}

		ctx := context.Background()

		cache, err := serveStorage.buildCache()
		if err != nil {
			return err
		}
		store := content.NewStore(serveContentDir, cache)
		if cache != nil {
			if err := cache.Warm(ctx, store); err != nil {
				return fmt.Errorf("warm cache: %w", err)
			}
		}

		mirror, err := serveStorage.buildMirror(ctx, serveContentDir)
		if err != nil {
			return err
		}

		catalog := corecontext.NewStaticCatalog(nil)
		cc := corecontext.New(coreSettings(core), catalog, store)

		for _, key := range cc.Settings.Keys() {
			v, _ := cc.Settings.Get(key)
			slog.Debug("core setting", "key", key, "value", v)
		}

		h := contenthandler.New(cc.ContentStore, contenthandler.Options{Catalog: cc.Catalog, Mirror: mirror})

		mux := http.NewServeMux()
		mux.HandleFunc("/v1/content/", serveRUIDPath(h))
		mux.HandleFunc("/v2/content/", serveRUIDPath(h))
		mux.HandleFunc("/content/download/", serveDownloadPath(h))
		mux.HandleFunc("/api/pcmUpload", servePCMUpload(h))

		slog.Info("serving content", "dir", serveContentDir, "addr", serveAddr)
		fmt.Printf("Listening on %s, serving %s\n", serveAddr, serveContentDir)
		return http.ListenAndServe(serveAddr, mux)
	},
}

func serveRUIDPath(h *contenthandler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 3 {
			http.NotFound(w, r)
			return
		}
		h.ServeContent(w, r, parts[len(parts)-1])
	}
}

func serveDownloadPath(h *contenthandler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/content/download/"), "/"), "/")
		if len(parts) != 2 {
			http.NotFound(w, r)
			return
		}
		ruid, err := contenthandler.RewriteDownloadPath(parts[0], parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		h.ServeContent(w, r, ruid)
	}
}

func servePCMUpload(h *contenthandler.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ruid := r.URL.Query().Get("name")
		audioID, err := strconv.ParseUint(r.URL.Query().Get("audioId"), 10, 32)
		if err != nil {
			http.Error(w, "invalid audioId", http.StatusBadRequest)
			return
		}

		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
			http.Error(w, "expected multipart body", http.StatusBadRequest)
			return
		}

		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		if err != nil {
			http.Error(w, "missing body part", http.StatusBadRequest)
			return
		}

		if err := h.HandleUpload(r.Context(), ruid, uint32(audioID), part); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveContentDir, "content-dir", "", "content root directory")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVar(&serveContext, "context", "", "context to load core.yaml from (supplies --content-dir and cloud settings if set)")
	serveStorage.register(serveCmd)

	rootCmd.AddCommand(serveCmd)
}
