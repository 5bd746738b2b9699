package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/meur/tiermaker/internal/api"
	"github.com/meur/tiermaker/internal/scraper"
	"github.com/meur/tiermaker/internal/workspace"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve [db]",
		Short: "Run the local API for the front end",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr, _ := cmd.Flags().GetString("addr"); cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ws, err := workspace.New(workspace.Options{
				ScratchDir: cfg.ScratchDir,
				Images:     scraper.NewAmazon(&http.Client{Timeout: cfg.ScrapeTimeout}, cfg.UserAgent),
			})
			if err != nil {
				return err
			}
			defer ws.Close()

			if path, err := dbPathArg(args); err == nil {
				if err := openOrCreate(ctx, ws, path); err != nil {
					return err
				}
			}

			srv := api.New(ws, logger, cfg.AllowedOrigins)
			if staticDir != "" {
				FileServer(srv.Router(), "/", http.Dir(staticDir))
			}

			logger.Info().Str("addr", cfg.Addr).Str("scratch", ws.ScratchDir()).Msg("tiermaker api starting")
			return http.ListenAndServe(cfg.Addr, srv)
		},
	}

	workDir, _ := os.Getwd()
	cmd.Flags().String("addr", ":8080", "listen address (overrides TIERMAKER_ADDR)")
	cmd.Flags().StringVar(&staticDir, "static", filepath.Join(workDir, "../frontend/dist"), "front end build to serve, empty to disable")
	return cmd
}

// openOrCreate loads the store at path, or saves the current list there when
// the file does not exist yet so later saves have a target.
func openOrCreate(ctx context.Context, ws *workspace.Workspace, path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return ws.Load(ctx, path)
	case errors.Is(err, fs.ErrNotExist):
		logger.Info().Str("path", path).Msg("creating new tier list file")
		return ws.Save(ctx, path)
	default:
		return err
	}
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
