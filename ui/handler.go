package ui

import (
	"net/http"

	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/ui/api"
	"github.com/youssefsiam38/artifactpg/ui/frontend"
	"github.com/youssefsiam38/artifactpg/ui/service"
)

// Client is what the UI needs from *artifactpg.Client: asking the model,
// ingesting messages and subscribing to new artifacts.
type Client = service.Client

// UIHandler returns an http.Handler serving the artifact browser and, under
// /api/, its JSON API.
//
// The client parameter is required for chat, ingest and the event stream.
// If nil, those features are disabled.
//
// Usage:
//
//	http.Handle("/ui/", http.StripPrefix("/ui", ui.UIHandler(client.Store(), client, cfg)))
func UIHandler(store storage.Store, client Client, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}

	// Validate configuration (panic on invalid config as this is a programmer error)
	if err := cfg.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}

	svc := service.New(store, client, cfg.Panels, cfg.PageSize)

	apiHandler := api.NewRouter(svc, &api.Config{
		ReadOnly:     cfg.ReadOnly,
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
		Logger:       cfg.Logger,
	})
	frontendHandler := frontend.NewRouter(svc, &frontend.Config{
		BasePath:        cfg.BasePath,
		ReadOnly:        cfg.ReadOnly,
		DefaultLimit:    cfg.DefaultLimit,
		MaxLimit:        cfg.MaxLimit,
		RefreshInterval: cfg.RefreshInterval,
		Viewer:          cfg.Viewer,
		Logger:          cfg.Logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", apiHandler))
	mux.Handle("/", frontendHandler)
	return mux
}
