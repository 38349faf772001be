// Package ui provides an embedded web UI and JSON API for browsing the
// charts, tables and diagrams extracted from assistant messages.
//
// # Quick Start
//
//	pool, _ := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
//	drv := pgxv5.New(pool)
//
//	client, _ := artifactpg.NewClient(drv, &artifactpg.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	client.Migrate(ctx)
//	client.Start(ctx)
//
//	mux := http.NewServeMux()
//	mux.Handle("/ui/", http.StripPrefix("/ui", ui.UIHandler(client.Store(), client, &ui.Config{
//	    BasePath: "/ui",
//	})))
//
//	http.ListenAndServe(":8080", mux)
//
// # Tables
//
// Table state travels in the query string: q (filter), sort and dir
// (column and direction) and page. Every request rebuilds the view and
// applies filter, sort and page in that order, so links are shareable and
// exports reflect exactly what is on screen, minus pagination.
//
// # Panels
//
// Whether an artifact's panel is expanded is held by a panel.Controller,
// keyed by viewer. The default viewer is the user set by auth.Middleware.
//
// # Adding Middleware
//
// Wrap handlers externally using standard Go patterns:
//
//	authed := auth.New(authCfg)
//	http.Handle("/ui/", authed.Middleware(http.StripPrefix("/ui", ui.UIHandler(store, client, cfg))))
package ui
