// Package artifactpg turns assistant messages into interactive data
// artifacts stored in PostgreSQL.
//
// An assistant reply may embed visualization blocks:
//
//	<chart>{"title": "Revenue", "data": [{"name": "Q1", "value": 120}]}</chart>
//	<table>{"title": "Users", "data": [{"name": "Ana", "age": 31}]}</table>
//	<mermaid>{"diagram": "graph TD\n  A --> B"}</mermaid>
//
// The Client extracts these blocks, parses them into typed charts, tables
// and diagrams, and saves them atomically. The ui package browses them: tables
// through a TableView that filters, then sorts, then pages, with CSV, JSON and
// Parquet export of the filtered and sorted rows.
//
// # Quick Start
//
//	pool, _ := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
//	drv := pgxv5.New(pool)
//
//	client, err := artifactpg.NewClient(drv, &artifactpg.ClientConfig{
//	    APIKey: os.Getenv("ANTHROPIC_API_KEY"),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Ingest a message produced elsewhere:
//
//	res, err := client.Ingest(ctx, "session-1", "msg-1", reply)
//
// Or let the built-in agent answer and ingest its reply:
//
//	res, err := client.Ask(ctx, "session-1", "Compare signups by month")
//	for _, a := range res.Artifacts {
//	    fmt.Println(a.Kind, a.Title, a.Summary())
//	}
//
// # Tools
//
// Ask gives the model the list_artifacts and query_table tools, plus any tool
// registered with RegisterTool or passed in ClientConfig.Tools:
//
//	type MyTool struct{}
//
//	func (t *MyTool) Name() string { return "my_tool" }
//	func (t *MyTool) Description() string { return "Does something useful" }
//	func (t *MyTool) InputSchema() tool.ToolSchema {
//	    return tool.ToolSchema{
//	        Type: "object",
//	        Properties: map[string]tool.PropertyDef{
//	            "param": {Type: "string", Description: "A parameter"},
//	        },
//	        Required: []string{"param"},
//	    }
//	}
//	func (t *MyTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
//	    return "result", nil
//	}
//
// # Transactions
//
// IngestTx saves artifacts inside a caller's transaction, so they commit or
// roll back with the caller's own writes:
//
//	tx, _ := pool.Begin(ctx)
//	defer tx.Rollback(ctx)
//	_, err := client.IngestTx(ctx, tx, sessionID, messageID, reply)
//	// ... other writes ...
//	err = tx.Commit(ctx)
//
// # Notifications
//
// Every save notifies the artifactpg_artifact_created channel after commit.
// Start the client to receive them:
//
//	_ = client.Start(ctx)
//	defer client.Stop(ctx)
//	unsubscribe := client.Subscribe(func(e driver.ArtifactEvent) {
//	    log.Printf("new %s %q", e.Kind, e.Title)
//	})
package artifactpg
