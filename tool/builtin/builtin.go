// Package builtin provides the tools the artifact agent gets by default:
// list_artifacts to find what it already produced and query_table to read
// stored tables through a TableView.
package builtin

import (
	"encoding/json"

	"github.com/youssefsiam38/artifactpg/storage"
	"github.com/youssefsiam38/artifactpg/tool"
)

// Tools returns every built-in tool bound to store.
func Tools(store storage.Store) []tool.Tool {
	return []tool.Tool{
		NewListArtifactsTool(store),
		NewQueryTableTool(store),
	}
}

func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
