//go:build js && wasm

package main

import (
	"context"
	"encoding/json"
	"syscall/js"

	"github.com/hack-pad/hackpadfs/indexeddb"

	"github.com/weaverhq/goweaver/internal/oracle"
	"github.com/weaverhq/goweaver/internal/store"
	"github.com/weaverhq/goweaver/internal/weaver"
)

// Version info
const Version = "0.1.0"

// Global state
var engine *weaver.Engine
var backing store.Storer

func main() {
	println("[GoWeaver] WASM Ready v" + Version)

	js.Global().Set("GoWeaver", js.ValueOf(map[string]interface{}{
		"version":         js.FuncOf(getVersion),
		"initialize":      js.FuncOf(initialize),
		"saveSnippet":     js.FuncOf(saveSnippet),
		"deleteSnippet":   js.FuncOf(deleteSnippet),
		"clearAll":        js.FuncOf(clearAll),
		"optimizeQuery":   js.FuncOf(optimizeQuery),
		"getGraph":        js.FuncOf(getGraph),
		"getSnippets":     js.FuncOf(getSnippets),
		"relatedSnippets": js.FuncOf(relatedSnippets),
	}))

	select {}
}

func getVersion(this js.Value, args []js.Value) interface{} {
	return Version
}

// initialize opens the IndexedDB-backed store and wires the engine.
// Args: [apiKey string, endpoint string]
func initialize(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: apiKey, endpoint")
	}
	apiKey := args[0].String()
	endpoint := args[1].String()

	return promise(func() (interface{}, error) {
		fs, err := indexeddb.NewFS(context.Background(), "goweaver", indexeddb.Options{})
		if err != nil {
			return nil, err
		}
		backing = store.NewFileStore(fs, "weaver.json")
		engine = weaver.NewEngine(backing, oracle.NewGeminiClient(endpoint, apiKey))
		return successResult("initialized"), nil
	})
}

// saveSnippet: [text string, sourceUrl string]
// Resolves to the saved snippet as JSON.
func saveSnippet(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("requires 2 args: text, sourceUrl")
	}
	if engine == nil {
		return errorResult("not initialized")
	}
	text := args[0].String()
	sourceURL := args[1].String()

	return promise(func() (interface{}, error) {
		s, err := engine.SaveSnippet(context.Background(), text, sourceURL)
		if err != nil {
			return nil, err
		}
		return marshal(s)
	})
}

// deleteSnippet: [id string]
func deleteSnippet(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: id")
	}
	if engine == nil {
		return errorResult("not initialized")
	}
	id := args[0].String()

	return promise(func() (interface{}, error) {
		if err := engine.DeleteSnippet(context.Background(), id); err != nil {
			return nil, err
		}
		return successResult("deleted"), nil
	})
}

// clearAll: []
func clearAll(this js.Value, args []js.Value) interface{} {
	if engine == nil {
		return errorResult("not initialized")
	}
	return promise(func() (interface{}, error) {
		if err := engine.ClearAll(context.Background()); err != nil {
			return nil, err
		}
		return successResult("cleared"), nil
	})
}

// optimizeQuery: [prompt string]
// Resolves to the optimized prompt text.
func optimizeQuery(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: prompt")
	}
	if engine == nil {
		return errorResult("not initialized")
	}
	original := args[0].String()

	return promise(func() (interface{}, error) {
		return engine.OptimizeQuery(context.Background(), original)
	})
}

// getGraph: []
// Resolves to the merged graph as JSON.
func getGraph(this js.Value, args []js.Value) interface{} {
	if engine == nil {
		return errorResult("not initialized")
	}
	return promise(func() (interface{}, error) {
		g, err := engine.GetGraph(context.Background())
		if err != nil {
			return nil, err
		}
		return marshal(g)
	})
}

// getSnippets: []
// Resolves to all snippets as JSON.
func getSnippets(this js.Value, args []js.Value) interface{} {
	if engine == nil {
		return errorResult("not initialized")
	}
	return promise(func() (interface{}, error) {
		snippets, err := engine.GetSnippets(context.Background())
		if err != nil {
			return nil, err
		}
		return marshal(snippets)
	})
}

// relatedSnippets: [nodeId string]
func relatedSnippets(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("requires 1 arg: nodeId")
	}
	if engine == nil {
		return errorResult("not initialized")
	}
	nodeID := args[0].String()

	return promise(func() (interface{}, error) {
		snippets, err := engine.RelatedSnippets(context.Background(), nodeID)
		if err != nil {
			return nil, err
		}
		return marshal(snippets)
	})
}

// promise runs fn off the JS event loop and resolves/rejects with its result.
// Engine calls block on network and IndexedDB, so they must not run inside
// the js.FuncOf callback itself.
func promise(fn func() (interface{}, error)) js.Value {
	handler := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		resolve := args[0]
		reject := args[1]
		go func() {
			result, err := fn()
			if err != nil {
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
				return
			}
			resolve.Invoke(js.ValueOf(result))
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}

func marshal(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func errorResult(msg string) interface{} {
	return map[string]interface{}{"success": false, "error": msg}
}

func successResult(msg string) interface{} {
	return map[string]interface{}{"success": true, "message": msg}
}
