// Package mcp exposes the graph API as Model Context Protocol tools.
package mcp

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeRequestBuild   = -32002
	codeRequestFailed  = -32004
	codeReadFailed     = -32005
	codeServiceError   = -32006
)

type Request struct {
	ID     string         `json:"id"`
	Method string         `json:"method"`
	Params map[string]any `json:"params,omitempty"`
}

type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func errorResponse(id string, code int, message string) Response {
	return Response{ID: id, Error: &Error{Code: code, Message: message}}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// Tools lists the tools the gateway serves.
func Tools() []Tool {
	return []Tool{
		{
			Name:        "query_knowledge_graph",
			Description: "Answer a question from the entities around the ones it names",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": stringProp("The question"),
					"hops":  intProp("Search radius around matched entities (default 2)"),
					"k":     intProp("Maximum number of retrieved entities (default 3)"),
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        "get_neighbors",
			Description: "List the entities within a number of hops of an entity",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"entity": stringProp("Exact entity name"),
					"hops":   intProp("Number of hops (default 1)"),
				},
				"required": []string{"entity"},
			},
		},
		{
			Name:        "add_triplet",
			Description: "Add or relabel a relation between two entities",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source":   stringProp("Source entity"),
					"target":   stringProp("Target entity"),
					"relation": stringProp("Relation label"),
				},
				"required": []string{"source", "target", "relation"},
			},
		},
		{
			Name:        "ingest_text",
			Description: "Extract triplets from a document and add them to the graph",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text":  stringProp("Document text"),
					"title": stringProp("Document title"),
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "get_graph",
			Description: "Return the whole knowledge graph in node-link form",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}
