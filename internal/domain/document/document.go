package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// MaxSourceSize is the maximum size of one documentation file in bytes.
const MaxSourceSize = 10 << 20

// Document is one parsed documentation file ready for indexing (immutable value object).
type Document struct {
	id     string
	path   string
	source json.RawMessage
}

// Parse validates a documentation file and derives its identifier.
// The ID is the string or number under idField; when absent it is a UUID
// derived from path, so reindexing the same tree yields the same IDs.
func Parse(path string, data []byte, idField string) (Document, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Document{}, fmt.Errorf("%s: empty document", path)
	}
	if len(data) > MaxSourceSize {
		return Document{}, fmt.Errorf("%s: document too large (max %d bytes)", path, MaxSourceSize)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return Document{}, fmt.Errorf("%s: document must be a JSON object: %w", path, err)
	}

	id := idFromField(fields[idField])
	if idField == "" || id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
	}

	return Document{id: id, path: path, source: json.RawMessage(data)}, nil
}

func idFromField(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

// ID returns the engine document identifier.
func (d Document) ID() string { return d.id }

// Path returns the file the document was read from.
func (d Document) Path() string { return d.path }

// Source returns the raw JSON body.
func (d Document) Source() json.RawMessage { return d.source }

// IndexOptions tunes a bulk indexing run.
type IndexOptions struct {
	Workers    int
	FlushBytes int
}

// IndexStats summarizes one bulk indexing run.
type IndexStats struct {
	Indexed int
	Failed  int
}
