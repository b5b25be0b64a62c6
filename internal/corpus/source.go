package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Source supplies the raw corpus spreadsheet bytes.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	Name() string
}

type SourceFactory func(args interface{}) (Source, error)

var (
	sourceMu       sync.RWMutex
	sourceRegistry = map[string]SourceFactory{}
)

func RegisterSource(name string, factory SourceFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	sourceMu.Lock()
	sourceRegistry[key] = factory
	sourceMu.Unlock()
}

func NewSource(typ string, args interface{}) (Source, error) {
	key := strings.ToLower(strings.TrimSpace(typ))
	if key == "" {
		return nil, fmt.Errorf("corpus.source type is required")
	}
	sourceMu.RLock()
	factory := sourceRegistry[key]
	sourceMu.RUnlock()
	if factory == nil {
		return nil, fmt.Errorf("unsupported corpus source: %s", typ)
	}
	return factory(args)
}

func decodeSourceConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return nil
	}
	data, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}
