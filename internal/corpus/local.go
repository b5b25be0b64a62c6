package corpus

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type localConfig struct {
	Path string `json:"path"`
}

type localSource struct {
	path string
}

func init() {
	RegisterSource("local", createLocalSource)
}

func createLocalSource(args interface{}) (Source, error) {
	cfg := &localConfig{}
	if err := decodeSourceConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("corpus.local.path is required")
	}
	return &localSource{path: filepath.Clean(cfg.Path)}, nil
}

func (s *localSource) Name() string {
	return s.path
}

func (s *localSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	return f, nil
}
