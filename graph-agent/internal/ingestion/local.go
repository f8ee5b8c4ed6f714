package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/processing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var allowedExt = []string{".pdf", ".txt", ".md", ".png", ".jpg", ".jpeg"}

func LoadLocalFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if Supported(path) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// LocalSource reads every supported file under Root. Files whose text cannot
// be extracted are logged and skipped.
type LocalSource struct {
	Root   string
	logger *zap.Logger
}

func NewLocalSource(root string, logger *zap.Logger) *LocalSource {
	return &LocalSource{Root: root, logger: logging.OrNop(logger).Named("local")}
}

func (l *LocalSource) Fetch(ctx context.Context) ([]SourceDocument, error) {
	paths, err := LoadLocalFiles(l.Root)
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", l.Root, err)
	}
	docs := make([]SourceDocument, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		text, err := ExtractText(p)
		if err != nil {
			l.logger.Warn("skipping file", zap.String("path", p), zap.Error(err))
			continue
		}
		docs = append(docs, SourceDocument{
			Meta: processing.Metadata{
				ID:         uuid.NewString(),
				Path:       p,
				Source:     processing.SourceLocal,
				Title:      filepath.Base(p),
				ImportedAt: time.Now().UTC(),
			},
			Text: text,
		})
	}
	l.logger.Info("local files loaded", zap.String("root", l.Root), zap.Int("documents", len(docs)))
	return docs, nil
}
