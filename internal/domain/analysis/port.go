package analysis

import (
	"context"

	"github.com/bryanwahyu/automaton-analyst/internal/domain/ingest"
)

// Repository port (interface untuk persistence), append-only
type Repository interface {
	Save(ctx context.Context, r *Request) error
	Latest(ctx context.Context, limit int) ([]*Request, error)
}

// Ingestor port: parse satu file upload. ok=false berarti file dilewati.
type Ingestor interface {
	Ingest(ctx context.Context, path, filename string) (item ingest.Item, ok bool, err error)
}

// CodeGenerator port: pertanyaan + ringkasan file -> kode analisis
type CodeGenerator interface {
	Generate(ctx context.Context, question string, summary ingest.Summary) (string, error)
}

// Executor port (interface untuk sandbox)
type Executor interface {
	Execute(ctx context.Context, code string, bindings []ingest.Binding) (any, error)
}

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	UploadAndCleanup(ctx context.Context, localPath, key string) (string, error)
}
