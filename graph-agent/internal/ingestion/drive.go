package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/config"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/logging"
	"github.com/Divas-Gupta30/graph-rag/graph-agent/internal/processing"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	mimeGoogleDoc = "application/vnd.google-apps.document"
	mimeText      = "text/plain"
	mimeMarkdown  = "text/markdown"
)

var ErrNoDriveToken = errors.New("no google drive token, run drive-auth first")

// DriveOAuthConfig builds the read-only Drive consent configuration.
func DriveOAuthConfig(cfg config.DriveConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{drive.DriveReadonlyScope},
		Endpoint:     google.Endpoint,
	}
}

// AuthURL is the consent page the user opens to obtain a code.
func AuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

// ExchangeCode trades a consent code for a token and stores it in tokenFile.
func ExchangeCode(ctx context.Context, conf *oauth2.Config, code, tokenFile string) (*oauth2.Token, error) {
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging code: %w", err)
	}
	if err := SaveToken(tokenFile, tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoDriveToken
	}
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return &tok, nil
}

func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// DriveSource lists a Drive folder and downloads Google Docs (as plain text)
// and plain text or markdown files. Other file types are skipped.
type DriveSource struct {
	svc      *drive.Service
	folderID string
	logger   *zap.Logger
}

// NewDriveSource authenticates with the stored token.
func NewDriveSource(ctx context.Context, cfg config.DriveConfig, logger *zap.Logger) (*DriveSource, error) {
	tok, err := LoadToken(cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	client := DriveOAuthConfig(cfg).Client(ctx, tok)
	svc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return NewDriveSourceFromService(svc, cfg.FolderID, logger), nil
}

func NewDriveSourceFromService(svc *drive.Service, folderID string, logger *zap.Logger) *DriveSource {
	return &DriveSource{svc: svc, folderID: folderID, logger: logging.OrNop(logger).Named("drive")}
}

func (d *DriveSource) query() string {
	if d.folderID == "" {
		return "trashed = false"
	}
	return fmt.Sprintf("'%s' in parents and trashed = false", d.folderID)
}

func (d *DriveSource) Fetch(ctx context.Context) ([]SourceDocument, error) {
	var docs []SourceDocument
	pageToken := ""
	for {
		call := d.svc.Files.List().
			Q(d.query()).
			Fields("nextPageToken, files(id, name, mimeType)").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return docs, fmt.Errorf("listing drive files: %w", err)
		}

		for _, f := range list.Files {
			text, err := d.download(ctx, f)
			if err != nil {
				d.logger.Warn("skipping drive file", zap.String("name", f.Name), zap.Error(err))
				continue
			}
			docs = append(docs, SourceDocument{
				Meta: processing.Metadata{
					ID:         uuid.NewString(),
					Path:       f.Id,
					Source:     processing.SourceGDrive,
					Title:      f.Name,
					ImportedAt: time.Now().UTC(),
				},
				Text: text,
			})
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}
	d.logger.Info("drive files loaded", zap.String("folder", d.folderID), zap.Int("documents", len(docs)))
	return docs, nil
}

func (d *DriveSource) download(ctx context.Context, f *drive.File) (string, error) {
	var (
		resp *http.Response
		err  error
	)
	switch f.MimeType {
	case mimeGoogleDoc:
		resp, err = d.svc.Files.Export(f.Id, mimeText).Context(ctx).Download()
	case mimeText, mimeMarkdown:
		resp, err = d.svc.Files.Get(f.Id).Context(ctx).Download()
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, f.MimeType)
	}
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
