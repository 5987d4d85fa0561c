package lookup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"go.uber.org/zap"
)

var accessKeyPattern = regexp.MustCompile(`^\d{44}$`)

// RegistryResult is the outcome of an invoice-registry fetch. On success,
// Document holds the raw fiscal document bytes, ready for docparse.Parse.
// Failures carry a message directing the user to the manual-upload path —
// the registry has no SLA and the import flow must not depend on it.
type RegistryResult struct {
	Success  bool
	Message  string
	Document []byte
}

// RegistryClient fetches invoice documents from the national registry by
// their 44-digit access key.
type RegistryClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewRegistryClient builds a client. An empty baseURL disables remote
// fetching entirely (Fetch reports the manual fallback immediately), which is
// the correct posture when no registry endpoint is configured.
func NewRegistryClient(baseURL string, logger *zap.Logger) *RegistryClient {
	return &RegistryClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// maxDocumentSize caps registry downloads at 4 MB; fiscal documents are tens
// of kilobytes.
const maxDocumentSize = 4 << 20

// Fetch retrieves the document for an access key, best-effort.
func (c *RegistryClient) Fetch(ctx context.Context, accessKey string) RegistryResult {
	if !accessKeyPattern.MatchString(accessKey) {
		return RegistryResult{Message: "access key must be exactly 44 digits"}
	}
	if c.baseURL == "" {
		return RegistryResult{Message: "invoice registry not configured; upload the document manually"}
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, accessKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RegistryResult{Message: fmt.Sprintf("building request: %v", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("invoice registry unreachable", zap.Error(err))
		return RegistryResult{Message: "invoice registry unreachable; upload the document manually"}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return RegistryResult{Message: "no document found for this access key; upload it manually"}
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("invoice registry error", zap.Int("status", resp.StatusCode))
		return RegistryResult{Message: fmt.Sprintf("invoice registry returned status %d; upload the document manually", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return RegistryResult{Message: "failed reading registry response; upload the document manually"}
	}

	return RegistryResult{Success: true, Document: body}
}
