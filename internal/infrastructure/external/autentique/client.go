package autentique

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hcaumo/VisaProject/internal/application/port"
)

// DefaultBaseURL is the Autentique v2 GraphQL endpoint.
const DefaultBaseURL = "https://api.autentique.com.br/v2"

const createDocumentMutation = `mutation CreateDocumentMutation($document: DocumentInput!, $signers: [SignerInput!]!, $file: Upload!) {
  createDocument(document: $document, signers: $signers, file: $file) {
    id
    name
  }
}`

const documentQuery = `query Document($id: UUID!) {
  document(id: $id) {
    id
    name
    signatures {
      email
      signed { created_at }
    }
    files { signed }
  }
}`

// Client implements port.SignatureClient against the Autentique GraphQL API.
// File uploads follow the GraphQL multipart request protocol: an operations
// part, a map part binding the file to the Upload variable, and the file
// itself.
//
// In sandbox mode no call leaves the process and mock document ids are
// minted, so the signing flow can run without an Autentique account.
// Sandbox is forced when no token is configured.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	sandbox    bool
	logger     *zap.Logger
}

// NewClient creates an Autentique client. An empty token forces sandbox
// mode; an empty baseURL uses the production endpoint.
func NewClient(token, baseURL string, sandbox bool, timeout time.Duration, logger *zap.Logger) *Client {
	if token == "" && !sandbox {
		logger.Warn("No Autentique token configured, forcing sandbox mode")
		sandbox = true
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		sandbox:    sandbox,
		logger:     logger,
	}
}

// CreateDocument uploads the agreement and registers its signer, returning
// the provider's document id.
func (c *Client) CreateDocument(ctx context.Context, req port.SignatureRequest) (string, error) {
	if c.sandbox {
		docID := "doc-" + uuid.NewString()[:8]
		c.logger.Info("Sandbox signature document minted",
			zap.String("document_id", docID),
			zap.String("signer_email", req.SignerEmail))
		return docID, nil
	}

	operations := map[string]interface{}{
		"query": createDocumentMutation,
		"variables": map[string]interface{}{
			"document": map[string]interface{}{
				"name": req.DocumentName,
			},
			"signers": []map[string]interface{}{
				{
					"email":  req.SignerEmail,
					"name":   req.SignerName,
					"action": "SIGN",
				},
			},
			"file": nil,
		},
	}

	body, contentType, err := buildMultipart(operations, req.DocumentName+".html", []byte(req.HTMLContent))
	if err != nil {
		return "", err
	}

	var result struct {
		CreateDocument struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"createDocument"`
	}
	if err := c.do(ctx, body, contentType, &result); err != nil {
		return "", err
	}
	if result.CreateDocument.ID == "" {
		return "", fmt.Errorf("%w: autentique returned no document id", port.ErrProviderFailure)
	}

	c.logger.Info("Signature document created",
		zap.String("document_id", result.CreateDocument.ID),
		zap.String("signer_email", req.SignerEmail))

	return result.CreateDocument.ID, nil
}

// GetDocumentStatus returns "signed" once every signer has signed and
// "pending" before that.
func (c *Client) GetDocumentStatus(ctx context.Context, documentID string) (string, error) {
	if c.sandbox {
		return "pending", nil
	}

	doc, err := c.fetchDocument(ctx, documentID)
	if err != nil {
		return "", err
	}

	if len(doc.Signatures) == 0 {
		return "pending", nil
	}
	for _, sig := range doc.Signatures {
		if sig.Signed == nil {
			return "pending", nil
		}
	}
	return "signed", nil
}

// GetSignedURL returns the signed file URL, or an empty string while
// signatures are still outstanding.
func (c *Client) GetSignedURL(ctx context.Context, documentID string) (string, error) {
	if c.sandbox {
		return "", nil
	}

	doc, err := c.fetchDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Files.Signed, nil
}

type documentPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Signatures []struct {
		Email  string `json:"email"`
		Signed *struct {
			CreatedAt string `json:"created_at"`
		} `json:"signed"`
	} `json:"signatures"`
	Files struct {
		Signed string `json:"signed"`
	} `json:"files"`
}

func (c *Client) fetchDocument(ctx context.Context, documentID string) (*documentPayload, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query": documentQuery,
		"variables": map[string]interface{}{
			"id": documentID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode document query: %w", err)
	}

	var result struct {
		Document documentPayload `json:"document"`
	}
	if err := c.do(ctx, bytes.NewReader(payload), "application/json", &result); err != nil {
		return nil, err
	}
	if result.Document.ID == "" {
		return nil, fmt.Errorf("%w: autentique document %s", port.ErrProviderFailure, documentID)
	}
	return &result.Document, nil
}

// do posts a GraphQL request and decodes the data envelope into out.
func (c *Client) do(ctx context.Context, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/graphql", body)
	if err != nil {
		return fmt.Errorf("build autentique request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: autentique: %v", port.ErrProviderTimeout, err)
		}
		return fmt.Errorf("%w: autentique: %v", port.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: autentique returned %d: %s", port.ErrProviderFailure, resp.StatusCode, string(raw))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode autentique response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("%w: autentique: %s", port.ErrProviderFailure, envelope.Errors[0].Message)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode autentique data: %w", err)
	}
	return nil
}

// buildMultipart assembles a GraphQL multipart upload request.
func buildMultipart(operations map[string]interface{}, filename string, file []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	ops, err := json.Marshal(operations)
	if err != nil {
		return nil, "", fmt.Errorf("encode operations: %w", err)
	}
	if err := writer.WriteField("operations", string(ops)); err != nil {
		return nil, "", fmt.Errorf("write operations part: %w", err)
	}
	if err := writer.WriteField("map", `{"file": ["variables.file"]}`); err != nil {
		return nil, "", fmt.Errorf("write map part: %w", err)
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// Verify interface compliance
var _ port.SignatureClient = (*Client)(nil)
