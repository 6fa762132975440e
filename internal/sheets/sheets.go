package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
)

const (
	apiURL         = "https://sheets.googleapis.com"
	userAgent      = "spigell/vendor-matcher"
	readOnlyScope  = "https://www.googleapis.com/auth/spreadsheets.readonly"
	defaultTimeout = 15 * time.Second
)

// Row is a single table row keyed by the column headers of the table.
type Row map[string]string

// Fetcher is the only operation the recommendation engine needs from the tabular store.
type Fetcher interface {
	FetchTable(ctx context.Context, name string) ([]Row, error)
}

// Credentials identify the service account used to read the spreadsheet.
type Credentials struct {
	Email      string
	PrivateKey []byte
}

// Client reads whole sheets from a single Google spreadsheet.
type Client struct {
	spreadsheetID string
	logger        *zap.Logger
	HTTPClient    *http.Client
	UserAgent     string
	APIURL        string
}

// New creates a client authenticated with the service account credentials.
// ctx is used for token refreshes for the lifetime of the client.
func New(ctx context.Context, logger *zap.Logger, spreadsheetID string, creds Credentials, timeout time.Duration) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if strings.TrimSpace(creds.Email) == "" {
		return nil, errors.New("service account email is required")
	}
	if len(creds.PrivateKey) == 0 {
		return nil, errors.New("service account private key is required")
	}

	conf := &jwt.Config{
		Email:      strings.TrimSpace(creds.Email),
		PrivateKey: creds.PrivateKey,
		Scopes:     []string{readOnlyScope},
		TokenURL:   google.JWTTokenURL,
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := conf.Client(ctx)
	httpClient.Timeout = timeout

	return NewWithHTTPClient(logger, spreadsheetID, httpClient), nil
}

// NewWithHTTPClient creates a client that sends requests through the provided
// http client as is. The client is expected to handle authorization itself.
func NewWithHTTPClient(logger *zap.Logger, spreadsheetID string, httpClient *http.Client) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Client{
		spreadsheetID: spreadsheetID,
		logger:        logger,
		HTTPClient:    httpClient,
		UserAgent:     userAgent,
		APIURL:        apiURL,
	}
}

// FetchTable reads every row of the named sheet. The first row is used as column headers.
func (c *Client) FetchTable(ctx context.Context, name string) ([]Row, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("table name is required")
	}

	values, err := c.getValues(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("get values of %q: %w", name, err)
	}

	rows := toRows(values.Values)
	c.logger.Debug("fetched table",
		zap.String("table", name),
		zap.String("range", values.Range),
		zap.Int("rows", len(rows)),
	)

	return rows, nil
}
