package sheets

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	valuesPath      = "/v4/spreadsheets/%s/values/%s"
)

type valueRange struct {
	Range          string  `json:"range"`
	MajorDimension string  `json:"majorDimension"`
	Values         [][]any `json:"values"`
}

type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) getValues(ctx context.Context, table string) (*valueRange, error) {
	endpoint := fmt.Sprintf("%s"+valuesPath, strings.TrimRight(c.APIURL, "/"), url.PathEscape(c.spreadsheetID), url.PathEscape(table))

	q := url.Values{}
	q.Set("majorDimension", "ROWS")
	q.Set("valueRenderOption", "FORMATTED_VALUE")

	var values valueRange
	if err := c.getJSON(ctx, endpoint, q, &values); err != nil {
		return nil, err
	}

	return &values, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, data)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func statusError(resp *http.Response, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return fmt.Errorf("bad status: %s: %s", resp.Status, parsed.Error.Message)
	}
	return fmt.Errorf("bad status: %s", resp.Status)
}

// toRows converts a header row plus data rows into header-keyed rows.
// Cells missing from ragged rows become empty strings.
func toRows(values [][]any) []Row {
	if len(values) == 0 {
		return []Row{}
	}

	headers := make([]string, len(values[0]))
	for i, cell := range values[0] {
		headers[i] = strings.TrimSpace(cellString(cell))
	}

	rows := make([]Row, 0, len(values)-1)
	for _, raw := range values[1:] {
		if len(raw) == 0 {
			continue
		}

		row := make(Row, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(raw) {
				row[header] = cellString(raw[i])
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
