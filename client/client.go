// Package client 通过 HTTP 访问数据集接口，实现 sketch.Backend
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GrainArc/SketchMap/config"
	"github.com/GrainArc/SketchMap/sketch"
	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb/geojson"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// APIError 非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
}

var _ sketch.Backend = (*Client)(nil)

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewFromConfig 使用 client 配置段
func NewFromConfig(cfg config.ClientConfig) *Client {
	return New(cfg.BaseURL, cfg.Timeout)
}

// WithHTTPClient 替换底层 http.Client，测试时指向 httptest 服务
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

type messageResponse struct {
	Success bool             `json:"success"`
	ID      sketch.DatasetID `json:"id"`
	Message string           `json:"message"`
}

func (c *Client) SaveDataset(ctx context.Context, req sketch.SaveRequest) (sketch.SaveResult, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/api/save-dataset", map[string]interface{}{
		"data":        req.Data,
		"filename":    req.Filename,
		"name":        req.Name,
		"description": req.Description,
	}, &out)
	if err != nil {
		return sketch.SaveResult{}, err
	}
	return sketch.SaveResult{ID: out.ID, Message: out.Message}, nil
}

func (c *Client) UpdateDataset(ctx context.Context, id sketch.DatasetID, data *geojson.FeatureCollection) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodPost, "/api/update-dataset", map[string]interface{}{
		"id":   id,
		"data": data,
	}, &out)
	return out.Message, err
}

func (c *Client) ListDatasets(ctx context.Context) ([]sketch.DatasetRecord, error) {
	var out []sketch.DatasetRecord
	if err := c.do(ctx, http.MethodGet, "/api/get-datasets", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDataset(ctx context.Context, id sketch.DatasetID) (*geojson.FeatureCollection, error) {
	raw, err := c.raw(ctx, http.MethodGet, "/api/get-dataset/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	return sketch.ParsePayload(raw)
}

func (c *Client) DeleteDataset(ctx context.Context, id sketch.DatasetID) (string, error) {
	var out messageResponse
	err := c.do(ctx, http.MethodDelete, "/api/remove-dataset/"+id.String(), nil, &out)
	return out.Message, err
}

func (c *Client) ListIcons(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, "/api/icons", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export 下载导出文件，format 为 geojson、dxf 或 zip
func (c *Client) Export(ctx context.Context, id sketch.DatasetID, format string) ([]byte, error) {
	q := url.Values{"format": {format}}
	return c.raw(ctx, http.MethodGet, "/api/export-dataset/"+id.String()+"?"+q.Encode(), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := c.raw(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) raw(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, data)
	}
	return data, nil
}

func apiError(status int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
	}
	msg := http.StatusText(status)
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		msg = payload.Error
	}
	return &APIError{Status: status, Message: msg}
}
