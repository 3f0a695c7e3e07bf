package internal

import (
	"context"
	"io"

	"github.com/frankli0324/go-httpflow/internal/model"
)

// Response is a fully read response.
type Response struct {
	Status model.Status
	Header model.Header
	Body   []byte
}

func collectBody(status model.Status, header model.Header, body io.Reader) (*Response, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	return &Response{Status: status, Header: header, Body: b}, nil
}

// Collect sends req, following up to [DefaultMaxRedirects] redirects, and
// reads the final response into memory.
func Collect(ctx context.Context, m Manager, req *model.Request) (*Response, error) {
	return ExecuteWithRedirects(ctx, m, req, DefaultMaxRedirects, collectBody)
}

// FetchURL GETs rawURL and returns the body of the final response. Any
// status outside 2xx is reported as a *[model.StatusCodeError].
func FetchURL(ctx context.Context, m Manager, rawURL string) ([]byte, error) {
	req, err := model.NewRequest("GET", rawURL)
	if err != nil {
		return nil, err
	}
	resp, err := Collect(ctx, m, req)
	if err != nil {
		return nil, err
	}
	if !resp.Status.IsSuccess() {
		return nil, &model.StatusCodeError{Status: resp.Status, Header: resp.Header, Body: resp.Body}
	}
	return resp.Body, nil
}

// Collect is [Collect] with the redirect settings of c.
func (c *Client) Collect(ctx context.Context, req *model.Request) (*Response, error) {
	return Do(ctx, c, req, collectBody)
}

// Fetch is [FetchURL] on c.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	return FetchURL(ctx, c, rawURL)
}
