package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
)

// RequestOption adjusts a single call made through the typed helpers.
type RequestOption func(*Request)

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(key, value)
	}
}

// WithQuery appends query parameters.
func WithQuery(q url.Values) RequestOption {
	return func(r *Request) {
		if r.Query == nil {
			r.Query = make(url.Values)
		}
		for k, vs := range q {
			for _, v := range vs {
				r.Query.Add(k, v)
			}
		}
	}
}

// WithoutRenewal disables renewal for this call, e.g. for a login attempt whose
// 401 means bad credentials.
func WithoutRenewal() RequestOption {
	return func(r *Request) { r.SkipRenewal = true }
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Dispatch(ctx, build(http.MethodGet, path, nil, "", opts))
}

// Post sends body encoded as JSON. A nil body, including a nil pointer, sends no
// payload.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*http.Response, error) {
	data, contentType, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, build(http.MethodPost, path, data, contentType, opts))
}

// Put sends body encoded as JSON. A nil body, including a nil pointer, sends no
// payload.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*http.Response, error) {
	data, contentType, err := encodeJSON(body)
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, build(http.MethodPut, path, data, contentType, opts))
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Dispatch(ctx, build(http.MethodDelete, path, nil, "", opts))
}

// PostMultipart sends form as multipart/form-data.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, opts ...RequestOption) (*http.Response, error) {
	data, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, build(http.MethodPost, path, data, contentType, opts))
}

// PutMultipart sends form as multipart/form-data.
func (c *Client) PutMultipart(ctx context.Context, path string, form *Form, opts ...RequestOption) (*http.Response, error) {
	data, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}
	return c.Dispatch(ctx, build(http.MethodPut, path, data, contentType, opts))
}

func build(method, path string, body []byte, contentType string, opts []RequestOption) Request {
	req := Request{
		Method:      method,
		Path:        path,
		Body:        body,
		ContentType: contentType,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}

func encodeJSON(body any) ([]byte, string, error) {
	if isNil(body) {
		return nil, "", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return data, "application/json", nil
}

func isNil(body any) bool {
	if body == nil {
		return true
	}
	v := reflect.ValueOf(body)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
