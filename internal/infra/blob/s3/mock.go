package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// NewMockForTests returns a Store wired to an in-memory fake of the S3 REST
// API. It covers the Head/Get/Put/Delete/ListObjectsV2 calls Store makes.
func NewMockForTests() *Store {
	store, _ := newMockStore(0)
	return store
}

func newMockStore(pageSize int) (*Store, *mockS3) {
	rt := &mockS3{objects: make(map[string]mockObject), pageSize: pageSize}
	store, err := New(context.Background(), Config{
		Region:          DefaultRegion,
		Bucket:          "mock-bucket",
		Endpoint:        "https://mock.s3.local",
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PathStyle:       true,
		HTTPClient:      &http.Client{Transport: rt},
	})
	if err != nil {
		panic(fmt.Sprintf("mock s3: %v", err))
	}
	return store, rt
}

type mockObject struct {
	body        []byte
	contentType string
	metadata    http.Header
	modified    time.Time
}

// mockS3 serves path-style requests of the form /<bucket>/<key>.
type mockS3 struct {
	mu       sync.Mutex
	objects  map[string]mockObject
	pageSize int
	requests int
}

func (m *mockS3) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2" {
		return m.list(req), nil
	}
	switch req.Method {
	case http.MethodHead:
		obj, ok := m.objects[key]
		if !ok {
			return response(http.StatusNotFound, nil, nil), nil
		}
		return response(http.StatusOK, obj.headers(), nil), nil
	case http.MethodGet:
		obj, ok := m.objects[key]
		if !ok {
			body := []byte("<?xml version=\"1.0\"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>")
			return response(http.StatusNotFound, http.Header{"Content-Type": {"application/xml"}}, body), nil
		}
		return response(http.StatusOK, obj.headers(), obj.body), nil
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if decoded, ok := decodeChunked(body); ok {
			body = decoded
		}
		meta := http.Header{}
		for name, values := range req.Header {
			if strings.HasPrefix(strings.ToLower(name), "x-amz-meta-") {
				meta[name] = values
			}
		}
		m.objects[key] = mockObject{body: body, contentType: req.Header.Get("Content-Type"), metadata: meta, modified: time.Now().UTC()}
		return response(http.StatusOK, http.Header{"ETag": {`"etag"`}}, nil), nil
	case http.MethodDelete:
		delete(m.objects, key)
		return response(http.StatusNoContent, nil, nil), nil
	}
	return response(http.StatusNotImplemented, nil, nil), nil
}

func (m *mockS3) list(req *http.Request) *http.Response {
	prefix := req.URL.Query().Get("prefix")
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	start, _ := strconv.Atoi(req.URL.Query().Get("continuation-token"))
	if start > len(keys) {
		start = len(keys)
	}
	end := len(keys)
	if m.pageSize > 0 && start+m.pageSize < end {
		end = start + m.pageSize
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><ListBucketResult>`)
	if end < len(keys) {
		fmt.Fprintf(&b, "<IsTruncated>true</IsTruncated><NextContinuationToken>%d</NextContinuationToken>", end)
	} else {
		b.WriteString("<IsTruncated>false</IsTruncated>")
	}
	for _, k := range keys[start:end] {
		obj := m.objects[k]
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size><ETag>&quot;etag&quot;</ETag><LastModified>%s</LastModified></Contents>",
			k, len(obj.body), obj.modified.Format(time.RFC3339))
	}
	b.WriteString("</ListBucketResult>")
	return response(http.StatusOK, http.Header{"Content-Type": {"application/xml"}}, []byte(b.String()))
}

func (o mockObject) headers() http.Header {
	h := http.Header{
		"Content-Length": {strconv.Itoa(len(o.body))},
		"ETag":           {`"etag"`},
		"Last-Modified":  {o.modified.Format(http.TimeFormat)},
	}
	if o.contentType != "" {
		h.Set("Content-Type", o.contentType)
	}
	for name, values := range o.metadata {
		h[name] = values
	}
	return h
}

func response(status int, header http.Header, body []byte) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{StatusCode: status, Header: header, Body: io.NopCloser(bytes.NewReader(body)), ContentLength: int64(len(body))}
}

// decodeChunked unwraps a single-chunk aws-chunked payload:
// <hex size>\r\n<body>\r\n0\r\n<trailers>.
func decodeChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 || parts[2] != "0" {
		return nil, false
	}
	size, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size {
		return nil, false
	}
	return []byte(parts[1]), true
}
