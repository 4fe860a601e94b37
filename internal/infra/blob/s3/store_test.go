package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"slimelab/internal/blob/core"
)

func TestMockStoreLifecycle(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if s.Driver() != core.DriverS3 || s.Bucket() != "mock-bucket" {
		t.Fatalf("unexpected store %s %s", s.Driver(), s.Bucket())
	}
	info, err := s.Put(ctx, "lineage/abc.json", strings.NewReader(`{"id":"abc"}`), core.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"element": "fire"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len(`{"id":"abc"}`)) || info.ETag != "etag" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Metadata["element"] != "fire" {
		t.Fatalf("expected metadata round trip, got %v", info.Metadata)
	}
	got, rc, err := s.Get(ctx, "lineage/abc.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != `{"id":"abc"}` || got.ContentType != "application/json" {
		t.Fatalf("unexpected get %q %+v", body, got)
	}
	if _, err := s.Put(ctx, "lineage/abc.json", strings.NewReader("x"), core.PutOptions{}); !errors.Is(err, core.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if ok, err := s.Delete(ctx, "lineage/abc.json"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := s.Delete(ctx, "lineage/abc.json"); err != nil || ok {
		t.Fatalf("second delete: %v %v", ok, err)
	}
}

func TestMockStoreMissingKeys(t *testing.T) {
	s := NewMockForTests()
	ctx := context.Background()
	if _, err := s.Head(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected head ErrNotFound, got %v", err)
	}
	if _, _, err := s.Get(ctx, "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected get ErrNotFound, got %v", err)
	}
	if _, err := s.Put(ctx, "", strings.NewReader("x"), core.PutOptions{}); err == nil {
		t.Fatalf("expected empty key error")
	}
}

func TestListPaginates(t *testing.T) {
	s, mock := newMockStore(1)
	ctx := context.Background()
	for _, k := range []string{"lineage/c", "lineage/a", "lineage/b", "other/z"} {
		if _, err := s.Put(ctx, k, strings.NewReader(k), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", k, err)
		}
	}
	before := mock.requests
	infos, err := s.List(ctx, "lineage/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 3 || infos[0].Key != "lineage/a" || infos[2].Key != "lineage/c" {
		t.Fatalf("unexpected listing %+v", infos)
	}
	if calls := mock.requests - before; calls != 3 {
		t.Fatalf("expected 3 paged list calls, got %d", calls)
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatalf("expected bucket error")
	}
}
