package s3

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, h http.Handler) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	st, err := New(Config{
		Endpoint:       srv.URL,
		Region:         "us-east-1",
		AccessKey:      "test",
		SecretKey:      "test",
		ForcePathStyle: true,
		Bucket:         "reviews",
		Prefix:         "daily-reviews/",
		Suffix:         ".jl",
		RPS:            50,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return st
}

const singlePage = `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <Name>reviews</Name>
  <Prefix>daily-reviews/</Prefix>
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>daily-reviews/agoda_2025-04-10.jl</Key>
    <LastModified>2025-04-10T06:00:00Z</LastModified>
    <Size>1024</Size>
  </Contents>
  <Contents>
    <Key>daily-reviews/manifest.txt</Key>
    <LastModified>2025-04-10T06:00:00Z</LastModified>
    <Size>64</Size>
  </Contents>
</ListBucketResult>`

func TestListFiles_FiltersBySuffix(t *testing.T) {
	var gotPrefix string
	st := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, singlePage)
	}))

	files, err := st.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if gotPrefix != "daily-reviews/" {
		t.Fatalf("expected prefix query, got %q", gotPrefix)
	}
	if len(files) != 1 {
		t.Fatalf("expected the .txt object filtered out, got %+v", files)
	}
	f := files[0]
	if f.Key != "daily-reviews/agoda_2025-04-10.jl" || f.Size != 1024 {
		t.Fatalf("unexpected file: %+v", f)
	}
	if f.LastModified.Year() != 2025 {
		t.Fatalf("last-modified not parsed: %v", f.LastModified)
	}
}

func TestListFiles_FollowsContinuationTokens(t *testing.T) {
	page1 := `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <IsTruncated>true</IsTruncated>
  <NextContinuationToken>tok2</NextContinuationToken>
  <Contents>
    <Key>daily-reviews/a.jl</Key>
    <LastModified>2025-04-10T06:00:00Z</LastModified>
    <Size>10</Size>
  </Contents>
</ListBucketResult>`
	page2 := `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
  <IsTruncated>false</IsTruncated>
  <Contents>
    <Key>daily-reviews/b.jl</Key>
    <LastModified>2025-04-11T06:00:00Z</LastModified>
    <Size>20</Size>
  </Contents>
</ListBucketResult>`

	var calls int
	st := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/xml")
		if tok := r.URL.Query().Get("continuation-token"); tok == "" {
			fmt.Fprint(w, page1)
			return
		} else if tok != "tok2" {
			t.Errorf("unexpected continuation token %q", tok)
		}
		fmt.Fprint(w, page2)
	}))

	files, err := st.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 pages fetched, got %d", calls)
	}
	if len(files) != 2 || files[0].Key != "daily-reviews/a.jl" || files[1].Key != "daily-reviews/b.jl" {
		t.Fatalf("unexpected files: %+v", files)
	}
}

func TestListFiles_AccessDenied(t *testing.T) {
	st := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>AccessDenied</Code><Message>Access Denied</Message><RequestId>deadbeef</RequestId></Error>`)
	}))

	_, err := st.ListFiles(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "AccessDenied") {
		t.Fatalf("expected AccessDenied, got %v", err)
	}
}

func TestOpen_StreamsBody(t *testing.T) {
	body := `{"hotelId":1}` + "\n" + `{"hotelId":2}` + "\n"
	st := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews/daily-reviews/a.jl" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)
	}))

	rc, err := st.Open(context.Background(), "daily-reviews/a.jl")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != body {
		t.Fatalf("unexpected body: %q", b)
	}
}
