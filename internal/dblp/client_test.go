package dblp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const multiHitResponse = `{
  "result": {
    "hits": {
      "@total": "2",
      "hit": [
        {
          "info": {
            "title": "Attention Is All You Need.",
            "year": "2017",
            "venue": "NIPS",
            "url": "https://dblp.org/rec/conf/nips/VaswaniSPUJGKP17",
            "doi": "10.5555/3295222",
            "authors": {
              "author": [
                {"text": "Ashish Vaswani"},
                {"text": "Noam Shazeer 0001"}
              ]
            }
          }
        },
        {
          "info": {
            "title": "Another Paper",
            "year": "2018",
            "authors": {
              "author": {"text": "Solo Author"}
            }
          }
        }
      ]
    }
  }
}`

func TestSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		if r.URL.Query().Get("format") != "json" {
			t.Errorf("format = %q, want json", r.URL.Query().Get("format"))
		}
		w.Write([]byte(multiHitResponse))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	hits, err := client.Search(context.Background(), "attention is all you need")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotQuery != "attention is all you need" {
		t.Errorf("query = %q", gotQuery)
	}
	if len(hits) != 2 {
		t.Fatalf("len(hits) = %d, want 2", len(hits))
	}

	first := hits[0].Info
	if first.Title != "Attention Is All You Need." || first.Year != "2017" {
		t.Errorf("first hit = %+v", first)
	}
	if want := []string{"Ashish Vaswani", "Noam Shazeer 0001"}; !reflect.DeepEqual(first.Authors.Names(), want) {
		t.Errorf("Names() = %v, want %v", first.Authors.Names(), want)
	}

	// The single-author shape decodes as a one-element list.
	if want := []string{"Solo Author"}; !reflect.DeepEqual(hits[1].Info.Authors.Names(), want) {
		t.Errorf("single-author Names() = %v, want %v", hits[1].Info.Authors.Names(), want)
	}
}

func TestSearch_NoHits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": {"hits": {"@total": "0"}}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	hits, err := client.Search(context.Background(), "no such paper")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if hits != nil {
		t.Errorf("hits = %v, want none", hits)
	}
}

func TestSearch_ServerErrorRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(multiHitResponse))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxElapsed(10*time.Second))
	hits, err := client.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 2 || calls != 2 {
		t.Errorf("hits = %d, calls = %d", len(hits), calls)
	}
}

func TestSearch_ClientErrorIsPermanent(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "anything")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("error = %v, want APIError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, a 4xx response must not be retried", calls)
	}
}

func TestSearch_InvalidPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	_, err := client.Search(context.Background(), "anything")
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("error = %v, want ErrInvalidResponse", err)
	}
}
