package grobid

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeTempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessFulltextSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != apiPathFulltext {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing upload: %v", err)
		}
		if _, _, err := r.FormFile("input"); err != nil {
			t.Errorf("missing input file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(sampleTEI))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	data, err := client.ExtractCitations(context.Background(), writeTempPDF(t))
	if err != nil {
		t.Fatalf("ExtractCitations: %v", err)
	}
	if len(data.Refs) != 2 {
		t.Errorf("got %d references, want 2", len(data.Refs))
	}
}

func TestProcessFulltextRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "PDF could not be segmented", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.ProcessFulltext(context.Background(), writeTempPDF(t))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestProcessFulltextUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.ProcessFulltext(context.Background(), writeTempPDF(t))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
}

func TestIsAlive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == apiPathIsAlive {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	if err := client.IsAlive(context.Background()); err != nil {
		t.Errorf("IsAlive: %v", err)
	}
}
