// Where: internal/infra/vcs/fetcher_test.go
// What: Tests for checkout fetching and descriptor validation.
package vcs

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/graylanquantum/shipit/internal/infra/ui"
)

func TestDescriptorName(t *testing.T) {
	cases := []struct {
		name    string
		files   []string
		want    string
		wantErr bool
	}{
		{"dockerfile", []string{"Dockerfile"}, "Dockerfile", false},
		{"containerfile", []string{"Containerfile"}, "Containerfile", false},
		{"dockerfile preferred", []string{"Containerfile", "Dockerfile"}, "Dockerfile", false},
		{"none", []string{"README.md"}, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tc.files {
				if err := os.WriteFile(filepath.Join(dir, f), []byte("FROM scratch\n"), 0o644); err != nil {
					t.Fatalf("write %s: %v", f, err)
				}
			}
			got, err := DescriptorName(dir)
			if tc.wantErr != (err != nil) {
				t.Fatalf("DescriptorName err = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("DescriptorName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHasMetadata(t *testing.T) {
	dir, _ := initRepo(t)
	if !HasMetadata(dir) {
		t.Fatal("expected metadata in initialized repo")
	}
	if HasMetadata(t.TempDir()) {
		t.Fatal("expected no metadata in bare temp dir")
	}
}

func TestFetchClonesFreshAndValidates(t *testing.T) {
	srcDir, repo := initRepo(t)
	commitFile(t, repo, srcDir, "Dockerfile", "FROM scratch\n", "initial")

	dest := filepath.Join(t.TempDir(), "checkout")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	stale := filepath.Join(dest, "stale.txt")
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatalf("write stale file: %v", err)
	}

	fetcher := &Fetcher{Log: ui.NewTestLogger(&bytes.Buffer{})}
	if err := fetcher.Fetch(context.Background(), srcDir, dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale checkout to be replaced")
	}
	if _, err := os.Stat(filepath.Join(dest, "Dockerfile")); err != nil {
		t.Fatalf("expected Dockerfile in checkout: %v", err)
	}
}

func TestFetchFailsWithoutDescriptor(t *testing.T) {
	srcDir, repo := initRepo(t)
	commitFile(t, repo, srcDir, "README.md", "docs only\n", "initial")

	dest := filepath.Join(t.TempDir(), "checkout")
	fetcher := &Fetcher{Log: ui.NewTestLogger(&bytes.Buffer{})}
	if err := fetcher.Fetch(context.Background(), srcDir, dest); err == nil {
		t.Fatal("expected missing-descriptor error")
	}
}
