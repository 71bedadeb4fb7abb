package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/raido/internal/testutil"
)

func TestWatch_FiresAfterChange(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 100*time.Millisecond, testutil.Logger(), func() {
			fired <- struct{}{}
		})
	}()

	// Let the watcher register before writing.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "post.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("run callback never fired")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 4)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		_ = Watch(ctx, dir, 100*time.Millisecond, testutil.Logger(), func() {
			fired <- struct{}{}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "image.png"), []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
		t.Error("callback fired for a non-markdown file")
	case <-time.After(500 * time.Millisecond):
	}
}
