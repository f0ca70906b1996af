// Package tests provides the external test data used by the emulator test
// suites. Files are downloaded on first use and cached in this directory.
package tests

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

const nestestURL = `https://raw.githubusercontent.com/christopherpow/nes-test-roms/master/other/`

var nestestFiles = []string{"nestest.nes", "nestest.log"}

func testdataDir() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "testdata")
}

// download fetches url into path, through a temporary file so that path only
// exists once complete.
func download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	tmpf, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpf.Name())

	if _, err := io.Copy(tmpf, resp.Body); err != nil {
		tmpf.Close()
		return fmt.Errorf("GET %s: %w", url, err)
	}
	if err := tmpf.Close(); err != nil {
		return err
	}
	return os.Rename(tmpf.Name(), path)
}

func downloadNestest(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range nestestFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		g.Go(func() error {
			return download(ctx, nestestURL+name, path)
		})
	}
	return g.Wait()
}

var nestestOnce = sync.OnceValue(func() error {
	return downloadNestest(filepath.Join(testdataDir(), "nestest"))
})

// NestestPaths returns the paths of the nestest ROM and its reference log,
// downloading them if needed. The test is skipped in short mode or if the
// files can't be downloaded.
func NestestPaths(tb testing.TB) (rom, log string) {
	tb.Helper()

	if testing.Short() {
		tb.Skip("skipping nestest in short mode")
	}

	dir := filepath.Join(testdataDir(), "nestest")
	if err := nestestOnce(); err != nil {
		tb.Skipf("nestest files not available: %v", err)
	}

	rom = filepath.Join(dir, nestestFiles[0])
	log = filepath.Join(dir, nestestFiles[1])
	for _, path := range []string{rom, log} {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			tb.Skipf("nestest file missing: %s", path)
		}
	}
	return rom, log
}
