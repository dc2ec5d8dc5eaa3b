//go:build smoke

package smoke

import (
	"bytes"
	"database/sql"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/poemgrid/internal/testutil"
)

func TestServerStartup(t *testing.T) {
	repoRoot := findRepoRoot(t)
	tempDir := t.TempDir()

	origin := newCatalogOrigin(t)

	binPath := filepath.Join(tempDir, "poemgrid-server")
	buildCmd := exec.Command("go", "build", "-o", binPath, "./cmd/server")
	buildCmd.Dir = repoRoot
	buildOutput, err := buildCmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to build server: %v\n%s", err, buildOutput)
	}

	port := reservePort(t)
	configPath := filepath.Join(tempDir, "config.yaml")
	configBody := fmt.Sprintf(`app:
  name: "poemgrid"
  environment: "development"
  port: %d
  base_url: "http://localhost:%d"

database:
  driver: "sqlite"
  filename: "%s"

catalog:
  origin: "%s"
  refresh_cron: "0 4 * * *"
  timeout: 5s

features:
  enable_debug: true
`, port, port, filepath.ToSlash(filepath.Join(tempDir, "db", "smoke.db")), origin.URL)

	if err := os.WriteFile(configPath, []byte(configBody), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := exec.Command(binPath)
	cmd.Dir = tempDir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	waitDone := make(chan struct{})
	var waitErr error
	go func() {
		waitErr = cmd.Wait()
		close(waitDone)
	}()

	t.Cleanup(func() {
		if cmd.Process == nil {
			return
		}
		_ = cmd.Process.Signal(os.Interrupt)
		select {
		case <-waitDone:
			return
		case <-time.After(5 * time.Second):
		}
		_ = cmd.Process.Kill()
		select {
		case <-waitDone:
		case <-time.After(5 * time.Second):
			t.Logf("server process did not exit after kill")
		}
	})

	baseURL := fmt.Sprintf("http://localhost:%d", port)
	client := &http.Client{Timeout: 500 * time.Millisecond}

	// The initial catalog refresh runs in the background; wait until the poem page
	// is served.
	waitForStatus(t, client, baseURL+"/health", waitDone, &stdout, &stderr)
	waitForStatus(t, client, baseURL+"/poems/primaries", waitDone, &stdout, &stderr)

	resp, err := client.Get(baseURL + "/api/v1/poems/primaries/grid.png?view=thumbnail")
	if err != nil {
		t.Fatalf("get thumbnail: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(body, []byte("\x89PNG")) {
		t.Fatalf("thumbnail status = %d, png = %v", resp.StatusCode, bytes.HasPrefix(body, []byte("\x89PNG")))
	}

	select {
	case <-waitDone:
		t.Fatalf("server exited unexpectedly: %v\nstdout:\n%s\nstderr:\n%s", waitErr, stdout.String(), stderr.String())
	default:
	}
}

func waitForStatus(t *testing.T, client *http.Client, target string, waitDone <-chan struct{}, stdout, stderr *bytes.Buffer) {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for {
		select {
		case <-waitDone:
			t.Fatalf("server exited before %s responded\nstdout:\n%s\nstderr:\n%s", target, stdout.String(), stderr.String())
		default:
		}

		resp, err := client.Get(target)
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}

		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s\nstdout:\n%s\nstderr:\n%s", target, stdout.String(), stderr.String())
		}

		time.Sleep(100 * time.Millisecond)
	}
}

func newCatalogOrigin(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/downloads/books.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"title": "Smoke", "slug": "smoke", "public_domain": true, "json_url": "%s/books/smoke.json"}]`, server.URL)
	})
	mux.HandleFunc("/books/smoke.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"toc": [{"name": "Primaries", "html_url": "/poems/primaries/"}]}`)
	})
	mux.HandleFunc("/poems/primaries.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"text": "red blue red"}`)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func reservePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to reserve port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func findRepoRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	t.Fatal("failed to locate repo root with go.mod")
	return ""
}

func TestMigrationsApplied(t *testing.T) {
	db := testutil.NewTestDB(t)

	expectedTables := []string{
		"books",
		"poems",
		"catalog_refreshes",
	}

	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name = ?",
			table,
		).Scan(&name)
		if err == sql.ErrNoRows {
			t.Fatalf("missing expected table %q after migrations", table)
		}
		if err != nil {
			t.Fatalf("query table %q existence: %v", table, err)
		}
	}
}

func TestForeignKeyIntegrity(t *testing.T) {
	db := testutil.NewTestDB(t)

	var foreignKeysEnabled int
	if err := db.QueryRow("PRAGMA foreign_keys;").Scan(&foreignKeysEnabled); err != nil {
		t.Fatalf("query foreign_keys pragma: %v", err)
	}
	if foreignKeysEnabled != 1 {
		t.Fatalf("expected foreign_keys pragma enabled, got %d", foreignKeysEnabled)
	}

	_, err := db.Exec(
		`INSERT INTO poems (slug, book_slug, title, position)
		 VALUES ('orphan', 'no-such-book', 'Orphan', 0)`,
	)
	if err == nil {
		t.Fatal("expected foreign key constraint failure for unknown book_slug")
	}
}
