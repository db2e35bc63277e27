package player

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"dexterm/internal/domain"
)

const downloadTimeout = 15 * time.Second

// Launcher plays Pokémon cries through an external audio player. The .ogg
// file is downloaded into the cache directory once and replayed from disk
// afterwards; decoding is entirely the player's problem.
type Launcher struct {
	command  string   // configured player command, empty for auto-detect
	args     []string // additional player arguments
	cacheDir string   // where downloaded cries live
	logger   *slog.Logger

	httpClient *http.Client
}

// candidates are tried in order when no player is configured.
var candidates = map[string][]string{
	"darwin":  {"mpv", "afplay"},
	"linux":   {"mpv", "ffplay", "paplay"},
	"windows": {"mpv"},
}

// NewLauncher creates a cry launcher. cacheDir is created on first use.
func NewLauncher(command string, args []string, cacheDir string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:    command,
		args:       args,
		cacheDir:   cacheDir,
		logger:     logger,
		httpClient: &http.Client{Timeout: downloadTimeout},
	}
}

// PlayCry downloads (once) and plays the preferred cry for a Pokémon.
// Returns an error only when no cry URL exists or the download fails;
// player exit codes are not waited on.
func (l *Launcher) PlayCry(ctx context.Context, cries domain.Cries) error {
	cryURL := cries.Preferred()
	if cryURL == "" {
		return fmt.Errorf("%w: no cry audio available", domain.ErrNotFound)
	}

	localPath, err := l.fetchToCache(ctx, cryURL)
	if err != nil {
		return err
	}

	return l.launch(localPath)
}

// fetchToCache returns the local path for a cry, downloading it if this is
// the first play.
func (l *Launcher) fetchToCache(ctx context.Context, cryURL string) (string, error) {
	parsed, err := url.Parse(cryURL)
	if err != nil || !parsed.IsAbs() {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidURL, cryURL)
	}

	if err := os.MkdirAll(l.cacheDir, 0755); err != nil {
		return "", err
	}

	localPath := filepath.Join(l.cacheDir, filepath.Base(parsed.Path))
	if _, err := os.Stat(localPath); err == nil {
		l.logger.Debug("cry already cached", "path", localPath)
		return localPath, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cryURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: downloading cry: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: cry download status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	// Write to a temp file first so a partial download never masquerades
	// as a cached cry.
	tmp, err := os.CreateTemp(l.cacheDir, "cry-*.part")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: saving cry: %v", domain.ErrFetchFailed, err)
	}
	tmp.Close()

	if err := os.Rename(tmp.Name(), localPath); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	l.logger.Info("cry downloaded", "url", cryURL, "path", localPath)
	return localPath, nil
}

// launch starts the audio player without waiting for it to finish.
func (l *Launcher) launch(path string) error {
	// Tier 1: user configured a specific player
	if l.command != "" {
		args := append(append([]string{}, l.args...), path)
		l.logger.Info("launching configured player", "command", l.command)
		return exec.Command(l.command, args...).Start()
	}

	// Tier 2: candidate chain for this platform
	names, ok := candidates[runtime.GOOS]
	if !ok {
		names = candidates["linux"]
	}
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		l.logger.Info("launching detected player", "command", name)
		return exec.Command(name, path).Start()
	}

	// Tier 3: system default handler
	return l.launchDefault(path)
}

// launchDefault opens the file with the OS default handler.
func (l *Launcher) launchDefault(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	l.logger.Info("launching with system default", "os", runtime.GOOS, "path", path)
	return cmd.Start()
}
