// Package installer implements spec §4.5: downloading, extracting, and
// verifying a tool into its install directory, running lifecycle hooks
// around the process and rolling back on any post-install failure.
package installer

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tsukumogami/vx/internal/installer/archive"
	"github.com/tsukumogami/vx/internal/installer/lifecycle"
	"github.com/tsukumogami/vx/internal/log"
)

// Method names the install pathway, per spec §4.5.
type Method string

const (
	MethodArchive        Method = "archive"
	MethodBinary         Method = "binary"
	MethodPackageManager Method = "package_manager"
)

// InstallConfig is the installer's sole input.
type InstallConfig struct {
	ToolName       string
	Version        string
	InstallDir     string
	DownloadURL    string
	Method         Method
	ArchiveFormat  archive.Format // meaningful only when Method == MethodArchive
	BinaryName     string         // meaningful only when Method == MethodBinary: the name to give the downloaded file under bin/
	Hooks          lifecycle.Hooks
	Force          bool
	Checksum       string // SHA-256, optional
	AllowedDomains []string
}

// InstallResult is the installer's success output.
type InstallResult struct {
	InstallPath      string
	ExecutablePath   string
	Version          string
	AlreadyInstalled bool
}

// Installer runs InstallConfig -> InstallResult, coordinating download,
// extraction, lifecycle hooks, and the runtime's own verification.
type Installer struct {
	client     *http.Client
	logger     log.Logger
	downloader *Downloader
}

// New builds an Installer that downloads through the given HTTP
// client, used as is.
func New(client *http.Client, logger log.Logger) *Installer {
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Installer{client: client, logger: logger, downloader: NewDownloader(client, nil)}
}

// Verifier is the subset of registry.Runtime the installer needs to
// confirm a successful install, kept narrow so this package doesn't
// import internal/registry.
type Verifier interface {
	VerifyInstallation(version, installPath string, p Platform) (execPath string, errs []string, suggestions []string)
}

// Platform is a minimal copy of internal/platform.Platform's shape, so
// this package doesn't import internal/platform either.
type Platform struct {
	OS   string
	Arch string
	Libc string
}

// Install runs the full install flow: idempotency check, download
// (Archive/Binary) or delegation (PackageManager), lifecycle hooks, and
// verification, rolling back the install tree on any failure after
// extraction.
func (i *Installer) Install(ctx context.Context, cfg InstallConfig, verify Verifier, plat Platform, progress ProgressSink) (*InstallResult, error) {
	if !cfg.Force {
		if info, err := os.Stat(cfg.InstallDir); err == nil && info.IsDir() {
			if execPath, errs, _ := verify.VerifyInstallation(cfg.Version, cfg.InstallDir, plat); len(errs) == 0 {
				return &InstallResult{InstallPath: cfg.InstallDir, ExecutablePath: execPath, Version: cfg.Version, AlreadyInstalled: true}, nil
			}
		}
	}

	if err := os.RemoveAll(cfg.InstallDir); err != nil {
		return nil, fmt.Errorf("clear stale install dir: %w", err)
	}
	if err := os.MkdirAll(cfg.InstallDir, 0o755); err != nil {
		return nil, fmt.Errorf("create install dir: %w", err)
	}

	if err := lifecycle.Run(ctx, cfg.Hooks.PreInstall, cfg.InstallDir); err != nil {
		os.RemoveAll(cfg.InstallDir)
		return nil, fmt.Errorf("pre-install hooks: %w", err)
	}

	if err := i.fetchAndPlace(ctx, cfg, progress); err != nil {
		os.RemoveAll(cfg.InstallDir)
		return nil, err
	}

	if err := lifecycle.Run(ctx, cfg.Hooks.PostInstall, cfg.InstallDir); err != nil {
		os.RemoveAll(cfg.InstallDir)
		return nil, fmt.Errorf("post-install hooks: %w", err)
	}

	execPath, errs, suggestions := verify.VerifyInstallation(cfg.Version, cfg.InstallDir, plat)
	if len(errs) > 0 {
		os.RemoveAll(cfg.InstallDir)
		return nil, &VerificationFailedError{ToolName: cfg.ToolName, Version: cfg.Version, Errors: errs, Suggestions: suggestions}
	}

	i.logger.Info("install complete", "tool", cfg.ToolName, "version", cfg.Version, "path", execPath)
	return &InstallResult{InstallPath: cfg.InstallDir, ExecutablePath: execPath, Version: cfg.Version}, nil
}

// VerificationFailedError wraps a runtime's structured verify failure.
type VerificationFailedError struct {
	ToolName    string
	Version     string
	Errors      []string
	Suggestions []string
}

func (e *VerificationFailedError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("verification failed for %s@%s", e.ToolName, e.Version)
	}
	return fmt.Sprintf("verification failed for %s@%s: %s", e.ToolName, e.Version, e.Errors[0])
}

func (i *Installer) fetchAndPlace(ctx context.Context, cfg InstallConfig, progress ProgressSink) error {
	switch cfg.Method {
	case MethodArchive:
		return i.fetchArchive(ctx, cfg, progress)
	case MethodBinary:
		return i.fetchBinary(ctx, cfg, progress)
	case MethodPackageManager:
		return fmt.Errorf("package manager installs are delegated by the caller before Install is invoked")
	default:
		return fmt.Errorf("unknown install method %q", cfg.Method)
	}
}

func (i *Installer) fetchArchive(ctx context.Context, cfg InstallConfig, progress ProgressSink) error {
	tmpFile, err := os.CreateTemp("", "vx-download-*")
	if err != nil {
		return fmt.Errorf("create temp download file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	downloader := i.downloader
	if len(cfg.AllowedDomains) > 0 {
		downloader = NewDownloader(i.client, cfg.AllowedDomains)
	}
	if err := downloader.Download(ctx, cfg.DownloadURL, tmpPath, cfg.Checksum, progress); err != nil {
		return fmt.Errorf("download %s: %w", cfg.DownloadURL, err)
	}

	if err := archive.Extract(cfg.ArchiveFormat, tmpPath, cfg.InstallDir); err != nil {
		return fmt.Errorf("extract %s: %w", cfg.DownloadURL, err)
	}
	return nil
}

func (i *Installer) fetchBinary(ctx context.Context, cfg InstallConfig, progress ProgressSink) error {
	binDir := filepath.Join(cfg.InstallDir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}
	name := cfg.BinaryName
	if name == "" {
		name = cfg.ToolName
	}
	dest := filepath.Join(binDir, name)

	downloader := i.downloader
	if len(cfg.AllowedDomains) > 0 {
		downloader = NewDownloader(i.client, cfg.AllowedDomains)
	}
	if err := downloader.Download(ctx, cfg.DownloadURL, dest, cfg.Checksum, progress); err != nil {
		return fmt.Errorf("download %s: %w", cfg.DownloadURL, err)
	}
	return os.Chmod(dest, 0o755)
}
