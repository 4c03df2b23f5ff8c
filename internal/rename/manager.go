package rename

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/docscan/form-renamer/internal/config"
	"github.com/docscan/form-renamer/internal/domain"
	"github.com/docscan/form-renamer/internal/observability"
)

// Manager handles input enumeration and all destination-side file moves
type Manager struct {
	inputDir  string
	outputDir string
	prefix    string
	logger    *observability.Logger
}

// NewManager creates a file manager for the configured directories
func NewManager(dirs config.DirsConfig, prefix string, logger *observability.Logger) *Manager {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Manager{
		inputDir:  dirs.Input,
		outputDir: dirs.Output,
		prefix:    prefix,
		logger:    logger,
	}
}

// EnsureDirs verifies the input directory exists and creates the output
// directory. A missing input directory aborts the run before any file is
// touched.
func (m *Manager) EnsureDirs() error {
	info, err := os.Stat(m.inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.ConfigError(fmt.Sprintf("input directory does not exist: %s", m.inputDir), err)
		}
		return domain.ConfigError(fmt.Sprintf("cannot access input directory: %s", m.inputDir), err)
	}
	if !info.IsDir() {
		return domain.ConfigError(fmt.Sprintf("input path is not a directory: %s", m.inputDir), nil)
	}

	if err := os.MkdirAll(m.outputDir, 0o755); err != nil {
		return domain.ConfigError(fmt.Sprintf("cannot create output directory: %s", m.outputDir), err)
	}

	return nil
}

// ListDocuments returns the PDFs in the input directory in lexicographic
// order by filename; the extension match is case-insensitive. With todayOnly
// set, only files modified on the current day are returned.
func (m *Manager) ListDocuments(todayOnly bool) ([]domain.SourceDocument, error) {
	entries, err := os.ReadDir(m.inputDir)
	if err != nil {
		return nil, domain.IOError(fmt.Sprintf("cannot read input directory: %s", m.inputDir), err)
	}

	now := time.Now()
	var docs []domain.SourceDocument
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			m.logger.Warn().Str("name", entry.Name()).Err(err).Msg("skipping unreadable directory entry")
			continue
		}

		if todayOnly && !sameDay(info.ModTime(), now) {
			continue
		}

		docs = append(docs, domain.NewSourceDocument(filepath.Join(m.inputDir, entry.Name()), info))
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })

	return docs, nil
}

// RenameAndMove moves a processed document to its destination name,
// disambiguating with a numeric counter instead of overwriting.
func (m *Manager) RenameAndMove(sourcePath, patientName string) (string, error) {
	target := filepath.Join(m.outputDir, m.prefix+patientName+".pdf")

	counter := 1
	for pathExists(target) {
		target = filepath.Join(m.outputDir, fmt.Sprintf("%s%s (%d).pdf", m.prefix, patientName, counter))
		counter++
	}

	if err := moveFile(sourcePath, target); err != nil {
		return "", domain.IOError(fmt.Sprintf("cannot move %s", filepath.Base(sourcePath)), err)
	}

	m.logger.Debug().
		Str("source", filepath.Base(sourcePath)).
		Str("target", filepath.Base(target)).
		Msg("document moved")

	return target, nil
}

// Archive moves a split multi-form source into outputDir/originals so its
// pages stay recoverable after the parts are processed.
func (m *Manager) Archive(sourcePath string) (string, error) {
	originalsDir := filepath.Join(m.outputDir, "originals")
	if err := os.MkdirAll(originalsDir, 0o755); err != nil {
		return "", domain.IOError("cannot create originals directory", err)
	}

	base := filepath.Base(sourcePath)
	target := filepath.Join(originalsDir, base)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	counter := 1
	for pathExists(target) {
		target = filepath.Join(originalsDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		counter++
	}

	if err := moveFile(sourcePath, target); err != nil {
		return "", domain.IOError(fmt.Sprintf("cannot archive %s", base), err)
	}

	return target, nil
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// moveFile renames src to dst, falling back to copy and remove when rename
// fails (scanner drops can sit on another filesystem than the output dir)
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	// O_EXCL keeps the no-overwrite guarantee even on the fallback path
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	return os.Remove(src)
}
