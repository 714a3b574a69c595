// Package ocr extracts text from PDF files by rasterizing pages with
// pdftoppm and running tesseract over the images. Extracted text is
// written next to a mirror of the source tree under a scratch
// directory, one ocr.txt per source file, so extraction is resumable.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/civdoc/civdoc"
)

// artifactName is the merged OCR output file written per source PDF.
const artifactName = "ocr.txt"

// attachmentHost is stripped from attachment source URLs before mapping
// them onto the WordPress data directory.
const attachmentHost = "https://www.marche.be"

// Runner executes an external command. It exists so tests can stand in
// for the OCR binaries.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns an error carrying stderr output
// on failure.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Service resolves document file paths and drives the OCR toolchain.
type Service struct {
	baseDir string
	tmpDir  string
	taxeDir string
	sites   civdoc.SiteRegistry
	runner  Runner
}

// NewService creates a Service. baseDir is the WordPress data directory,
// tmpDir the scratch root mirroring it, taxeDir the directory holding
// downloaded tax regulation PDFs.
func NewService(baseDir, tmpDir, taxeDir string, sites civdoc.SiteRegistry, runner Runner) *Service {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Service{
		baseDir: baseDir,
		tmpDir:  tmpDir,
		taxeDir: taxeDir,
		sites:   sites,
		runner:  runner,
	}
}

// ResolvePath maps a document onto the file holding its PDF on disk.
// Attachments resolve against the WordPress data directory; uploads of
// themed subsites live under blogs.dir keyed by site ID. Taxes resolve
// against the tax directory by file name.
func (s *Service) ResolvePath(doc *civdoc.Document) (string, error) {
	switch doc.TypeOf {
	case civdoc.TypeAttachment:
		return s.resolveAttachmentPath(doc)
	case civdoc.TypeTaxe:
		if doc.FileName == "" {
			return "", civdoc.Errorf(civdoc.EINVALID, "tax document %q has no file name", doc.ReferenceID)
		}
		return filepath.Join(s.taxeDir, doc.FileName), nil
	default:
		return "", civdoc.Errorf(civdoc.EINVALID, "document type %q has no file", doc.TypeOf)
	}
}

func (s *Service) resolveAttachmentPath(doc *civdoc.Document) (string, error) {
	if doc.SourceURL == "" {
		return "", civdoc.Errorf(civdoc.EINVALID, "attachment %q has no source URL", doc.ReferenceID)
	}

	path := strings.Replace(doc.SourceURL, attachmentHost, "", 1)

	// Main-site uploads map directly onto the data directory.
	if strings.Contains(doc.SourceURL, "uploads") {
		return filepath.Join(s.baseDir, path), nil
	}

	// Subsite files are served under the theme name but stored under
	// the numeric blog directory.
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return "", civdoc.Errorf(civdoc.EINVALID, "attachment %q has an empty path", doc.ReferenceID)
	}
	siteID, err := s.sites.IDByName(segments[0])
	if err != nil {
		return "", err
	}
	segments[0] = filepath.Join("blogs.dir", strconv.Itoa(siteID))

	return filepath.Join(s.baseDir, "wp-content", filepath.Join(segments...)), nil
}

// WorkDir returns the scratch directory for filePath. The source tree
// is mirrored under the tmp root with one directory per file, keyed by
// the file stem, so files sharing a source directory never share
// intermediate images or OCR output. Files under the tax directory
// mirror from that root instead of the WordPress data directory.
func (s *Service) WorkDir(filePath string) string {
	root := s.baseDir
	if !strings.HasPrefix(filePath, s.baseDir) && strings.HasPrefix(filePath, s.taxeDir) {
		root = s.taxeDir
	}
	mirrored := strings.Replace(filePath, root, s.tmpDir, 1)
	stem := strings.TrimSuffix(filepath.Base(mirrored), filepath.Ext(mirrored))
	return filepath.Join(filepath.Dir(mirrored), stem)
}

// ArtifactPath returns the merged OCR output file for filePath.
func (s *Service) ArtifactPath(filePath string) string {
	return filepath.Join(s.WorkDir(filePath), artifactName)
}

// HasFile reports whether the source file exists and is regular.
func (s *Service) HasFile(filePath string) bool {
	info, err := os.Stat(filePath)
	return err == nil && info.Mode().IsRegular()
}

// HasArtifact reports whether the OCR output for filePath exists.
func (s *Service) HasArtifact(filePath string) bool {
	info, err := os.Stat(s.ArtifactPath(filePath))
	return err == nil && info.Mode().IsRegular()
}

// ReadArtifact returns the extracted text for filePath.
func (s *Service) ReadArtifact(filePath string) (string, error) {
	text, err := os.ReadFile(s.ArtifactPath(filePath))
	if err != nil {
		return "", civdoc.Errorf(civdoc.ENOTFOUND, "no OCR output for %s", filePath)
	}
	return string(text), nil
}

// Extract runs the OCR toolchain for filePath. Extraction is skipped
// when the output already exists, so re-runs only process new files.
// The source file must exist; a missing file fails before any command
// runs.
func (s *Service) Extract(ctx context.Context, filePath string) error {
	info, err := os.Stat(filePath)
	if err != nil || !info.Mode().IsRegular() {
		return civdoc.Errorf(civdoc.EINVALID, "file not found: %s", filePath)
	}
	if s.HasArtifact(filePath) {
		return nil
	}

	workDir := s.WorkDir(filePath)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work directory: %w", err)
	}

	if err := s.runner.Run(ctx, "pdftoppm", "-png", filePath, filepath.Join(workDir, "img-ocr")); err != nil {
		return civdoc.Errorf(civdoc.EEXTERNAL, "rasterize %s: %s", filePath, err)
	}

	images, err := pageFiles(workDir, "img-ocr")
	if err != nil {
		return err
	}
	for i, image := range images {
		output := filepath.Join(workDir, "text-"+strconv.Itoa(i+1))
		err := s.runner.Run(ctx, "tesseract", filepath.Join(workDir, image), output, "--oem", "1", "--psm", "3", "-l", "fra")
		if err != nil {
			return civdoc.Errorf(civdoc.EEXTERNAL, "recognize %s: %s", image, err)
		}
	}

	return s.mergePages(filePath, workDir)
}

// mergePages concatenates the per-page text files in page order into
// the final artifact.
func (s *Service) mergePages(filePath, workDir string) error {
	pages, err := pageFiles(workDir, "text-")
	if err != nil {
		return err
	}

	var sb strings.Builder
	for _, page := range pages {
		text, err := os.ReadFile(filepath.Join(workDir, page))
		if err != nil {
			return fmt.Errorf("read page text: %w", err)
		}
		sb.Write(text)
	}

	if err := os.WriteFile(s.ArtifactPath(filePath), []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write OCR output: %w", err)
	}
	return nil
}

var pageNumberRE = regexp.MustCompile(`(\d+)`)

// pageFiles lists the files in dir whose name contains prefix, sorted
// by the page number embedded in the name. Lexical order would shuffle
// pages past nine.
func pageFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list work directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.Contains(entry.Name(), prefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return pageNumber(names[i]) < pageNumber(names[j])
	})
	return names, nil
}

func pageNumber(name string) int {
	match := pageNumberRE.FindString(name)
	if match == "" {
		return 0
	}
	n, _ := strconv.Atoi(match)
	return n
}
