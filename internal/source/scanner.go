package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexisbeaulieu97/docsmith/internal/logger"
)

// DefaultMaxFileSize caps individual files included in the prompt input.
const DefaultMaxFileSize = 64 * 1024

var defaultExtensions = []string{".go", ".py", ".js", ".ts", ".rs", ".java", ".rb", ".md"}

var skippedDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"vendor":       {},
	".docsmith":    {},
}

// Options controls project scanning.
type Options struct {
	// Extensions restricts collected files; defaults cover common source
	// languages.
	Extensions []string
	// MaxFileSize skips files larger than this many bytes.
	MaxFileSize int64
}

// Project is the scanned input handed to the documentation chain.
type Project struct {
	Name   string
	Root   string
	Files  []File
	Commit string
	Branch string
}

// File is one collected source file.
type File struct {
	Path    string
	Content string
}

// Scan walks the project tree rooted at dir and collects source files
// eligible for documentation.
func Scan(dir string, opts Options, log *logger.Logger) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = defaultExtensions
	}
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}

	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	project := &Project{
		Name: filepath.Base(root),
		Root: root,
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if _, skip := skippedDirs[d.Name()]; skip && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if info.Size() > maxSize {
			log.WithFields(map[string]any{"file": rel, "size": info.Size()}).Debug("skipping oversized file")
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		project.Files = append(project.Files, File{Path: rel, Content: string(content)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(project.Files, func(i, j int) bool {
		return project.Files[i].Path < project.Files[j].Path
	})

	if commit, branch, err := headRef(root); err == nil {
		project.Commit = commit
		project.Branch = branch
	} else {
		log.Debug("no git metadata available")
	}

	log.WithFields(map[string]any{"project": project.Name, "files": len(project.Files)}).Info("project scanned")
	return project, nil
}

// FileTree returns a newline-separated listing of collected paths.
func (p *Project) FileTree() string {
	var b strings.Builder
	for _, file := range p.Files {
		b.WriteString(file.Path)
		b.WriteByte('\n')
	}
	return b.String()
}

// Code returns every collected file wrapped in a path header, ready for
// prompt embedding.
func (p *Project) Code() string {
	var b strings.Builder
	for _, file := range p.Files {
		fmt.Fprintf(&b, "--- %s ---\n%s\n", file.Path, file.Content)
	}
	return b.String()
}

// Inputs converts the project into the seed inputs of a documentation
// chain run.
func (p *Project) Inputs() map[string]any {
	inputs := map[string]any{
		"project":   p.Name,
		"code":      p.Code(),
		"file_tree": p.FileTree(),
	}
	if p.Commit != "" {
		inputs["commit"] = p.Commit
	}
	if p.Branch != "" {
		inputs["branch"] = p.Branch
	}
	return inputs
}
