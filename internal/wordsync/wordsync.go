// Package wordsync loads word list CSV files into the word bank, either
// from a local directory or from a git repository that is cloned once and
// pulled on every later sync.
package wordsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/lernwerk/vokabel/internal/vocab"
)

// Upserter writes words into the word bank.
type Upserter interface {
	UpsertWords(ctx context.Context, words []vocab.WordEntry) (int, error)
}

// Report summarizes one import.
type Report struct {
	Files    int
	Words    int
	Rejected int

	// Errors holds the per-file problems. Rejected rows are included as
	// *vocab.RowError values wrapped with the file name.
	Errors []error
}

// Err returns the joined file errors, or nil.
func (r Report) Err() error { return errors.Join(r.Errors...) }

// Syncer imports word lists.
type Syncer struct {
	words    Upserter
	reposDir string
	log      *slog.Logger
}

// New returns a Syncer that writes to words and keeps git checkouts under
// reposDir.
func New(words Upserter, reposDir string, log *slog.Logger) *Syncer {
	if log == nil {
		log = slog.Default()
	}
	return &Syncer{words: words, reposDir: reposDir, log: log}
}

// Sync brings the checkout of repoURL up to date and imports every CSV
// file in it.
func (s *Syncer) Sync(ctx context.Context, repoURL, branch string) (Report, error) {
	dest, err := LocalPath(s.reposDir, repoURL)
	if err != nil {
		return Report{}, err
	}
	if err := s.Checkout(ctx, repoURL, branch, dest); err != nil {
		return Report{}, err
	}
	return s.ImportDir(ctx, dest)
}

// Checkout clones repoURL into dest, or pulls when dest already exists.
func (s *Syncer) Checkout(ctx context.Context, repoURL, branch, dest string) error {
	_, err := os.Stat(dest)
	switch {
	case os.IsNotExist(err):
		s.log.Info("cloning word repository", "url", repoURL, "path", dest)
		opts := &git.CloneOptions{URL: repoURL, SingleBranch: true}
		if branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		}
		if _, err := git.PlainCloneContext(ctx, dest, false, opts); err != nil {
			return fmt.Errorf("clone %s: %w", repoURL, err)
		}
	case err == nil:
		repo, err := git.PlainOpen(dest)
		if err != nil {
			return fmt.Errorf("open checkout %s: %w", dest, err)
		}
		wt, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("worktree of %s: %w", dest, err)
		}
		opts := &git.PullOptions{RemoteName: "origin", SingleBranch: true}
		if branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
		}
		err = wt.PullContext(ctx, opts)
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			s.log.Debug("word repository up to date", "path", dest)
			return nil
		}
		if err != nil {
			return fmt.Errorf("pull %s: %w", dest, err)
		}
		s.log.Info("pulled word repository", "path", dest)
	default:
		return fmt.Errorf("stat %s: %w", dest, err)
	}
	return nil
}

// ImportDir imports every *.csv file below dir. Hidden directories such as
// .git are skipped. A file with rejected rows still contributes its valid
// rows.
func (s *Syncer) ImportDir(ctx context.Context, dir string) (Report, error) {
	var rep Report
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".csv") {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.importFile(ctx, path, &rep)
		return nil
	})
	if err != nil {
		return rep, fmt.Errorf("walk %s: %w", dir, err)
	}
	s.log.Info("word import complete",
		"path", dir,
		"files", rep.Files,
		"words", rep.Words,
		"rejected", rep.Rejected,
	)
	return rep, nil
}

// ImportFile imports a single word list.
func (s *Syncer) ImportFile(ctx context.Context, path string) (Report, error) {
	var rep Report
	s.importFile(ctx, path, &rep)
	if rep.Files == 0 {
		return rep, rep.Err()
	}
	return rep, nil
}

func (s *Syncer) importFile(ctx context.Context, path string, rep *Report) {
	f, err := os.Open(path)
	if err != nil {
		rep.Errors = append(rep.Errors, err)
		return
	}
	defer f.Close()

	entries, rowErr := vocab.ReadCSV(f)
	if rowErr != nil {
		var n int
		if joined, ok := rowErr.(interface{ Unwrap() []error }); ok {
			n = len(joined.Unwrap())
		} else {
			n = 1
		}
		rep.Rejected += n
		rep.Errors = append(rep.Errors, fmt.Errorf("%s: %w", path, rowErr))
		s.log.Warn("rejected rows in word list", "file", path, "count", n)
	}
	if len(entries) == 0 {
		return
	}
	written, err := s.words.UpsertWords(ctx, entries)
	if err != nil {
		rep.Errors = append(rep.Errors, fmt.Errorf("%s: %w", path, err))
		return
	}
	rep.Files++
	rep.Words += written
	s.log.Debug("imported word list", "file", path, "words", written)
}

// LocalPath maps a repository URL to its checkout directory below baseDir.
// https, ssh ("git@host:owner/repo.git") and local paths are understood.
func LocalPath(baseDir, repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err == nil && (u.Scheme == "https" || u.Scheme == "http" || u.Scheme == "ssh") && u.Host != "" {
		return filepath.Join(baseDir, u.Hostname(), strings.TrimSuffix(u.Path, ".git")), nil
	}
	if err == nil && u.Scheme == "file" {
		return filepath.Join(baseDir, "local", strings.TrimSuffix(filepath.Base(u.Path), ".git")), nil
	}
	if user, rest, ok := strings.Cut(repoURL, "@"); ok && user != "" {
		if host, path, ok := strings.Cut(rest, ":"); ok && host != "" && path != "" {
			return filepath.Join(baseDir, host, strings.TrimSuffix(path, ".git")), nil
		}
	}
	if filepath.IsAbs(repoURL) {
		return filepath.Join(baseDir, "local", strings.TrimSuffix(filepath.Base(repoURL), ".git")), nil
	}
	return "", fmt.Errorf("could not parse git URL %q", repoURL)
}
