// Package static serves read-only files from the public directory.
//
// Files are resolved through an fs.FS, normally backed by an os.Root, so
// request paths can never reach outside the directory: ".." elements are
// cleaned away and symlinks leaving the root are refused by the OS layer.
// Requests that do not resolve to a servable file fall through to the next
// handler, matching how the API routes are layered behind the assets.
package static

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
)

// IndexFile is served for directory requests.
const IndexFile = "index.html"

// Empty is a file system with no files. It stands in for a missing public directory.
var Empty fs.FS = emptyFS{}

type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Middleware serves GET and HEAD requests for files present in fsys and
// passes everything else to next.
func Middleware(fsys fs.FS) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}
			name, ok := Name(r.URL.Path)
			if !ok || !serve(w, r, fsys, name, true) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

// File serves one fixed file from fsys, or hands the request to notFound if it is missing.
func File(fsys fs.FS, name string, notFound http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !serve(w, r, fsys, name, false) {
			notFound.ServeHTTP(w, r)
		}
	})
}

// Name maps a URL path to a file name inside the root.
// It reports false for paths that touch hidden files or are not valid fs paths.
func Name(urlPath string) (string, bool) {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return ".", true
	}
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	return name, fs.ValidPath(name)
}

// serve writes name to w and reports whether the request was answered.
// With redirectDirs set, a directory requested without a trailing slash is
// redirected to the slash form so relative links in its index resolve.
func serve(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string, redirectDirs bool) bool {
	f, info, err := openFile(fsys, name)
	if err == nil && info.IsDir() {
		f.Close() //nolint:errcheck // read-only handle
		if redirectDirs && !strings.HasSuffix(r.URL.Path, "/") {
			redirectDir(w, r, name)
			return true
		}
		f, info, err = openFile(fsys, path.Join(name, IndexFile))
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("Static file unavailable", "name", name, "err", err)
		}
		return false
	}
	defer f.Close() //nolint:errcheck // read-only handle

	if !info.Mode().IsRegular() {
		return false
	}

	content, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			slog.Warn("Failed to read static file", "name", name, "err", err)
			return false
		}
		content = bytes.NewReader(data)
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return true
}

// redirectDir sends a 301 to the directory's slash form. The target is built
// from the cleaned name, so it can never become a protocol-relative URL.
func redirectDir(w http.ResponseWriter, r *http.Request, name string) {
	target := "/"
	if name != "." {
		target = "/" + name + "/"
	}
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

func openFile(fsys fs.FS, name string) (fs.File, fs.FileInfo, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close() //nolint:errcheck // stat already failed
		return nil, nil, err
	}
	return f, info, nil
}

// OpenOrEmpty opens dir, logging and falling back to Empty when it cannot be opened.
// The returned close function is never nil.
func OpenOrEmpty(dir string) (fs.FS, func() error) {
	root, err := os.OpenRoot(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("Public directory missing, static files disabled", "dir", dir)
		} else {
			slog.Warn("Failed to open public directory, static files disabled", "dir", dir, "err", err)
		}
		return Empty, func() error { return nil }
	}
	return root.FS(), root.Close
}
