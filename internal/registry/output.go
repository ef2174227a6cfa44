package registry

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// OutputPath guesses where pake-cli left the built application for project
// id. It checks <dir>/<stem>.app, <dir>/<stem>.exe and <dir>/<stem> in that
// order and returns the first that exists, or "" if none does.
//
// The stem is the project's name for http(s) sources and the file name
// without extension for local sources.
func (r *Registry) OutputPath(ctx context.Context, id string) (string, error) {
	p, err := r.Load(ctx, id)
	if err != nil {
		return "", err
	}
	if p.Config.URL == nil {
		return "", nil
	}

	name := "app"
	if p.Config.Name != nil && *p.Config.Name != "" {
		name = *p.Config.Name
	}
	stem := outputStem(*p.Config.URL, name)

	dir := r.PathOf(id)
	for _, candidate := range []string{stem + ".app", stem + ".exe", stem} {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func outputStem(url, name string) string {
	if strings.HasPrefix(url, "http") {
		return name
	}
	base := filepath.Base(filepath.FromSlash(url))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return name
	}
	return stem
}
