// Package script renders download scripts and keeps them in temporary storage
// until the process shuts down.
package script

import (
	"errors"
	"strings"
	"text/template"
)

// FileName is the name a generated script is served under.
const FileName = "dl.sh"

// ErrEmptyDir is returned when the target directory name is blank.
var ErrEmptyDir = errors.New("script: empty directory name")

var scriptTmpl = template.Must(template.New(FileName).Funcs(template.FuncMap{
	"q": Quote,
}).Parse(`#!/bin/bash

if [ ! -d {{q .Dir}} ]; then
    mkdir -p {{q .Dir}}
elif [ -n "$(ls -A {{q .Dir}})" ]; then
    echo {{q .NotEmpty}}
    exit 1
fi

{{range .Links}}wget --no-check-certificate -c -P {{q $.Dir}} {{q .}}
{{end}}`))

// Render returns a bash script that creates dir, refuses to run when dir is
// not empty and then downloads every link into it with wget.
func Render(dir string, links []string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return "", ErrEmptyDir
	}

	var b strings.Builder
	err := scriptTmpl.Execute(&b, struct {
		Dir      string
		NotEmpty string
		Links    []string
	}{
		Dir:      dir,
		NotEmpty: dir + " is not empty, pls delete it and try again.",
		Links:    links,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Quote wraps s in single quotes for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
