package cmd

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// https://pmarsceill.github.io/just-the-docs/docs/navigation-structure/
const rootPage = `---
layout: default
title: %s
nav_order: %d
has_children: true
permalink: /
---
`

const childPage = `---
layout: default
title: %s
parent: %s
nav_order: %d
---
`

// navOrder of the command pages, by Markdown file base name
var navOrder = map[string]int{
	"pepti-map":       0,
	"pepti-map_run":   1,
	"pepti-map_index": 2,
	"pepti-map_match": 3,
	"pepti-map_merge": 4,
}

// docsCmd writes the Markdown documentation of every command
var docsCmd = &cobra.Command{
	Use:    "docs [dir]",
	Short:  "Write Markdown docs for every command",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "./docs"
		if len(args) > 0 {
			dir = args[0]
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create docs dir: %w", err)
		}
		return doc.GenMarkdownTreeCustom(RootCmd, dir, filePrepender, linkHandler)
	},
}

func init() {
	RootCmd.AddCommand(docsCmd)
}

// filePrepender adds YAML headings that are required by the just-the-docs theme
// https://github.com/spf13/cobra/blob/master/doc/md_docs.md
func filePrepender(filename string) string {
	base := baseName(filename)
	if base == RootCmd.Name() {
		return fmt.Sprintf(rootPage, base, navOrder[base])
	}
	title := strings.TrimPrefix(base, RootCmd.Name()+"_")
	return fmt.Sprintf(childPage, title, RootCmd.Name(), navOrder[base])
}

// linkHandler returns the URL to a documentation page
func linkHandler(filename string) string {
	base := baseName(filename)
	if base == RootCmd.Name() {
		return "/"
	}
	return base
}

func baseName(filename string) string {
	name := filepath.Base(filename)
	return strings.TrimSuffix(name, path.Ext(name))
}
