package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func Test_filePrepender(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"docs/pepti-map.md", "title: pepti-map\nnav_order: 0\nhas_children: true"},
		{"docs/pepti-map_merge.md", "title: merge\nparent: pepti-map\nnav_order: 4"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := filePrepender(tt.filename); !strings.Contains(got, tt.want) {
				t.Errorf("filePrepender() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func Test_linkHandler(t *testing.T) {
	if got := linkHandler("pepti-map.md"); got != "/" {
		t.Errorf("linkHandler() = %q, want /", got)
	}
	if got := linkHandler("pepti-map_run.md"); got != "pepti-map_run" {
		t.Errorf("linkHandler() = %q, want pepti-map_run", got)
	}
}

func Test_docsCmd(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	if err := docsCmd.RunE(docsCmd, []string{dir}); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"pepti-map.md", "pepti-map_run.md", "pepti-map_index.md", "pepti-map_match.md", "pepti-map_merge.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("docs missing %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "pepti-map_docs.md")); err == nil {
		t.Error("docs include the hidden docs command")
	}
}
