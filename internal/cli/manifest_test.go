package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	root := testCLI().RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.Execute()
}

func TestManifestCheck(t *testing.T) {
	tests := []struct {
		name    string
		content string
		strict  bool
		wantErr bool
	}{
		{
			name:    "well-formed",
			content: "# deps\nstreamlit==1.31.0\ntorch==2.1.0\n\naudiocraft\n",
		},
		{
			name:    "duplicate package",
			content: "torch==2.1.0\nTorch==2.0.0\n",
			wantErr: true,
		},
		{
			name:    "invalid version",
			content: "torch==not.a.version!\n",
			wantErr: true,
		},
		{
			name:    "garbage line",
			content: "???not-a-requirement???\n",
			wantErr: true,
		},
		{
			name:    "unpinned passes by default",
			content: "torch\n",
		},
		{
			name:    "unpinned fails under strict",
			content: "torch\n",
			strict:  true,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"manifest", "check", writeManifest(t, tt.content)}
			if tt.strict {
				args = append(args, "--strict")
			}
			err := runCommand(t, args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("got err %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestManifestGraphDOT(t *testing.T) {
	path := writeManifest(t, "torch==2.1.0\nstreamlit\n")
	out := filepath.Join(t.TempDir(), "deps.dot")

	if err := runCommand(t, "manifest", "graph", path, "-f", "dot", "-o", out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph G {", `"torch"`, `"streamlit"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("DOT output missing %q", want)
		}
	}
}

func TestManifestGraphBadFormat(t *testing.T) {
	path := writeManifest(t, "torch\n")
	if err := runCommand(t, "manifest", "graph", path, "-f", "png"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestManifestCheckMissingFile(t *testing.T) {
	if err := runCommand(t, "manifest", "check", "/nonexistent/requirements.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
