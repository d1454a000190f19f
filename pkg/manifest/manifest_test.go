package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseClassifiesLines(t *testing.T) {
	content := `# TuneGAN demo dependencies
streamlit==1.35.0

torch==2.1.0  # pinned for audiocraft
-e ./local-package
git+https://github.com/facebookresearch/audiocraft.git
???bogus
`
	m, err := Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	wantKinds := []LineKind{
		LineComment,
		LineRequirement,
		LineBlank,
		LineRequirement,
		LineOption,
		LineURL,
		LineInvalid,
	}
	if len(m.Lines) != len(wantKinds) {
		t.Fatalf("got %d lines, want %d", len(m.Lines), len(wantKinds))
	}
	for i, want := range wantKinds {
		if m.Lines[i].Kind != want {
			t.Errorf("line %d: Kind = %s, want %s", i+1, m.Lines[i].Kind, want)
		}
		if m.Lines[i].Number != i+1 {
			t.Errorf("line %d: Number = %d", i+1, m.Lines[i].Number)
		}
	}
}

func TestParseRequirementFields(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		norm    string
		specs   []Specifier
		extras  []string
		comment string
	}{
		{"requests", "requests", "requests", nil, nil, ""},
		{"Django==4.2.1", "Django", "django", []Specifier{{"==", "4.2.1"}}, nil, ""},
		{"torch==2.1.0  # pinned", "torch", "torch", []Specifier{{"==", "2.1.0"}}, nil, "pinned"},
		{"uvicorn[standard]>=0.23", "uvicorn", "uvicorn", []Specifier{{">=", "0.23"}}, []string{"standard"}, ""},
		{"numpy>=1.24,<2", "numpy", "numpy", []Specifier{{">=", "1.24"}, {"<", "2"}}, nil, ""},
		{"typing_extensions~=4.8", "typing_extensions", "typing-extensions", []Specifier{{"~=", "4.8"}}, nil, ""},
		{"importlib-metadata; python_version < '3.10'", "importlib-metadata", "importlib-metadata", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := parseLine(1, tt.line)
			if got.Kind != LineRequirement {
				t.Fatalf("Kind = %s, want requirement", got.Kind)
			}
			req := got.Req
			if req.Name != tt.name {
				t.Errorf("Name = %q, want %q", req.Name, tt.name)
			}
			if req.Normalized != tt.norm {
				t.Errorf("Normalized = %q, want %q", req.Normalized, tt.norm)
			}
			if len(req.Specifiers) != len(tt.specs) {
				t.Fatalf("Specifiers = %v, want %v", req.Specifiers, tt.specs)
			}
			for i, spec := range tt.specs {
				if req.Specifiers[i] != spec {
					t.Errorf("Specifiers[%d] = %v, want %v", i, req.Specifiers[i], spec)
				}
			}
			if len(req.Extras) != len(tt.extras) {
				t.Errorf("Extras = %v, want %v", req.Extras, tt.extras)
			}
			if req.Comment != tt.comment {
				t.Errorf("Comment = %q, want %q", req.Comment, tt.comment)
			}
		})
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	content := "streamlit==1.35.0\ntorch==2.1.0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile failed: %v", err)
	}
	if m.Path != path {
		t.Errorf("Path = %q, want %q", m.Path, path)
	}
	if got := len(m.Requirements()); got != 2 {
		t.Errorf("Requirements count = %d, want 2", got)
	}
}

func TestPinned(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"torch==2.1.0", true},
		{"torch===2.1.0", true},
		{"torch>=2.1.0", false},
		{"torch", false},
	}
	for _, tt := range tests {
		got := parseLine(1, tt.line)
		if got.Req.Pinned() != tt.want {
			t.Errorf("Pinned(%q) = %v, want %v", tt.line, got.Req.Pinned(), tt.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Django", "django"},
		{"typing_extensions", "typing-extensions"},
		{"zope.interface", "zope-interface"},
		{"foo--bar__baz", "foo-bar-baz"},
		{"requests", "requests"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
