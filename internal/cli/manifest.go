package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adityaaj2003/tunegan/pkg/cache"
	"github.com/adityaaj2003/tunegan/pkg/httputil"
	"github.com/adityaaj2003/tunegan/pkg/manifest"
	"github.com/adityaaj2003/tunegan/pkg/registry/pypi"
	"github.com/adityaaj2003/tunegan/pkg/render/dot"
)

// manifestCommand creates the manifest command group.
func (c *CLI) manifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Check, graph, and audit requirements manifests",
		Long: `Manifest works with pip-style requirements files: one package per line,
optionally pinned with ==, with # comments and blank lines.

Subcommands:
  check  validate well-formedness (syntax, duplicates, version pins)
  graph  render the dependency graph as DOT or SVG
  audit  verify entries against the PyPI registry`,
	}

	cmd.AddCommand(c.manifestCheckCommand())
	cmd.AddCommand(c.manifestGraphCommand())
	cmd.AddCommand(c.manifestAuditCommand())

	return cmd
}

// manifestCheckCommand creates the "manifest check" subcommand.
func (c *CLI) manifestCheckCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check <requirements.txt>",
		Short: "Validate a manifest's well-formedness",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}

			issues := m.Validate(manifest.ValidateOptions{Strict: strict})
			errorCount := printIssues(issues)

			reqs := m.Requirements()
			if errorCount > 0 {
				return fmt.Errorf("%s: %d error(s) in %d requirement(s)", args[0], errorCount, len(reqs))
			}
			printSuccess("%s is well-formed (%d requirements)", filepath.Base(args[0]), len(reqs))
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail unless every package is pinned with ==")

	return cmd
}

// printIssues prints validation issues styled by severity and returns the
// number of error-severity ones.
func printIssues(issues []manifest.Issue) int {
	errorCount := 0
	for _, issue := range issues {
		switch issue.Severity {
		case manifest.SeverityError:
			errorCount++
			printError("%s", issue)
		case manifest.SeverityWarning:
			printWarning("%s", issue)
		default:
			printDetail("%s", issue)
		}
	}
	return errorCount
}

// manifestGraphCommand creates the "manifest graph" subcommand.
func (c *CLI) manifestGraphCommand() *cobra.Command {
	var (
		output   string
		format   string
		rootName string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph <requirements.txt>",
		Short: "Render the manifest's dependency graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}

			g := m.Graph(rootName)
			dotSrc := dot.ToDOT(g, dot.Options{Detailed: detailed})

			var data []byte
			switch format {
			case "dot":
				data = []byte(dotSrc)
			case "svg":
				if data, err = dot.RenderSVG(dotSrc); err != nil {
					return fmt.Errorf("render svg: %w", err)
				}
			default:
				return fmt.Errorf("invalid format: %q (must be dot or svg)", format)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "." + format
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			printSuccess("Rendered %d package(s)", g.NodeCount()-1)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: manifest name with new extension)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg or dot")
	cmd.Flags().StringVar(&rootName, "root", "", "name for the project root node")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include version constraints and extras in labels")

	return cmd
}

// manifestAuditCommand creates the "manifest audit" subcommand.
func (c *CLI) manifestAuditCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "audit <requirements.txt>",
		Short: "Verify manifest entries against the PyPI registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.ParseFile(args[0])
			if err != nil {
				return err
			}

			client, err := newPyPIClient()
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(cmd.Context(), "Auditing against PyPI...")
			spinner.Start()
			results := client.Audit(cmd.Context(), m, refresh)
			spinner.Stop()
			if spinner.Cancelled() {
				return cmd.Context().Err()
			}

			failed := 0
			for _, res := range results {
				label := res.Package
				if res.Pin != "" {
					label += "==" + res.Pin
				}
				switch res.Status {
				case pypi.AuditOK:
					printDetail("%s (latest %s)", label, res.Latest)
				case pypi.AuditFetchFailed:
					failed++
					printWarning("%s: %s: %v", label, res.Status, res.Err)
				default:
					failed++
					printError("line %d: %s: %s", res.Line, label, res.Status)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d package(s) failed the audit", failed, len(results))
			}
			printSuccess("All %d package(s) verified against PyPI", len(results))
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the registry response cache")

	return cmd
}

// newPyPIClient builds a registry client with an on-disk response cache.
func newPyPIClient() (*pypi.Client, error) {
	dir, err := httpCacheDir()
	if err != nil {
		return nil, err
	}
	hc, err := httputil.NewCache(dir, cache.TTLHTTP)
	if err != nil {
		return nil, err
	}
	return pypi.NewClient(hc), nil
}
