package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-netgen/pkg/codegen"
	"github.com/goliatone/go-netgen/pkg/design"
	"github.com/goliatone/go-netgen/pkg/editor"
	"github.com/goliatone/go-netgen/pkg/export"
	"github.com/goliatone/go-netgen/pkg/layer"
	"github.com/goliatone/go-netgen/pkg/session"
)

const usage = `Usage: netgen <command> [flags]

Commands:
  validate   check a design document against the topology rules
  generate   render a design document as framework code
  edit       edit a design document interactively
  schema     print the bounds schema of a network family
`

func main() {
	log.SetFlags(0)
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("netgen: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return errors.New("missing command")
	}

	switch args[0] {
	case "validate":
		return runValidate(args[1:], stdout)
	case "generate":
		return runGenerate(args[1:], stdout)
	case "edit":
		return runEdit(ctx, args[1:], stdout)
	case "schema":
		return runSchema(args[1:], stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func runValidate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	path := fs.String("design", "", "design document (JSON or YAML)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, _, err := loadWorkspace(*path)
	if err != nil {
		return err
	}
	snapshot, err := ws.Commit()
	if err != nil {
		return fmt.Errorf("%s: %w", *path, err)
	}
	fmt.Fprintf(stdout, "%s: valid %s network with %d layers\n", *path, snapshot.Family(), len(snapshot.Layers()))
	return nil
}

func runGenerate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	path := fs.String("design", "", "design document (JSON or YAML)")
	framework := fs.String("framework", "keras", "target framework")
	mode := fs.String("mode", "", "code shape for multi-mode frameworks (defaults to the document mode)")
	format := fs.String("format", "py", "output format: py or html")
	output := fs.String("output", "", "output file (stdout if empty, '.' for the conventional file name)")
	themePath := fs.String("theme", "", "go-theme manifest (JSON) for html output")
	variant := fs.String("variant", "", "theme variant for html output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ws, doc, err := loadWorkspace(*path)
	if err != nil {
		return err
	}
	if _, err := ws.Commit(); err != nil {
		return fmt.Errorf("%s: %w", *path, err)
	}

	selected := doc.Mode
	if strings.TrimSpace(*mode) != "" {
		selected = codegen.ParseMode(*mode)
	}
	code, err := ws.Generate(*framework, selected)
	if err != nil {
		return err
	}

	var rendered string
	switch strings.ToLower(*format) {
	case "py", "python", "text":
		var b strings.Builder
		if err := export.WriteText(&b, code); err != nil {
			return err
		}
		rendered = b.String()
	case "html":
		page := export.Page{
			Title:       doc.Title,
			Description: doc.Description,
			Family:      doc.Family,
			Framework:   strings.ToLower(*framework),
		}
		if strings.TrimSpace(*themePath) != "" {
			selector, name, err := loadThemeSelector(*themePath)
			if err != nil {
				return err
			}
			page.Theme, page.Variant, err = export.ResolveTheme(selector, name, *variant)
			if err != nil {
				return err
			}
		}
		rendered, err = export.HTML(code, page)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q", *format)
	}

	target := *output
	if target == "" {
		_, err := io.WriteString(stdout, rendered)
		return err
	}
	if target == "." {
		target = export.FileName(doc.Family, *framework)
		if strings.EqualFold(*format, "html") {
			target = strings.TrimSuffix(target, filepath.Ext(target)) + ".html"
		}
	}
	if err := os.WriteFile(target, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "Code written to %s\n", target)
	return nil
}

func runEdit(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	path := fs.String("design", "", "design document to create or update")
	familyName := fs.String("family", "fcn", "network family for a new document")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*path) == "" {
		return errors.New("edit: -design is required")
	}

	var doc design.Document
	if _, err := os.Stat(*path); err == nil {
		doc, err = design.LoadFile(*path)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		family, err := layer.ParseFamily(*familyName)
		if err != nil {
			return err
		}
		doc = design.Document{Family: family}
	} else {
		return err
	}

	ws := session.New(doc.Family, session.WithDraft(doc.Layers))
	ed := editor.New(doc.Family, editor.WithPromptDriver(editor.NewSurveyDriver(stdout)))
	snapshot, err := ed.RunWorkspace(ctx, ws)
	if errors.Is(err, editor.ErrAborted) {
		fmt.Fprintf(stdout, "Edit aborted, %s left unchanged\n", *path)
		return nil
	}
	if err != nil {
		return err
	}

	doc.Layers = snapshot.Layers()
	if err := design.SaveFile(*path, doc); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Design written to %s\n", *path)
	return nil
}

func runSchema(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	familyName := fs.String("family", "fcn", "network family")
	if err := fs.Parse(args); err != nil {
		return err
	}

	family, err := layer.ParseFamily(*familyName)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(design.Schema(family), "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

func loadWorkspace(path string) (*session.Workspace, design.Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, design.Document{}, errors.New("-design is required")
	}
	doc, err := design.LoadFile(path)
	if err != nil {
		return nil, design.Document{}, err
	}
	return session.New(doc.Family, session.WithDraft(doc.Layers)), doc, nil
}
