package cli

import (
	"bytes"
	"fmt"

	"github.com/morozRed/fura/internal/engine"
	"github.com/morozRed/fura/internal/fileutil"
	"github.com/morozRed/fura/internal/output"
	"github.com/morozRed/fura/internal/relation"
	"github.com/spf13/cobra"
)

func RunAnalyze(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	root, cfg, err := prepareProject(cmd, optionalArg(args, 0))
	if err != nil {
		return err
	}
	e, err := analyzeProject(cmd, root, cfg, asJSON)
	if err != nil {
		return err
	}
	defer e.Close()

	summary, err := e.Summary()
	if err != nil {
		return err
	}

	if asJSON {
		return output.PrintJSON(cmd.OutOrStdout(), summary)
	}
	return output.RenderSummary(cmd.OutOrStdout(), summary)
}

func RunUnused(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd, output.FormatText, output.FormatJSON)
	if err != nil {
		return err
	}
	strict, err := OptionalBoolFlag(cmd, "strict")
	if err != nil {
		return err
	}

	root, cfg, err := prepareProject(cmd, optionalArg(args, 0))
	if err != nil {
		return err
	}
	// Fail on missing entry or include before scanning anything.
	if err := cfg.ValidateUnused(); err != nil {
		return err
	}

	e, err := analyzeProject(cmd, root, cfg, format == output.FormatJSON)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := e.FindUnreachableAll(cmd.Context(), cfg.Entry, engine.UnusedOptions{Include: cfg.Include, Strict: strict})
	if err != nil {
		return err
	}
	if format == output.FormatJSON {
		return output.PrintJSON(cmd.OutOrStdout(), res)
	}
	return output.RenderUnused(cmd.OutOrStdout(), res, e.Root())
}

func RunRelation(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(cmd, output.FormatText, output.FormatJSON, output.FormatMermaid)
	if err != nil {
		return err
	}
	rawDirection, err := OptionalStringFlag(cmd, "direction")
	if err != nil {
		return err
	}
	dir, err := relation.ParseDirection(rawDirection)
	if err != nil {
		return err
	}
	byPackage, err := OptionalBoolFlag(cmd, "package")
	if err != nil {
		return err
	}
	outPath, err := OptionalStringFlag(cmd, "out")
	if err != nil {
		return err
	}

	root, cfg, err := prepareProject(cmd, optionalArg(args, 1))
	if err != nil {
		return err
	}
	e, err := analyzeProject(cmd, root, cfg, format != output.FormatText || outPath != "")
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	var (
		flat    relation.Flat
		payload any
	)
	if byPackage {
		rel, err := e.GetPackageRelation(ctx, args[0])
		if err != nil {
			return err
		}
		flat, payload = rel.Flat, rel
	} else {
		file, err := e.FileByPath(ctx, args[0])
		if err != nil {
			return err
		}
		flat, err = e.GetFlatRelation(ctx, file.ID, dir)
		if err != nil {
			return err
		}
		payload = flat
	}

	var buf bytes.Buffer
	switch format {
	case output.FormatJSON:
		err = output.PrintJSON(&buf, payload)
	case output.FormatMermaid:
		_, err = buf.WriteString(output.Mermaid(flat, e.Root()))
	default:
		err = output.RenderRelation(&buf, flat, e.Root())
	}
	if err != nil {
		return err
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	written, err := fileutil.WriteIfChanged(outPath, buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	if written {
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", outPath)
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s is up to date\n", outPath)
	}
	return nil
}

func RunTree(cmd *cobra.Command, args []string) error {
	asJSON, err := OptionalBoolFlag(cmd, "json")
	if err != nil {
		return err
	}
	root, cfg, err := prepareProject(cmd, optionalArg(args, 0))
	if err != nil {
		return err
	}
	e, err := analyzeProject(cmd, root, cfg, asJSON)
	if err != nil {
		return err
	}
	defer e.Close()

	tree, err := e.GetProjectTree(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return output.PrintJSON(cmd.OutOrStdout(), tree)
	}
	return output.RenderTree(cmd.OutOrStdout(), tree)
}
