package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"sitecompare/internal/enrich"
	"sitecompare/internal/features"
	"sitecompare/internal/sites"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTypesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the site-type catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := buildComponents(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer comps.Close()
			return printJSON(cmd.OutOrStdout(), comps.siteTypes.Info())
		},
	}
}

func newFeaturesCmd(opts *options) *cobra.Command {
	var siteType string
	cmd := &cobra.Command{
		Use:   "features",
		Short: "List candidate features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			comps, err := buildComponents(cmd.Context(), opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer comps.Close()
			if siteType != "" {
				if _, err := comps.siteTypes.Profile(siteType); err != nil {
					return err
				}
			}
			fs, err := comps.features.List(cmd.Context(), siteType)
			if err != nil {
				return err
			}
			for _, it := range features.Items(fs) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", it.OID, it.SiteType, it.Label, it.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&siteType, "type", "", "Only list features of this site type")
	return cmd
}

func newEnrichCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "enrich <feature-id>",
		Short: "Enrich one feature and print its results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oid, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid feature id %q", args[0])
			}
			if err := opts.cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			comps, err := buildComponents(ctx, opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer comps.Close()
			f, err := comps.features.Find(ctx, oid)
			if err != nil {
				return err
			}
			p, err := comps.siteTypes.Profile(features.TypeOf(f))
			if err != nil {
				return err
			}
			res, err := comps.enricher.Enrich(ctx, enrich.Request{
				Location:          f.Location,
				AnalysisVariables: p.VariableIDs,
				StudyArea:         p.StudyArea,
			})
			if err != nil {
				return fmt.Errorf("enrich %d (%s): %w", oid, enrich.Kind(err), err)
			}
			return printJSON(cmd.OutOrStdout(), sites.BuildResults(p, res))
		},
	}
}
