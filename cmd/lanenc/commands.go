package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/lanenc/internal/backend/cpu"
	"github.com/born-ml/lanenc/internal/store"
	"github.com/born-ml/lanenc/internal/textenc"
	"github.com/born-ml/lanenc/internal/wordvec"
)

func newInspectCmd() *cobra.Command {
	var saveWeights string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Build the configured encoder and print its layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := openSession(cfg, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			s.Describe(cmd.OutOrStdout())
			if saveWeights != "" {
				if err := s.SaveWeights(saveWeights); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "weights written to %s\n", saveWeights)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&saveWeights, "save-weights", "", "write the initial weights to a safetensors file")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var (
		weights   string
		storePath string
		asJSON    bool
		show      int
	)
	cmd := &cobra.Command{
		Use:   "encode EXPRESSION...",
		Short: "Encode referring expressions into pooled vectors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if storePath != "" {
				cfg.Store.Path = storePath
			}

			s, err := openSession(cfg, args)
			if err != nil {
				return err
			}
			defer s.Close()
			if weights != "" {
				if err := s.LoadWeights(weights); err != nil {
					return err
				}
			}

			results, err := s.Encode(args)
			if err != nil {
				return err
			}

			if cfg.Store.Path != "" {
				ids, err := persist(cmd.Context(), cfg.Store.Path, s.Label(), results)
				if err != nil {
					return err
				}
				logf("stored %d encodings in %s: %s", len(ids), cfg.Store.Path, strings.Join(ids, ", "))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}
			for _, r := range results {
				fmt.Fprintf(out, "%q\n", r.Expression)
				fmt.Fprintf(out, "  tokens:  %v\n", r.Tokens)
				fmt.Fprintf(out, "  padding: %v\n", r.Padding)
				fmt.Fprintf(out, "  pooled:  dim %d, norm %.4f, head %v\n", len(r.Pooled), norm(r.Pooled), head(r.Pooled, show))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&weights, "weights", "", "load encoder weights from a safetensors file")
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite database for the pooled vectors (overrides store.path)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	cmd.Flags().IntVar(&show, "show", 6, "number of pooled values to print")
	return cmd
}

func persist(ctx context.Context, path, label string, results []encoded) ([]string, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	recs := make([]store.Record, len(results))
	for i, r := range results {
		recs[i] = store.Record{Expression: r.Expression, Tokens: r.Tokens, Pooled: r.Pooled, Encoder: label}
	}
	if err := st.Save(ctx, recs); err != nil {
		return nil, err
	}
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids, nil
}

func newHistoryCmd() *cobra.Command {
	var (
		storePath string
		limit     int
		remove    []string
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or delete stored encodings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if storePath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				storePath = cfg.Store.Path
			}
			if storePath == "" {
				return fmt.Errorf("no store configured: pass --store or set store.path")
			}

			ctx := cmd.Context()
			st, err := store.Open(storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(remove) > 0 {
				if err := st.Delete(ctx, remove); err != nil {
					return err
				}
				logf("deleted %d encodings", len(remove))
			}

			recs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCREATED\tENCODER\tDIM\tEXPRESSION")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%q\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Encoder, len(r.Pooled), r.Expression)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&storePath, "store", "", "SQLite database (defaults to store.path)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of rows, 0 for all")
	cmd.Flags().StringSliceVar(&remove, "delete", nil, "ids to delete before listing")
	return cmd
}

func newConvertGloVeCmd() *cobra.Command {
	var input, output, vocabOut, name string
	cmd := &cobra.Command{
		Use:   "convert-glove",
		Short: "Convert a GloVe text file into a safetensors table and vocabulary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			//nolint:gosec // G304: input path comes from the user.
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()

			logf("parsing %s", input)
			table, vocab, err := wordvec.ParseGloVe(f)
			if err != nil {
				return err
			}
			if err := table.Save(output, name); err != nil {
				return err
			}
			if err := vocab.Save(vocabOut); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d x %d table to %s and vocabulary to %s\n",
				table.Rows, table.Dim, output, vocabOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "GloVe text file")
	cmd.Flags().StringVar(&output, "output", "word_emb.safetensors", "safetensors output")
	cmd.Flags().StringVar(&vocabOut, "vocab", "vocab.txt", "vocabulary output")
	cmd.Flags().StringVar(&name, "tensor", wordvec.DefaultTensorName, "tensor name inside the output file")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newListEncodersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-encoders",
		Short: "List the registered encoder types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range textenc.DefaultRegistry[*cpu.CPUBackend]().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func norm(v []float32) float64 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	return math.Sqrt(s)
}

func head(v []float32, n int) []float32 {
	if n < 0 || n > len(v) {
		n = len(v)
	}
	return v[:n]
}
