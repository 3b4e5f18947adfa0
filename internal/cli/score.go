package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/articlescore/internal/ingest"
	"github.com/ppiankov/articlescore/internal/model"
	"github.com/ppiankov/articlescore/internal/pipeline"
)

var scoreID string

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score [file]",
	Short: "Score a single article and explain every metric",
	Long: `Score analyzes one article (a file, or stdin when no file is given) and
prints each metric with the formula and inputs that produced it.

Example:
  articlescore score articles/37.txt
  cat article.txt | articlescore score --id draft`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
	scoreCmd.Flags().StringVar(&scoreID, "id", "stdin", "document id when reading stdin")
}

// scoreReport is the YAML shape printed by score
type scoreReport struct {
	ID      string         `yaml:"id"`
	Source  string         `yaml:"source,omitempty"`
	Metrics yamlFields     `yaml:"metrics"`
	Signals []model.Signal `yaml:"signals"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	var doc model.Document
	if len(args) == 1 {
		doc, err = ingest.ReadFile(args[0])
		if err != nil {
			return err
		}
	} else {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		doc = model.Document{ID: scoreID, Text: string(data)}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lex, err := loadLexicons(ctx, cfg, nil)
	if err != nil {
		return err
	}

	p, err := pipeline.NewPipeline(lex)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	analysis, err := p.Explain(doc)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ Scored %s: %d words in %d sentences\n",
		doc.ID, analysis.Record.WordCount, analysis.Record.SentenceCount)

	return writeScoreReport(cmd.OutOrStdout(), doc, analysis, cfg.Output.Precision)
}

func writeScoreReport(w io.Writer, doc model.Document, analysis *pipeline.Analysis, precision int) error {
	report := scoreReport{
		ID:      doc.ID,
		Source:  doc.Source,
		Metrics: yamlFields(analysis.Record.Fields(precision)),
		Signals: analysis.Signals(),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return enc.Close()
}

// yamlFields encodes as a mapping whose keys keep field order
type yamlFields []model.Field

func (f yamlFields) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, field := range f {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: field.Name}
		val := &yaml.Node{}
		if err := val.Encode(field.Value); err != nil {
			return nil, fmt.Errorf("field %s: %w", field.Name, err)
		}
		node.Content = append(node.Content, key, val)
	}
	return node, nil
}
