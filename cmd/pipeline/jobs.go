package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"go-linerecord-pipeline/internal/model"
	"go-linerecord-pipeline/internal/pipeline"
)

// jobFlags are shared by the one-shot commands.
type jobFlags struct {
	contains   string
	transforms []string
	where      []string
	out        string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.contains, "contains", "", "Only parse lines containing this text")
	cmd.Flags().StringSliceVar(&f.transforms, "transform", nil, "Field transformations (trimStrings, convertToUppercase, convertToLowercase)")
	cmd.Flags().StringArrayVar(&f.where, "where", nil, "Field filter FIELD:OP:VALUE, repeatable")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Also export results to a .csv or .json file")
}

// spec builds the job for location from the shared flags.
func (f *jobFlags) spec(location, operation string) (model.JobSpec, error) {
	spec := model.JobSpec{
		Source:          model.Source{Location: location},
		LineContains:    f.contains,
		Transformations: f.transforms,
		Operation:       operation,
	}
	for _, w := range f.where {
		filter, err := parseWhere(w)
		if err != nil {
			return spec, err
		}
		spec.Filters = append(spec.Filters, filter)
	}
	if f.out != "" {
		spec.Export = &model.Export{File: f.out}
	}
	return spec, nil
}

// parseWhere parses FIELD:OP:VALUE. VALUE may itself contain colons.
func parseWhere(s string) (model.FieldFilter, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return model.FieldFilter{}, fmt.Errorf("invalid filter %q, want FIELD:OP:VALUE", s)
	}
	field, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.FieldFilter{}, fmt.Errorf("invalid filter field %q: %w", parts[0], err)
	}
	return model.FieldFilter{Field: field, Op: parts[1], Value: parts[2]}, nil
}

// run executes spec with the configured defaults and no persistence.
func (c *cli) run(cmd *cobra.Command, spec model.JobSpec) (*pipeline.Result, error) {
	spec.ApplyDefaults(c.cfg.Processor)
	if spec.Timeout == "" {
		spec.Timeout = c.cfg.Jobs.Timeout
	}
	runner := &pipeline.Runner{Logger: c.logger}
	return runner.Run(cmd.Context(), uuid.New().String(), spec)
}

func newCountCmd(c *cli) *cobra.Command {
	var flags jobFlags
	cmd := &cobra.Command{
		Use:   "count FILE",
		Short: "Count the records with the expected arity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec(args[0], model.OpCount)
			if err != nil {
				return err
			}
			res, err := c.run(cmd, spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Count)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newFilterCmd(c *cli) *cobra.Command {
	var (
		flags jobFlags
		field int
		op    string
		value string
	)
	cmd := &cobra.Command{
		Use:   "filter FILE",
		Short: "Print the records whose field satisfies a condition",
		Long: `Print the records whose field satisfies a condition.

Operators: gt, gte, lt, lte, eq, ne (integer comparisons), is, isNot,
prefix, contains (string comparisons), longerThan (rune count).

Example:
  pipeline filter scores.csv --field 1 --op gt --value 15`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec(args[0], model.OpFilter)
			if err != nil {
				return err
			}
			if op != "" {
				spec.Filters = append([]model.FieldFilter{{Field: field, Op: op, Value: value}}, spec.Filters...)
			}
			res, err := c.run(cmd, spec)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, rec := range res.Records {
				fmt.Fprintln(out, strings.Join(rec.Fields, c.cfg.Processor.Delimiter))
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&field, "field", 0, "Field index the condition applies to")
	cmd.Flags().StringVar(&op, "op", "", "Condition operator")
	cmd.Flags().StringVar(&value, "value", "", "Condition operand")
	return cmd
}

func newMapCmd(c *cli) *cobra.Command {
	var (
		flags jobFlags
		key   int
		value int
	)
	cmd := &cobra.Command{
		Use:   "map FILE",
		Short: "Print key=value pairs of a key field and an integer value field",
		Long: `Print key=value pairs in first-seen key order. A repeated key keeps its
first position and takes the last value.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec(args[0], model.OpMapping)
			if err != nil {
				return err
			}
			spec.KeyIndex, spec.ValueIndex = key, value
			res, err := c.run(cmd, spec)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for k, v := range res.Mapping.All() {
				fmt.Fprintf(out, "%s=%d\n", k, v)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&key, "key", 0, "Key field index")
	cmd.Flags().IntVar(&value, "value", 1, "Integer value field index")
	return cmd
}

func newStatsCmd(c *cli) *cobra.Command {
	var (
		flags jobFlags
		field int
	)
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Summarize an integer field: count, sum, min, average, max",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := flags.spec(args[0], model.OpSummary)
			if err != nil {
				return err
			}
			spec.ValueIndex = field
			res, err := c.run(cmd, spec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary.String())
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&field, "field", 1, "Integer field index")
	return cmd
}
