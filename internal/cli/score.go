// Package cli: score.go implements the "gaussclass score" command.
//
// The score command builds the class registry from an observation file and
// evaluates one or more query points against it. A single point is given
// with --x/--y; a batch is read from a YAML or JSON query file with
// --queries.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/gaussclass/internal/model"
	"github.com/shinji-kodama/gaussclass/internal/query"
	"github.com/shinji-kodama/gaussclass/internal/registry"
)

// scoreFlags holds the flag values for the score command.
type scoreFlags struct {
	x       float64 // --x: query point x coordinate
	y       float64 // --y: query point y coordinate
	prior   float64 // --prior: prior probability of each class
	classes []int32 // --class: class ids to score (default: all)
	queries string  // --queries: batch query file
}

// NewScoreCommand creates the "score" cobra command.
func NewScoreCommand() *cobra.Command {
	flags := &scoreFlags{}

	cmd := &cobra.Command{
		Use:   "score <observations>",
		Short: "Score points against every fitted class",
		Long: `Fit the classes found in <observations> ("-" for stdin) and print,
for each requested class, the log probability

  ln(prior) + ln(CDFx(x)) + ln(CDFy(y))

where CDFx and CDFy are the cumulative distribution functions of the class's
fitted x and y normals.

Examples:
  gaussclass score data.txt --x 6.98645 --y -2.936 --class 0 --class 1
  gaussclass score data.txt --x 1 --y 2 --prior 0.25
  gaussclass score data.txt --queries queries.yaml --json
  cat data.txt | gaussclass score - --x 0 --y 0`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := resolveQueries(cmd, flags)
			if err != nil {
				return err
			}
			return runScore(cmd, args[0], queries)
		},
	}

	cmd.Flags().Float64Var(&flags.x, "x", 0, "X coordinate of the point to score")
	cmd.Flags().Float64Var(&flags.y, "y", 0, "Y coordinate of the point to score")
	cmd.Flags().Float64Var(&flags.prior, "prior", query.DefaultPrior, "Prior probability of each class, in (0, 1]")
	cmd.Flags().Int32SliceVar(&flags.classes, "class", nil, "Class id to score (repeatable, default: all classes)")
	cmd.Flags().StringVar(&flags.queries, "queries", "", "YAML or JSON file with a batch of queries")

	return cmd
}

// resolveQueries turns the flags into the list of queries to run. --queries
// is mutually exclusive with the single-point flags.
func resolveQueries(cmd *cobra.Command, flags *scoreFlags) ([]query.Resolved, error) {
	fs := cmd.Flags()

	if flags.queries != "" {
		for _, name := range []string{"x", "y", "prior", "class"} {
			if fs.Changed(name) {
				return nil, model.NewCLIError(model.ExitGeneralError,
					fmt.Sprintf("--%s cannot be combined with --queries", name))
			}
		}
		queries, err := query.Load(flags.queries)
		if err != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "invalid query file", err)
		}
		VerboseLog("Loaded %d queries from %s", len(queries), flags.queries)
		return queries, nil
	}

	if !fs.Changed("x") || !fs.Changed("y") {
		return nil, model.NewCLIError(model.ExitGeneralError, "both --x and --y are required (or use --queries)")
	}
	if err := query.ValidatePrior(flags.prior); err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "invalid --prior", err)
	}

	point := model.Point{X: flags.x, Y: flags.y}
	if !point.IsFinite() {
		return nil, model.NewCLIError(model.ExitGeneralError, fmt.Sprintf("point %s is not finite", point))
	}

	var classes []model.ClassID
	for _, id := range flags.classes {
		classes = append(classes, model.ClassID(id))
	}

	return []query.Resolved{{
		Name:    "query",
		Point:   point,
		Prior:   flags.prior,
		Classes: classes,
	}}, nil
}

// classScore is the outcome of scoring one class.
type classScore struct {
	Class model.ClassID
	Score float64
	// Fitted is false when the class has no fitted parameters.
	Fitted bool
}

// queryResult groups the class scores of one query.
type queryResult struct {
	Query  query.Resolved
	Scores []classScore
}

// runScore builds the registry and evaluates every query.
func runScore(cmd *cobra.Command, path string, queries []query.Resolved) error {
	reg, err := loadRegistry(cmd, path)
	if err != nil {
		return err
	}

	results, err := scoreQueries(reg, queries)
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		return printScoreJSON(cmd.OutOrStdout(), results)
	}
	printScoreText(cmd.OutOrStdout(), results)
	return nil
}

// scoreQueries evaluates each query against its classes, defaulting to
// every class in ascending id order. An unknown class id fails the command.
func scoreQueries(reg *registry.Registry, queries []query.Resolved) ([]queryResult, error) {
	results := make([]queryResult, 0, len(queries))
	for _, q := range queries {
		ids := q.Classes
		if len(ids) == 0 {
			ids = reg.IDs()
		}
		VerboseLog("Testing data: %s with prior %v", q.Point, q.Prior)

		res := queryResult{Query: q, Scores: make([]classScore, 0, len(ids))}
		for _, id := range ids {
			score, ok, err := reg.Score(id, q.Prior, q.Point)
			if err != nil {
				return nil, model.WrapCLIError(model.ExitClassNotFound,
					fmt.Sprintf("%s: unknown class", q.Name), err)
			}
			res.Scores = append(res.Scores, classScore{Class: id, Score: score, Fitted: ok})
		}
		results = append(results, res)
	}
	return results, nil
}

// FormatScore renders a score as "e^<score>", or "n/a" when the class has
// no fitted parameters.
func FormatScore(score float64, fitted bool) string {
	if !fitted {
		return "n/a"
	}
	return "e^" + strconv.FormatFloat(score, 'g', -1, 64)
}

// printScoreText prints one block per query:
//
//	Testing data: (6.98645, -2.936), prior 0.5
//	Class 0 log probability: e^-9.73
//	Class 1 log probability: e^-1.03
func printScoreText(w io.Writer, results []queryResult) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if len(results) > 1 {
			fmt.Fprintf(w, "[%s] ", res.Query.Name)
		}
		fmt.Fprintf(w, "Testing data: %s, prior %v\n", res.Query.Point, res.Query.Prior)
		for _, s := range res.Scores {
			fmt.Fprintf(w, "Class %s log probability: %s\n", s.Class, FormatScore(s.Score, s.Fitted))
		}
	}
}

// scoreJSON is the JSON output structure for one class score.
// encoding/json cannot represent infinities, so a non-finite score is
// reported as a null logProbability with its text form in "raw".
type scoreJSON struct {
	Class          model.ClassID `json:"class"`
	Status         string        `json:"status"`
	LogProbability *float64      `json:"logProbability"`
	Raw            string        `json:"raw,omitempty"`
}

// queryJSON is the JSON output structure for one query.
type queryJSON struct {
	Name   string      `json:"name"`
	Point  model.Point `json:"point"`
	Prior  float64     `json:"prior"`
	Scores []scoreJSON `json:"scores"`
}

// Score statuses in JSON output.
const (
	statusOK        = "ok"
	statusNotFit    = "not-fit"
	statusNonFinite = "non-finite"
)

func newScoreJSON(s classScore) scoreJSON {
	out := scoreJSON{Class: s.Class}
	switch {
	case !s.Fitted:
		out.Status = statusNotFit
	case math.IsInf(s.Score, 0) || math.IsNaN(s.Score):
		out.Status = statusNonFinite
		out.Raw = strconv.FormatFloat(s.Score, 'g', -1, 64)
	default:
		out.Status = statusOK
		v := s.Score
		out.LogProbability = &v
	}
	return out
}

// printScoreJSON outputs all results under a top-level "queries" key.
func printScoreJSON(w io.Writer, results []queryResult) error {
	type resultJSON struct {
		Queries []queryJSON `json:"queries"`
	}

	out := resultJSON{Queries: make([]queryJSON, 0, len(results))}
	for _, res := range results {
		q := queryJSON{
			Name:   res.Query.Name,
			Point:  res.Query.Point,
			Prior:  res.Query.Prior,
			Scores: make([]scoreJSON, 0, len(res.Scores)),
		}
		for _, s := range res.Scores {
			q.Scores = append(q.Scores, newScoreJSON(s))
		}
		out.Queries = append(out.Queries, q)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to encode results", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
