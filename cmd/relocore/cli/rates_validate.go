package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/relocore/relocore/internal/rates"
)

// BandLoader loads the bands the validation sweeps.
type BandLoader interface {
	ActivePairs(ctx context.Context) ([]rates.Pair, error)
	ActiveBands(ctx context.Context, destinationCity string, moveTypeID int64) ([]rates.RateBand, error)
}

// RatesValidateOptions defines available flags for the rates validate command.
type RatesValidateOptions struct {
	DestinationCity string
	JSONOutput      bool
	Stdout          io.Writer
	Stderr          io.Writer
}

// RatesValidateSummary describes the JSON response for rates validate.
type RatesValidateSummary struct {
	OK     bool                  `json:"ok"`
	Scopes int                   `json:"scopes"`
	Issues []rates.CoverageIssue `json:"issues"`
}

// RunRatesValidate audits every active rate table and prints overlaps and
// gaps. It returns an error when issues are found so scripted callers can
// gate on the exit code.
func RunRatesValidate(ctx context.Context, loader BandLoader, opts RatesValidateOptions) error {
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	pairs, err := loader.ActivePairs(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "load active rate scopes: %v\n", err)
		return err
	}

	var all []rates.RateBand
	scopes := 0
	for _, pair := range pairs {
		if opts.DestinationCity != "" && pair.DestinationCity != opts.DestinationCity {
			continue
		}
		bands, err := loader.ActiveBands(ctx, pair.DestinationCity, pair.MoveTypeID)
		if err != nil {
			fmt.Fprintf(stderr, "load bands for %s/%d: %v\n", pair.DestinationCity, pair.MoveTypeID, err)
			return err
		}
		all = append(all, bands...)
		scopes++
	}

	issues := rates.AuditCoverage(all)
	summary := RatesValidateSummary{OK: len(issues) == 0, Scopes: scopes, Issues: issues}

	if opts.JSONOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stdout, "audited %d rate scope(s)\n", scopes)
		for _, issue := range issues {
			fmt.Fprintln(stdout, issue.String())
		}
		if summary.OK {
			fmt.Fprintln(stdout, "no coverage issues")
		}
	}

	if !summary.OK {
		return fmt.Errorf("rates validate: %d coverage issue(s)", len(issues))
	}
	return nil
}
