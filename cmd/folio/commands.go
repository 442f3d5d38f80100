package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/services/loader"
	"github.com/bobmcallan/folio/internal/services/report"
)

var commands = []subcommands.Command{
	&importCmd{},
	&showCmd{},
	&versionCmd{},
}

type importCmd struct {
	holdings     string
	transactions string
	performance  string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "reconcile the three exports and store the portfolio" }
func (*importCmd) Usage() string {
	return `folio import -holdings <file> -transactions <file> -performance <file>

  Loads the holdings (.xlsx, .xls or .json), transaction ledger and
  performance exports, reconciles them and replaces the stored snapshot.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holdings, "holdings", "", "holdings export")
	f.StringVar(&c.transactions, "transactions", "", "transaction ledger export")
	f.StringVar(&c.performance, "performance", "", "performance export")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, err := app.ReadInputs(c.holdings, c.transactions, c.performance)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p, err := a.Import(ctx, in)
	if err != nil {
		var se *loader.StructuralError
		if errors.As(err, &se) {
			fmt.Fprintf(os.Stderr, "Rejected: %v\n", se)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d funds (%d after aggregation), %d SIPs (%d active), %d brokers\n",
		p.NumFunds, p.NumAggregatedFunds, p.NumSIPs, p.NumActiveSIPs, p.NumBrokers)
	fmt.Printf("Total value %.2f, invested %.2f, XIRR %.2f%%\n", p.TotalValue, p.TotalInvested, p.XIRR)
	if p.Crosscheck.Available && !p.Crosscheck.Matched {
		fmt.Println("Warning: itemized totals differ from the export summary")
	}
	return subcommands.ExitSuccess
}

type showCmd struct {
	json bool
	raw  bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the stored portfolio" }
func (*showCmd) Usage() string {
	return `folio show [-json] [-raw]

  Displays the last imported portfolio as a terminal report, raw markdown
  or the JSON snapshot.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.json, "json", false, "print the JSON snapshot")
	f.BoolVar(&c.raw, "raw", false, "print markdown without terminal styling")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := app.NewApp(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	p, err := a.Portfolio(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(p); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	md := report.FormatMarkdown(p, report.BuildSummary(p, report.DefaultTopN))
	if c.raw {
		fmt.Print(md)
		return subcommands.ExitSuccess
	}
	printMarkdown(os.Stdout, md)
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print version information" }
func (*versionCmd) Usage() string            { return "folio version\n" }
func (*versionCmd) SetFlags(_ *flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	common.LoadVersionFile("")
	fmt.Fprintln(os.Stdout, "folio", common.CurrentBuild())
	return subcommands.ExitSuccess
}

