package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sharepool/app"
	"sharepool/config"
	"sharepool/ingest"
	"sharepool/log"
	"sharepool/store"
	"sharepool/store/sqlite"
)

var Verbose = false
var RenderFullValues = false
var AssetBaseOpts []string
var DBPath string
var Year int

func runRootCmd(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if Verbose {
		cfg.LogLevel = "debug"
	}
	logger := log.New(log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ingest.CsvDateFormat = cfg.CsvDateFormat
	if f, _ := cmd.Flags().GetString("date-fmt"); f != "" {
		ingest.CsvDateFormat = f
	}

	assetBases, err := app.ParseAssetBases(AssetBaseOpts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing --asset-base: %v\n", err)
		os.Exit(1)
	}

	if DBPath == "" {
		DBPath = cfg.DBPath
	}
	var events store.EventStore
	if DBPath != "" {
		db, err := sqlite.New(DBPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening event store %s: %v\n", DBPath, err)
			os.Exit(1)
		}
		defer db.Close()
		events = db
	} else {
		events = store.NewMemory()
	}

	csvReaders := make([]app.DescribedReader, 0, len(args))
	for _, csvName := range args {
		fp, err := os.Open(csvName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", csvName, err)
			os.Exit(1)
		}
		defer fp.Close()
		csvReaders = append(csvReaders, app.DescribedReader{Desc: csvName, Reader: fp})
	}

	err = app.RunApp(
		context.Background(),
		csvReaders,
		app.Options{
			AssetBases:       assetBases,
			RenderFullValues: RenderFullValues,
			Year:             Year,
		},
		events, logger, os.Stdout)
	if err != nil {
		os.Exit(1)
	}
}

func cmdName() string {
	binName := os.Args[0]
	return filepath.Base(binName)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   cmdName() + " [CSV_FILE ...]",
	Short: "UK capital gains share pooling calculator",
	Long: fmt.Sprintf(
		`A cli tool which applies the UK share pooling rules (same-day, 30-day
"bed and breakfast", and Section 104 holding) to asset transactions, and reports
the cost basis and gain or loss of each disposal.

Acquisitions made up to 30 days after a disposal retroactively change that
disposal's cost basis. The tool reverts and re-matches affected disposals
automatically, so transactions may be provided in any order within a file.

Each CSV provided should contain a header with these column names:
%s
The currency and swap columns are optional. Fees fold into cost basis on
acquisitions and reduce proceeds on disposals; swap fees split evenly
between the two legs.
 `, strings.Join(ingest.ColNames, ", ")),
	Run:     runRootCmd,
	Args:    cobra.MinimumNArgs(1),
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false,
		"Print verbose output")
	RootCmd.PersistentFlags().BoolVar(&RenderFullValues, "print-full-values", false,
		"Print all digits in money values, instead of rounding to 2 decimal places")
	RootCmd.PersistentFlags().String("date-fmt", "",
		"Format of how dates appear in the csv file. Must represent Jan 2, 2006")
	RootCmd.PersistentFlags().StringVar(&DBPath, "db", "",
		"Path to a sqlite event store. Events persist between runs; omit to keep them in memory")
	RootCmd.PersistentFlags().IntVar(&Year, "year", 0,
		"Only report gains realized in this calendar year")
	RootCmd.Flags().StringSliceVarP(&AssetBaseOpts, "asset-base", "b", []string{},
		"Base quantity and pooled cost for assets, assumed at the beginning of time. "+
			"Formatted as SYM:quantity:totalCost[:CUR]. Eg. BTC:2:15000.00 . May be provided multiple times.")
}
