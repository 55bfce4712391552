package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/application"
	"github.com/khanhnv2901/seca-pagescan/internal/application/audit"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/finding"
	"github.com/khanhnv2901/seca-pagescan/internal/shared/constants"
	apperrors "github.com/khanhnv2901/seca-pagescan/internal/shared/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanCmd = &cobra.Command{
	Use:   "scan [url...]",
	Short: "Load pages and audit their headers and content",
	Long: `Load one or more pages and report security findings.

The fetch mode performs a single GET and inspects the served HTML. The browser
mode drives headless Chrome and inspects the live document after scripts run.`,
	Example: `  pagescan scan example.com
  pagescan scan --mode browser --extended https://example.com/login
  pagescan scan -f urls.txt --concurrency 4 --format json --out report.json`,
	RunE: runScan,
}

func init() {
	flags := scanCmd.Flags()
	flags.StringVar(&cliConfig.Audit.Mode, "mode", cliConfig.Audit.Mode, "page driver: fetch or browser")
	flags.IntVar(&cliConfig.Audit.Concurrency, "concurrency", cliConfig.Audit.Concurrency, "pages scanned in parallel")
	flags.IntVar(&cliConfig.Audit.RateLimit, "rate-limit", cliConfig.Audit.RateLimit, "scans started per second (0 = unlimited)")
	flags.Int64Var(&cliConfig.Audit.MaxBodyBytes, "max-body-bytes", cliConfig.Audit.MaxBodyBytes, "maximum document size read in fetch mode")
	flags.BoolVar(&cliConfig.Browser.Headless, "headless", cliConfig.Browser.Headless, "run Chrome headless in browser mode")
	flags.BoolVar(&cliConfig.Browser.NoSandbox, "no-sandbox", cliConfig.Browser.NoSandbox, "disable the Chrome sandbox in browser mode (containers running as root)")
	flags.IntVar(&cliConfig.Browser.WaitMS, "wait-ms", cliConfig.Browser.WaitMS, "time to let the page settle after load in browser mode")
	flags.StringVar(&cliConfig.Browser.ExecPath, "chrome-path", cliConfig.Browser.ExecPath, "Chrome executable (default: auto-detect)")
	flags.StringP("file", "f", "", "read URLs from a file, one per line ('-' for stdin)")
	flags.String("out", "", "write the report to a file instead of stdout")
	flags.Bool("progress", false, "show a progress line while scanning")
	flags.String("fail-on", "", "exit with code 3 when a finding at or above this severity is reported")

	persistent := rootCmd.PersistentFlags()
	persistent.IntVar(&cliConfig.Defaults.TimeoutSecs, "timeout", cliConfig.Defaults.TimeoutSecs, "page load timeout in seconds")
	persistent.IntVar(&cliConfig.Audit.SignalTimeoutSecs, "signal-timeout", cliConfig.Audit.SignalTimeoutSecs, "content signal collection timeout in seconds")
	persistent.BoolVar(&cliConfig.Audit.ExtendedRules, "extended", cliConfig.Audit.ExtendedRules, "enable extended header and content rules")
	persistent.StringVar(&cliConfig.Output.Format, "format", cliConfig.Output.Format, "output format: text, json, yaml (scan also: html, markdown, pdf)")
}

func runScan(cmd *cobra.Command, args []string) error {
	appCtx := getAppContext(cmd)
	cfg := appCtx.Config

	file, _ := cmd.Flags().GetString("file")
	outPath, _ := cmd.Flags().GetString("out")
	showProgress, _ := cmd.Flags().GetBool("progress")
	failOn, _ := cmd.Flags().GetString("fail-on")

	if err := validateReportFormat(cfg.Output.Format); err != nil {
		return err
	}
	var threshold *finding.Severity
	if failOn != "" {
		sev, err := finding.ParseSeverity(failOn)
		if err != nil {
			return fmt.Errorf("--fail-on: %w: %v", apperrors.ErrInvalidInput, err)
		}
		threshold = &sev
	}

	urls, err := collectURLs(args, file, cmd.InOrStdin())
	if err != nil {
		return err
	}

	container, err := application.NewContainer(cfg.containerOptions(cfg.Audit.Mode), appCtx.Logger)
	if err != nil {
		return err
	}
	defer container.Close()
	if container.Scanner == nil {
		return fmt.Errorf("scan requires a page driver: %w", apperrors.ErrUnsupportedMode)
	}

	runner := &audit.Runner{
		Concurrency: cfg.Audit.Concurrency,
		RateLimit:   cfg.Audit.RateLimit,
		// load plus signal collection plus slack for rule evaluation
		Timeout: time.Duration(cfg.Defaults.TimeoutSecs+cfg.Audit.SignalTimeoutSecs+5) * time.Second,
	}

	var progress *progressPrinter
	if showProgress {
		progress = newProgressPrinter(cmd.ErrOrStderr(), len(urls), cfg.Audit.Mode)
		progress.Start()
	}
	results := runner.Run(cmd.Context(), urls, container.Scanner, func(_ int, res audit.Result) {
		if res.Error != "" {
			appCtx.Logger.Warn("scan failed", zap.String("url", res.URL), zap.String("error", res.Error))
		}
		if progress != nil {
			progress.Increment(res.Error == "", res.Duration.Seconds())
		}
	})
	if progress != nil {
		progress.Stop()
	}

	if err := emitResults(cmd.OutOrStdout(), outPath, cfg.Output.Format, results); err != nil {
		return err
	}
	return scanOutcome(results, threshold)
}

// collectURLs merges positional URLs with those read from file.
func collectURLs(args []string, file string, stdin io.Reader) ([]string, error) {
	urls := append([]string{}, args...)
	if file != "" {
		var r io.Reader
		if file == "-" {
			r = stdin
		} else {
			data, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("read url list: %w", err)
			}
			r = bytes.NewReader(data)
		}
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			urls = append(urls, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read url list: %w", err)
		}
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: at least one url", apperrors.ErrMissingRequired)
	}
	return urls, nil
}

func emitResults(stdout io.Writer, outPath, format string, results []audit.Result) error {
	if outPath == "" {
		return writeResults(stdout, format, results)
	}
	var buf bytes.Buffer
	if err := writeResults(&buf, format, results); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), constants.DefaultFilePerm); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(stdout, "%s Report written to %s\n", colorInfo("→"), outPath)
	return nil
}

// scanOutcome turns failed loads and threshold breaches into an error.
func scanOutcome(results []audit.Result, threshold *finding.Severity) error {
	failed := 0
	above := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
			continue
		}
		if threshold == nil {
			continue
		}
		for _, f := range res.Report.Findings {
			if f.Severity.Rank() >= threshold.Rank() {
				above++
			}
		}
	}
	if failed > 0 {
		return &ScanFailedError{Failed: failed, Total: len(results)}
	}
	if above > 0 {
		return &FindingsThresholdError{Threshold: threshold.String(), Count: above}
	}
	return nil
}
