/*
Package cli provides helpers shared by the pricelock commands.

Output Formatting:

Commands print results as text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

CSV output requires the value to implement Table.

Exit Codes:

A verdict becomes the process exit code through ExitError, so scripts can
branch on the rejection kind:

	return cli.Exit(verdict.ExitCode(), nil)

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "cases")
	progress.Start(int64(len(suite.Cases)))
	report, err := suite.Run(ctx, ctrl, txcontext.WithProgress(func(done, _ int) {
		progress.Update(int64(done))
	}))
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
