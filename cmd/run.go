package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"s3backup/config"
	"s3backup/internal/backup"
	"s3backup/internal/mailer"
	"s3backup/internal/models"
	"s3backup/internal/report"
	"s3backup/internal/s3client"
	"s3backup/internal/transfer"
	"s3backup/pkg/utils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup cycle and email the report",
	Long: `Run one complete backup cycle over the configured technology table.

For every technology the command selects files modified within the retention
window, uploads them under {site}/{technology}/{hostname}/{year}/{month} in
the bucket, deletes the originals when the technology asks for it, and
records every outcome. The captured log is emailed afterwards; when delivery
fails the full log is printed to the console instead.

The command is meant to be driven by cron; one invocation is one run.`,
	Example: `  # One backup run, report by email
  s3backup run

  # Print the report instead of mailing it
  s3backup run --no-mail

  # Use a different technology table and bucket
  s3backup run --technologies /etc/s3backup/technologies.yaml --bucket other-bucket

  # Verbose run with a JSON result on stdout
  s3backup run --verbose`,
	Run: func(cmd *cobra.Command, args []string) {
		runBackup(cmd)
	},
}

func runBackup(cmd *cobra.Command) {
	startTime := time.Now()
	noMail, _ := cmd.Flags().GetBool("no-mail")
	techFile, _ := cmd.Flags().GetString("technologies")
	if techFile == "" {
		techFile = cfg.TechnologiesFile
	}

	run := models.RunContext{
		RunDate:           startTime,
		Site:              cfg.Site,
		Hostname:          cfg.Hostname,
		Bucket:            getBucketName(cmd),
		DefaultWindowDays: cfg.DefaultWindowDays,
		InterUploadDelay:  cfg.InterUploadDelay,
	}

	sink := report.New(cfg.Site + " backup")
	defer sink.Close()

	entries, err := config.LoadTechnologies(techFile)
	if err != nil {
		sink.Error("%v", err)
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if isVerbose(cmd) {
		cmd.Printf("Starting backup run for site %s into bucket %s\n", run.Site, run.Bucket)
		cmd.Printf("  Technologies file: %s\n", techFile)
	}

	var totals models.RunTotals
	client, err := s3client.New(cfg)
	if err != nil {
		sink.Error("Failed to create S3 client: %v", err)
	} else {
		engine := transfer.New(client)
		totals = backup.New(client, engine, sink, run, entries).Run(ctx)
	}

	subject := fmt.Sprintf("AWS backup for %s dated: %s", run.Site, run.RunDate.Format("2006-01-02"))
	mailSent := false
	if noMail {
		fmt.Print(sink.Text())
	} else {
		sink.Info("Sending email to %s", cfg.MailTo)
		mailSent = mailer.Dispatch(mailer.NewSMTPSender(cfg), sink, subject)
		if mailSent {
			fmt.Printf("Executed the backup run and sent an email to %s\n", cfg.MailTo)
		} else {
			sink.Error("Unable to send email. Printed all the logs on the console")
			fmt.Print(sink.Text())
		}
	}
	sink.Close()

	if isVerbose(cmd) {
		result := models.RunResult{
			Site:                   run.Site,
			BucketName:             run.Bucket,
			RunDate:                run.RunDate.Format("2006-01-02"),
			TechnologiesTotal:      totals.TechnologiesTotal,
			TechnologiesSuccessful: totals.TechnologiesFullySuccessful,
			TotalSizeBytes:         totals.BytesUploaded,
			TotalSizeHuman:         utils.FormatBytes(totals.BytesUploaded),
			MailSent:               mailSent,
			ReportLines:            sink.Len(),
			RunDuration:            time.Since(startTime).String(),
		}
		if err := utils.PrintJSON(result); err != nil {
			utils.PrintError(err, "run")
		}
	}
}

func init() {
	runCmd.Flags().Bool("no-mail", false, "Print the report to the console instead of emailing it")
	runCmd.Flags().String("technologies", "", "Path to the technologies YAML file (overrides TECHNOLOGIES_FILE)")
	runCmd.Flags().Int("timeout", 3600, "Timeout in seconds for the backup phase (default: 1 hour)")
}
