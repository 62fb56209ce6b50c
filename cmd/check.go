package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"s3backup/internal/models"
	"s3backup/internal/s3client"
	"s3backup/pkg/utils"
)

var bucketCheckCmd = &cobra.Command{
	Use:   "bucket-check",
	Short: "Check that the destination bucket is reachable and accessible",
	Long: `Run the same pre-flight check a backup run starts with and print the
result as JSON. The status is one of ok, not_found, forbidden or unreachable.
The bucket name is taken from the configuration unless overridden with --bucket.`,
	Example: `  # Check the configured bucket
  s3backup bucket-check

  # Check a specific bucket
  s3backup bucket-check --bucket my-other-bucket`,
	Run: func(cmd *cobra.Command, args []string) {
		runBucketCheck(cmd)
	},
}

func runBucketCheck(cmd *cobra.Command) {
	client, err := s3client.New(cfg)
	if err != nil {
		utils.PrintError(err, "bucket-check")
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	bucket := getBucketName(cmd)
	if isVerbose(cmd) {
		cmd.Printf("Checking bucket: %s\n", bucket)
	}

	status, checkErr := client.CheckBucket(ctx, bucket)
	result := models.BucketCheckResult{
		BucketName:    bucket,
		Status:        status.String(),
		APIEndpoint:   cfg.ApiURL,
		OperationTime: utils.FormatTime(time.Now()),
	}
	if checkErr != nil {
		result.Detail = checkErr.Error()
	}

	if err := utils.PrintJSON(result); err != nil {
		utils.PrintError(err, "bucket-check")
		return
	}

	if isVerbose(cmd) {
		cmd.Println("Bucket check completed")
	}
}

func init() {
	bucketCheckCmd.Flags().Int("timeout", 60, "Timeout in seconds for the check")
}
