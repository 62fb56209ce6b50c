package models

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type BucketCheckResult struct {
	BucketName    string `json:"bucket_name"`
	Status        string `json:"status"`
	Detail        string `json:"detail,omitempty"`
	APIEndpoint   string `json:"api_endpoint,omitempty"`
	OperationTime string `json:"operation_time"`
}

type RunResult struct {
	Site                   string `json:"site"`
	BucketName             string `json:"bucket_name"`
	RunDate                string `json:"run_date"`
	TechnologiesTotal      int    `json:"technologies_total"`
	TechnologiesSuccessful int    `json:"technologies_successful"`
	TotalSizeBytes         int64  `json:"total_size_bytes"`
	TotalSizeHuman         string `json:"total_size_human"`
	MailSent               bool   `json:"mail_sent"`
	ReportLines            int    `json:"report_lines"`
	RunDuration            string `json:"run_duration"`
}
