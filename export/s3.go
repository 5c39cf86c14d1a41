package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"seo_auditor/config"
	"seo_auditor/models"
)

// Report is the exported snapshot of one finished crawl.
type Report struct {
	ReportID    string                  `json:"report_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Project     models.Project          `json:"project"`
	Crawl       models.Crawl            `json:"crawl"`
	TotalURLs   int                     `json:"total_urls"`
	TotalIssues int                     `json:"total_issues"`
	BySeverity  map[string]int          `json:"issues_by_severity"`
	ByCategory  map[string]int          `json:"issues_by_category"`
	ByType      []models.IssueTypeCount `json:"issues_by_type"`
}

// Exporter uploads crawl reports to S3-compatible storage (AWS, DO Spaces,
// R2 via the custom endpoint).
type Exporter struct {
	client *s3.Client
	bucket string
}

func NewExporter(ctx context.Context, cfg config.ExportConfig) (*Exporter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return &Exporter{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// Upload serializes the report and puts it under
// reports/{domain}/{crawl-id}/{report-id}.json. Returns the object key.
func (e *Exporter) Upload(ctx context.Context, report *Report) (string, error) {
	report.ReportID = uuid.New().String()
	report.GeneratedAt = time.Now().UTC()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}

	key := fmt.Sprintf("reports/%s/%d/%s.json", report.Project.Domain, report.Crawl.ID, report.ReportID)

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	log.Printf("export: uploaded report %s for crawl %d", key, report.Crawl.ID)
	return key, nil
}
