package main

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/qubeshub/com-oaipmh/config"
	"github.com/qubeshub/com-oaipmh/models"
	"github.com/qubeshub/com-oaipmh/providers"
	"github.com/qubeshub/com-oaipmh/providers/publications"
	"github.com/qubeshub/com-oaipmh/providers/resources"
	"github.com/qubeshub/com-oaipmh/schema/dublincore"
	"github.com/qubeshub/com-oaipmh/storage"
)

// pageSize bounds each scan while assembling the full dump.
const pageSize = 500

type ExportConfig struct {
	PostgresHost     string `envconfig:"POSTGRES_HOST" required:"true"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" required:"true"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	PostgresDB       string `envconfig:"POSTGRES_DB" required:"true"`

	RepositoryID   string `envconfig:"REPOSITORY_ID" required:"true"`
	RepositoryName string `envconfig:"REPOSITORY_NAME" required:"true"`
	BaseURL        string `envconfig:"BASE_URL" required:"true"`

	ExportBucket    string `envconfig:"EXPORT_S3_BUCKET" required:"true"`
	ExportEndpoint  string `envconfig:"EXPORT_S3_ENDPOINT" required:"true"`
	ExportAccessKey string `envconfig:"EXPORT_S3_ACCESS_KEY" required:"true"`
	ExportSecretKey string `envconfig:"EXPORT_S3_SECRET_KEY" required:"true"`
	ExportRegion    string `envconfig:"EXPORT_S3_REGION" required:"true"`
	KeepExports     int    `envconfig:"KEEP_EXPORTS" default:"4"`
}

func main() {
	log.Println("Starting repository export...")

	var cfg ExportConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresPort)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	data, count, err := createDump(cfg, db)
	if err != nil {
		log.Fatalf("Failed to create repository dump: %v", err)
	}
	log.Printf("Dump contains %d records", count)

	client, err := storage.NewS3Client(cfg.ExportEndpoint, cfg.ExportRegion, cfg.ExportAccessKey, cfg.ExportSecretKey)
	if err != nil {
		log.Fatalf("Failed to create S3 client: %v", err)
	}

	fileName := fmt.Sprintf("export-%s.xml.gz", time.Now().UTC().Format("2006-01-02T15-04-05Z"))
	if _, err := storage.UploadExport(client, cfg.ExportEndpoint, cfg.ExportBucket, fileName, data); err != nil {
		log.Fatalf("Failed to upload export: %v", err)
	}
	log.Printf("Export uploaded to s3://%s/%s", cfg.ExportBucket, fileName)

	if err := storage.RotateExports(client, cfg.ExportBucket, "export-", cfg.KeepExports); err != nil {
		log.Fatalf("Failed to rotate old exports: %v", err)
	}

	log.Println("Repository export completed.")
}

// createDump renders every harvestable record of every provider into one
// gzipped oai_dc document.
func createDump(cfg ExportConfig, db *gorm.DB) ([]byte, int, error) {
	repoCfg := &config.Config{
		RepositoryID:   cfg.RepositoryID,
		RepositoryName: cfg.RepositoryName,
		BaseURL:        cfg.BaseURL,
	}
	logger := zap.NewNop()

	enabled := []providers.Provider{
		publications.New(repoCfg, logger),
		resources.New(repoCfg, logger),
	}

	var fragments []string
	for _, provider := range enabled {
		if q := provider.Records(models.RecordFilter{}); q != "" {
			fragments = append(fragments, q)
		}
	}
	if len(fragments) == 0 {
		return nil, 0, fmt.Errorf("no provider contributed a record query")
	}
	union := strings.Join(fragments, " UNION ")

	exec := storage.NewExecutor(db)
	total, err := exec.Count(union)
	if err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("repository")
	root.CreateAttr("name", cfg.RepositoryName)
	root.CreateAttr("baseURL", cfg.BaseURL)
	root.CreateAttr("exportedAt", time.Now().UTC().Format("2006-01-02T15:04:05Z"))

	dc := dublincore.New()
	exported := 0
	for offset := 0; offset < total; offset += pageSize {
		records, err := exec.Records(union, pageSize, offset)
		if err != nil {
			return nil, 0, fmt.Errorf("fetch records at offset %d: %w", offset, err)
		}
		if len(records) == 0 {
			break
		}
		for _, provider := range enabled {
			records = provider.PostRecords(records)
		}
		dc.Records(root, records, true)
		exported += len(records)
	}

	xmlText, err := doc.WriteToString()
	if err != nil {
		return nil, 0, fmt.Errorf("serialize dump: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(xmlText)); err != nil {
		return nil, 0, err
	}
	if err := gz.Close(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), exported, nil
}
