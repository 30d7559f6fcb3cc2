package service

import (
	"github.com/junhyuk-oh/SAFFY-sub002/internal/config"
	"github.com/junhyuk-oh/SAFFY-sub002/internal/safety/repository"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Services service collection
type Services struct {
	Document   *DocumentService
	Compliance *ComplianceService
	Education  *EducationService
	RuleEngine *RuleEngine
}

// NewServices wires the service collection
func NewServices(repos *repository.Repositories, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("object storage unavailable, proof uploads disabled", zap.Error(err))
			minioClient = nil
		}
	}

	return &Services{
		Document:   NewDocumentService(repos.Document, repos.History, repos.User, rdb),
		Compliance: NewComplianceService(repos.Document, rdb),
		Education: NewEducationService(
			repos.Category, repos.TargetRule, repos.Requirement,
			repos.Record, repos.DailyLog, repos.User,
			minioClient, cfg.MinIO.Bucket, logger),
		RuleEngine: NewRuleEngine(repos.Category, repos.TargetRule, repos.Requirement, repos.User, logger),
	}
}
