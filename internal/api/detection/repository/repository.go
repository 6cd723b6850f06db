package detectionRepository

import (
	"FaceDetection/internal/entity"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	Migrate(ctx context.Context) error
	NewClient(tx bool) (Client, error)
}

func (r *repository) Migrate(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, queryCreateDetectionLogsTable); err != nil {
		r.log.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Failed to create detection_logs table")
		return err
	}
	return nil
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		DetectionLogs: &detectionLogsRepository{q: sqlExecutor, log: r.log},
		Commit:        commitFunc,
		Rollback:      rollbackFunc,
	}, nil
}

type DetectionLogs interface {
	CreateDetectionLog(ctx context.Context, detectionLog entity.DetectionLog) error
	GetRecentDetectionLogs(ctx context.Context, limit int) ([]entity.DetectionLog, error)
}

type Client struct {
	DetectionLogs DetectionLogs

	Commit   func() error
	Rollback func() error
}

type detectionLogsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
