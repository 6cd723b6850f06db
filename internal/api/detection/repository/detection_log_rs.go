package detectionRepository

import (
	"FaceDetection/internal/entity"
	contextPkg "FaceDetection/pkg/context"
	"context"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *detectionLogsRepository) CreateDetectionLog(ctx context.Context, detectionLog entity.DetectionLog) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateDetectionLog, detectionLog)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateDetectionLog")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating detection log")
		return err
	}

	return nil
}

func (r *detectionLogsRepository) GetRecentDetectionLogs(ctx context.Context, limit int) ([]entity.DetectionLog, error) {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"limit": limit,
	}

	query, args, err := sqlx.Named(queryGetRecentDetectionLogs, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetRecentDetectionLogs named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	logs := make([]entity.DetectionLog, 0, limit)
	if err := r.q.SelectContext(ctx, &logs, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when listing detection logs")
		return nil, err
	}

	return logs, nil
}
