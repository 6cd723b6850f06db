package detectionService

import (
	"FaceDetection/internal/api/detection"
	"FaceDetection/internal/entity"
	"FaceDetection/pkg/archive"
	contextPkg "FaceDetection/pkg/context"
	"FaceDetection/pkg/imaging"
	"FaceDetection/pkg/log"
	"FaceDetection/pkg/stats"
	"fmt"
	"golang.org/x/net/context"
	"time"
)

func (s *detectionService) DetectBase64(ctx context.Context, source detection.Source, payload string) (*detection.DetectionOutcome, error) {
	outcome := s.newOutcome(ctx)
	outcome.Info.PayloadLength = len(payload)

	s.log.WithFields(log.Fields{
		"request_id":     contextPkg.GetRequestID(ctx),
		"source":         source,
		"payload_length": outcome.Info.PayloadLength,
	}).Info("Received image data")

	var err error
	defer func() {
		s.finish(ctx, source, outcome, err)
	}()

	data, err := imaging.DecodeBase64(payload)
	if err != nil {
		return outcome, err
	}

	err = s.detect(ctx, outcome, data)
	return outcome, err
}

func (s *detectionService) DetectBytes(ctx context.Context, source detection.Source, data []byte) (*detection.DetectionOutcome, error) {
	outcome := s.newOutcome(ctx)
	outcome.Info.PayloadLength = len(data)

	s.log.WithFields(log.Fields{
		"request_id":     contextPkg.GetRequestID(ctx),
		"source":         source,
		"payload_length": outcome.Info.PayloadLength,
	}).Info("Received raw image frame")

	var err error
	defer func() {
		s.finish(ctx, source, outcome, err)
	}()

	err = s.detect(ctx, outcome, data)
	return outcome, err
}

func (s *detectionService) newOutcome(ctx context.Context) *detection.DetectionOutcome {
	logID, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to generate detection log id")
		logID = contextPkg.GetRequestID(ctx)
	}
	return &detection.DetectionOutcome{LogID: logID}
}

// detect runs decode, archive and the detector on already base64-decoded bytes.
func (s *detectionService) detect(ctx context.Context, outcome *detection.DetectionOutcome, data []byte) (err error) {
	requestID := contextPkg.GetRequestID(ctx)

	defer func() {
		if r := recover(); r != nil {
			fields := log.Fields{
				"request_id": requestID,
				"panic":      fmt.Sprint(r),
			}
			fields["trace_id"] = log.TraceID(fields)
			s.log.WithFields(fields).Error("[detectionService.detect] recovered from panic")
			err = detection.ErrPanicRecovered
		}
	}()

	outcome.Info.DecodedLength = len(data)
	outcome.Info.Checksum = s.utils.Checksum(data)

	s.log.WithFields(log.Fields{
		"request_id":     requestID,
		"decoded_length": outcome.Info.DecodedLength,
		"checksum":       outcome.Info.Checksum,
	}).Debug("Decoded image data")

	img, info, err := imaging.Decode(data)
	if err != nil {
		return err
	}
	outcome.Info.Info = info

	s.log.WithFields(log.Fields{
		"request_id": requestID,
		"format":     info.Format,
		"size":       info.Size(),
		"mode":       info.Mode,
	}).Info("Image decoded")

	outcome.Archive = s.archiveImage(ctx, outcome, data)
	outcome.Result = s.detector.Detect(img)

	return nil
}

func (s *detectionService) archiveImage(ctx context.Context, outcome *detection.DetectionOutcome, data []byte) string {
	if s.archive == nil {
		return ""
	}

	c, cancel := context.WithTimeout(ctx, s.sideEffectTimeout)
	defer cancel()

	location, err := s.archive.Save(c, archive.Image{
		Name:     outcome.LogID,
		Format:   outcome.Info.Format,
		Data:     data,
		Checksum: outcome.Info.Checksum,
	})
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to archive received image")
		return ""
	}

	s.log.WithFields(log.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"location":   location,
	}).Info("Image archived")

	return location
}

// finish records the outcome. Failures here are logged and never surface to
// the caller.
func (s *detectionService) finish(ctx context.Context, source detection.Source, outcome *detection.DetectionOutcome, procErr error) {
	requestID := contextPkg.GetRequestID(ctx)

	if procErr != nil {
		s.log.WithFields(log.Fields{
			"request_id":     requestID,
			"source":         source,
			"payload_length": outcome.Info.PayloadLength,
			"error":          procErr.Error(),
		}).Warn("Error in face detection")
	} else {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"source":     source,
			"result":     outcome.Result,
		}).Info("Face detection completed")
	}

	c, cancel := context.WithTimeout(ctx, s.sideEffectTimeout)
	defer cancel()

	if err := s.stats.Record(c, procErr == nil); err != nil {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to record detection stats")
	}

	if s.repository == nil {
		return
	}

	detectionLog := entity.DetectionLog{
		ID:            outcome.LogID,
		RequestID:     requestID,
		Source:        string(source),
		PayloadLength: outcome.Info.PayloadLength,
		DecodedLength: outcome.Info.DecodedLength,
		Checksum:      outcome.Info.Checksum,
		Format:        outcome.Info.Format,
		Width:         outcome.Info.Width,
		Height:        outcome.Info.Height,
		Mode:          outcome.Info.Mode,
		Result:        outcome.Result,
		Archive:       outcome.Archive,
		CreatedAt:     time.Now().UTC(),
	}
	if procErr != nil {
		detectionLog.ErrorMessage = procErr.Error()
	}

	client, err := s.repository.NewClient(false)
	if err != nil {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to open detection history client")
		return
	}

	if err := client.DetectionLogs.CreateDetectionLog(c, detectionLog); err != nil {
		s.log.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to store detection log")
	}
}

func (s *detectionService) GetStats(ctx context.Context) (stats.Snapshot, error) {
	snap, err := s.stats.Snapshot(ctx)
	if err != nil {
		return stats.Snapshot{}, fmt.Errorf("%w: %v", detection.ErrInternalServerError, err)
	}
	return snap, nil
}

func (s *detectionService) GetRecentDetections(ctx context.Context, limit int) ([]detection.DetectionLogResponse, error) {
	if s.repository == nil {
		return nil, detection.ErrHistoryDisabled
	}

	client, err := s.repository.NewClient(false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrInternalServerError, err)
	}

	logs, err := client.DetectionLogs.GetRecentDetectionLogs(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detection.ErrInternalServerError, err)
	}

	res := make([]detection.DetectionLogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, detection.DetectionLogResponse{
			ID:            l.ID,
			RequestID:     l.RequestID,
			Source:        l.Source,
			PayloadLength: l.PayloadLength,
			DecodedLength: l.DecodedLength,
			Checksum:      l.Checksum,
			Format:        l.Format,
			Width:         l.Width,
			Height:        l.Height,
			Mode:          l.Mode,
			Result:        l.Result,
			Error:         l.ErrorMessage,
			Archive:       l.Archive,
			CreatedAt:     l.CreatedAt,
		})
	}

	return res, nil
}
