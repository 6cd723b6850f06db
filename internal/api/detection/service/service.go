package detectionService

import (
	"FaceDetection/internal/api/detection"
	detectionRepository "FaceDetection/internal/api/detection/repository"
	"FaceDetection/pkg/archive"
	"FaceDetection/pkg/detector"
	"FaceDetection/pkg/stats"
	"FaceDetection/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"time"
)

type IDetectionService interface {
	DetectBase64(ctx context.Context, source detection.Source, payload string) (*detection.DetectionOutcome, error)
	DetectBytes(ctx context.Context, source detection.Source, data []byte) (*detection.DetectionOutcome, error)
	GetStats(ctx context.Context) (stats.Snapshot, error)
	GetRecentDetections(ctx context.Context, limit int) ([]detection.DetectionLogResponse, error)
}

type detectionService struct {
	log               *logrus.Logger
	detector          detector.IDetector
	utils             utils.IUtils
	stats             stats.IStats
	archive           archive.IArchive
	repository        detectionRepository.Repository
	sideEffectTimeout time.Duration
}

// NewDetectionService wires the detection pipeline. archive and repository
// are optional and may be nil.
func NewDetectionService(
	log *logrus.Logger,
	detector detector.IDetector,
	utils utils.IUtils,
	stats stats.IStats,
	archive archive.IArchive,
	repository detectionRepository.Repository,
) IDetectionService {
	return &detectionService{
		log:               log,
		detector:          detector,
		utils:             utils,
		stats:             stats,
		archive:           archive,
		repository:        repository,
		sideEffectTimeout: 3 * time.Second,
	}
}
