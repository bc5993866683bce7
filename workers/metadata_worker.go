package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/camden-git/photogallery/models"
	"github.com/camden-git/photogallery/repository"
)

// MetadataExtractor reads the stored binary of an asset and returns its metadata.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, relativePath string) (*models.AssetMetadata, error)
}

type MetadataJob struct {
	AssetID string
	Path    string
}

// MetadataProcessor runs asset metadata extraction on a bounded queue served
// by a fixed number of workers. A job for an asset already queued or in
// progress is dropped.
type MetadataProcessor struct {
	JobQueue  chan MetadataJob
	Assets    repository.AssetRepositoryInterface
	Extractor MetadataExtractor
	Logger    *slog.Logger
	Wg        sync.WaitGroup
	StopChan  chan struct{}
	Pending   map[string]bool
	Mutex     sync.Mutex

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
}

func NewMetadataProcessor(assets repository.AssetRepositoryInterface, extractor MetadataExtractor, logger *slog.Logger, queueSize, numWorkers int) *MetadataProcessor {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	proc := &MetadataProcessor{
		JobQueue:  make(chan MetadataJob, queueSize),
		Assets:    assets,
		Extractor: extractor,
		Logger:    logger,
		StopChan:  make(chan struct{}),
		Pending:   make(map[string]bool),
		ctx:       ctx,
		cancel:    cancel,
	}
	proc.Wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go proc.worker(i)
	}
	logger.Info("started metadata workers", "workers", numWorkers, "queue_size", queueSize)
	return proc
}

func (mp *MetadataProcessor) worker(id int) {
	defer mp.Wg.Done()

	for {
		select {
		case job, ok := <-mp.JobQueue:
			if !ok {
				mp.Logger.Debug("metadata worker stopping: job queue closed", "worker", id)
				return
			}
			mp.process(id, job)

			mp.Mutex.Lock()
			delete(mp.Pending, job.AssetID)
			mp.Mutex.Unlock()

		case <-mp.StopChan:
			mp.Logger.Debug("metadata worker stopping: stop signal received", "worker", id)
			return
		}
	}
}

func (mp *MetadataProcessor) process(workerID int, job MetadataJob) {
	log := mp.Logger.With("worker", workerID, "asset_id", job.AssetID)

	if err := mp.Assets.MarkMetadataProcessing(mp.ctx, job.AssetID); err != nil {
		log.Error("failed to mark metadata processing, skipping job", "error", err)
		return
	}

	meta, taskErr := mp.Extractor.ExtractMetadata(mp.ctx, job.Path)
	if taskErr != nil {
		taskErr = fmt.Errorf("metadata extraction failed: %w", taskErr)
		log.Warn("metadata extraction failed", "path", job.Path, "error", taskErr)
	} else {
		log.Debug("extracted metadata", "path", job.Path)
	}

	if err := mp.Assets.SetMetadataResult(mp.ctx, job.AssetID, meta, time.Now().UTC(), taskErr); err != nil {
		log.Error("failed to store metadata result", "error", err)
	}
}

// QueueJob queues a metadata task if one is not already pending for the asset
func (mp *MetadataProcessor) QueueJob(job MetadataJob) bool {
	mp.Mutex.Lock()
	if mp.Pending[job.AssetID] {
		mp.Mutex.Unlock()
		return false
	}
	mp.Pending[job.AssetID] = true
	mp.Mutex.Unlock()

	select {
	case mp.JobQueue <- job:
		mp.Logger.Debug("queued metadata task", "asset_id", job.AssetID)
		return true
	default:
		mp.Logger.Warn("metadata job queue full, dropping task", "asset_id", job.AssetID)
		mp.Mutex.Lock()
		delete(mp.Pending, job.AssetID)
		mp.Mutex.Unlock()
		return false
	}
}

// RequeuePending queues every asset whose metadata was never finished, e.g.
// after a restart. It returns the number of queued jobs.
func (mp *MetadataProcessor) RequeuePending(ctx context.Context) (int, error) {
	assets, err := mp.Assets.ListPendingMetadata(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, a := range assets {
		if mp.QueueJob(MetadataJob{AssetID: a.ID, Path: a.Path}) {
			queued++
		}
	}
	return queued, nil
}

func (mp *MetadataProcessor) Stop() {
	mp.stopOnce.Do(func() {
		mp.Logger.Info("stopping metadata workers")
		close(mp.StopChan)
		mp.Wg.Wait()
		mp.cancel()
		mp.Logger.Info("all metadata workers stopped")
	})
}
