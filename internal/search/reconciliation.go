package search

import (
	"context"
	"sync"
	"time"

	"github.com/creativehub/nexus/internal/database"
	"github.com/creativehub/nexus/internal/logger"
	"github.com/creativehub/nexus/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Indexer writes documents to the search index
type Indexer interface {
	IndexProject(ctx context.Context, doc ProjectDoc) error
	IndexProfile(ctx context.Context, doc ProfileDoc) error
}

const (
	projectSampleSize = 100
	profileSampleSize = 50
	backfillBatchSize = 200
)

// ReconciliationService periodically reindexes a random sample of projects and
// profiles so engagement counters in the index catch up with the database
type ReconciliationService struct {
	indexer   Indexer
	interval  time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(indexer Indexer, interval time.Duration) *ReconciliationService {
	return &ReconciliationService{
		indexer:  indexer,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic reconciliation loop
func (rs *ReconciliationService) Start() {
	rs.mu.Lock()
	if rs.isRunning {
		rs.mu.Unlock()
		return
	}
	rs.isRunning = true
	rs.mu.Unlock()

	logger.Log.Info("Starting search reconciliation", zap.Duration("interval", rs.interval))

	rs.wg.Add(1)
	go rs.loop()
}

// Stop stops the loop and waits for an in-flight pass to finish
func (rs *ReconciliationService) Stop() {
	rs.mu.Lock()
	if !rs.isRunning {
		rs.mu.Unlock()
		return
	}
	rs.isRunning = false
	rs.mu.Unlock()

	close(rs.stopChan)
	rs.wg.Wait()
	logger.Log.Info("Search reconciliation stopped")
}

func (rs *ReconciliationService) loop() {
	defer rs.wg.Done()

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-rs.stopChan:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			rs.Reconcile(ctx)
			cancel()
		}
	}
}

// Reconcile reindexes one sample and returns how many projects and profiles were written
func (rs *ReconciliationService) Reconcile(ctx context.Context) (int, int) {
	start := time.Now()

	var projects []models.Project
	if err := database.DB.WithContext(ctx).
		Preload("Owner").Preload("Category").
		Where("is_published = ?", true).
		Order("RANDOM()").
		Limit(projectSampleSize).
		Find(&projects).Error; err != nil {
		logger.WarnWithFields("Failed to sample projects for reconciliation", err)
	}
	projectCount := rs.indexProjects(ctx, projects)

	var profiles []models.Profile
	if err := database.DB.WithContext(ctx).
		Order("RANDOM()").
		Limit(profileSampleSize).
		Find(&profiles).Error; err != nil {
		logger.WarnWithFields("Failed to sample profiles for reconciliation", err)
	}
	profileCount := rs.indexProfiles(ctx, profiles)

	logger.Log.Info("Search reconciliation completed",
		zap.Int("projects", projectCount),
		zap.Int("profiles", profileCount),
		zap.Duration("duration", time.Since(start)),
	)
	return projectCount, profileCount
}

// Backfill indexes every published project and every profile in batches.
// Used after an index is recreated.
func (rs *ReconciliationService) Backfill(ctx context.Context) (int, int, error) {
	projectCount := 0
	var batch []models.Project
	err := database.DB.WithContext(ctx).
		Preload("Owner").Preload("Category").
		Where("is_published = ?", true).
		FindInBatches(&batch, backfillBatchSize, func(tx *gorm.DB, n int) error {
			projectCount += rs.indexProjects(ctx, batch)
			return ctx.Err()
		}).Error
	if err != nil {
		return projectCount, 0, err
	}

	profileCount := 0
	var profiles []models.Profile
	err = database.DB.WithContext(ctx).
		FindInBatches(&profiles, backfillBatchSize, func(tx *gorm.DB, n int) error {
			profileCount += rs.indexProfiles(ctx, profiles)
			return ctx.Err()
		}).Error
	if err != nil {
		return projectCount, profileCount, err
	}

	logger.Log.Info("Search backfill completed",
		zap.Int("projects", projectCount),
		zap.Int("profiles", profileCount),
	)
	return projectCount, profileCount, nil
}

func (rs *ReconciliationService) indexProjects(ctx context.Context, projects []models.Project) int {
	indexed := 0
	for i := range projects {
		if err := rs.indexer.IndexProject(ctx, ProjectToDoc(&projects[i])); err != nil {
			logger.Log.Warn("Failed to reindex project",
				logger.WithProjectID(projects[i].ID), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed
}

func (rs *ReconciliationService) indexProfiles(ctx context.Context, profiles []models.Profile) int {
	indexed := 0
	for i := range profiles {
		if err := rs.indexer.IndexProfile(ctx, ProfileToDoc(&profiles[i])); err != nil {
			logger.Log.Warn("Failed to reindex profile",
				logger.WithUserID(profiles[i].ID), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed
}
