package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type rosterStore interface {
	StudentsForCourse(ctx context.Context, courseCode string) ([]string, error)
}

// RosterService is the optional student-roster collaborator backing the
// student-clash check: a read-through Redis cache in front of the roster
// database. Cache failures fall through to the database; only database
// failures surface to the detector, which then degrades the category.
type RosterService struct {
	repo    rosterStore
	redis   *redis.Client
	metrics *MetricsService
	logger  *zap.Logger
	ttl     time.Duration
}

// NewRosterService wires the roster collaborator. The redis client may be
// nil, leaving a pass-through to the repository.
func NewRosterService(repo rosterStore, redisClient *redis.Client, metrics *MetricsService, logger *zap.Logger, ttl time.Duration) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RosterService{
		repo:    repo,
		redis:   redisClient,
		metrics: metrics,
		logger:  logger,
		ttl:     ttl,
	}
}

// StudentsForCourse returns the enrolled student ids for a course code.
func (s *RosterService) StudentsForCourse(ctx context.Context, courseCode string) ([]string, error) {
	key := "roster:" + courseCode

	if s.redis != nil {
		payload, err := s.redis.Get(ctx, key).Bytes()
		if err == nil {
			var students []string
			if jsonErr := json.Unmarshal(payload, &students); jsonErr == nil {
				s.metrics.RecordRosterLookup(true)
				return students, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("roster cache read failed", zap.String("course", courseCode), zap.Error(err))
		}
	}
	s.metrics.RecordRosterLookup(false)

	students, err := s.repo.StudentsForCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		if payload, err := json.Marshal(students); err == nil {
			if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("roster cache write failed", zap.String("course", courseCode), zap.Error(err))
			}
		}
	}

	return students, nil
}
