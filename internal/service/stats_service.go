package service

import (
	"context"
	"time"

	"github.com/ignatzorin/tutoring-backend/internal/models"
	"github.com/ignatzorin/tutoring-backend/internal/pkg/apperror"
)

const statsCacheTTL = 30 * time.Second

// PostStatsRepo — статистика по объявлениям.
type PostStatsRepo interface {
	GetStats(ctx context.Context) (*models.PostStats, error)
}

// BidStatsRepo — статистика по откликам.
type BidStatsRepo interface {
	GetStats(ctx context.Context) (*models.BidStats, error)
}

// RoomStatsRepo — статистика по комнатам.
type RoomStatsRepo interface {
	GetStats(ctx context.Context) (*models.RoomStats, error)
}

// ReportStatsRepo — статистика по жалобам.
type ReportStatsRepo interface {
	GetStats(ctx context.Context) (*models.ReportStats, error)
}

// UserStatsRepo — статистика по пользователям.
type UserStatsRepo interface {
	GetStats(ctx context.Context) (*models.UserStats, error)
}

// StatsService собирает сводную статистику для админской панели.
// Счётчики считаются в базе, результат кэшируется с коротким TTL.
type StatsService struct {
	posts   PostStatsRepo
	bids    BidStatsRepo
	rooms   RoomStatsRepo
	reports ReportStatsRepo
	users   UserStatsRepo
	cache   *CacheService
}

// NewStatsService создаёт сервис статистики.
func NewStatsService(
	posts PostStatsRepo,
	bids BidStatsRepo,
	rooms RoomStatsRepo,
	reports ReportStatsRepo,
	users UserStatsRepo,
	cache *CacheService,
) *StatsService {
	return &StatsService{
		posts:   posts,
		bids:    bids,
		rooms:   rooms,
		reports: reports,
		users:   users,
		cache:   cache,
	}
}

// GetDashboardStats возвращает сводку по всем сущностям.
func (s *StatsService) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	value, err := s.cache.GetOrSet(ctx, DashboardStatsCacheKey(), statsCacheTTL, func() (interface{}, error) {
		return s.collect(ctx)
	})
	if err != nil {
		return nil, err
	}

	stats, ok := value.(*models.DashboardStats)
	if !ok {
		return nil, apperror.New(apperror.ErrCodeInternal, "некорректное значение в кэше статистики")
	}
	return stats, nil
}

// InvalidateCache сбрасывает кэш статистики. Следующий запрос
// пересчитает счётчики в базе.
func (s *StatsService) InvalidateCache() {
	s.cache.InvalidateStatsCache()
}

func (s *StatsService) collect(ctx context.Context) (*models.DashboardStats, error) {
	posts, err := s.posts.GetStats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику объявлений")
	}
	bids, err := s.bids.GetStats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику откликов")
	}
	rooms, err := s.rooms.GetStats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику комнат")
	}
	reports, err := s.reports.GetStats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику жалоб")
	}
	users, err := s.users.GetStats(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось получить статистику пользователей")
	}

	return &models.DashboardStats{
		Posts:   *posts,
		Bids:    *bids,
		Rooms:   *rooms,
		Reports: *reports,
		Users:   *users,
	}, nil
}
