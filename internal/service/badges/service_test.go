package badges

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/config"
	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/pkg/logger"
)

// In-memory badge repository mock backed by maps.

type mockBadgeRepo struct {
	badges  map[uint]*models.Badge
	awarded map[uint]map[uint]time.Time // userID -> badgeID -> earnedAt
	nextID  uint
}

func newMockBadgeRepo() *mockBadgeRepo {
	return &mockBadgeRepo{
		badges:  make(map[uint]*models.Badge),
		awarded: make(map[uint]map[uint]time.Time),
		nextID:  1,
	}
}

func (m *mockBadgeRepo) Create(badge *models.Badge) error {
	badge.ID = m.nextID
	m.nextID++
	m.badges[badge.ID] = badge
	return nil
}

func (m *mockBadgeRepo) GetByName(name string) (*models.Badge, error) {
	for _, b := range m.badges {
		if b.Name == name {
			return b, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBadgeRepo) GetAll() ([]models.Badge, error) {
	out := make([]models.Badge, 0, len(m.badges))
	for id := uint(1); id < m.nextID; id++ {
		if b, ok := m.badges[id]; ok {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBadgeRepo) Update(badge *models.Badge) error {
	m.badges[badge.ID] = badge
	return nil
}

func (m *mockBadgeRepo) AwardBadge(userID, badgeID uint) error {
	if m.awarded[userID] == nil {
		m.awarded[userID] = make(map[uint]time.Time)
	}
	if _, ok := m.awarded[userID][badgeID]; !ok {
		m.awarded[userID][badgeID] = time.Now()
	}
	return nil
}

func (m *mockBadgeRepo) HasUserEarnedBadge(userID, badgeID uint) (bool, error) {
	_, ok := m.awarded[userID][badgeID]
	return ok, nil
}

func (m *mockBadgeRepo) GetUserBadges(userID uint) ([]models.UserBadge, error) {
	var out []models.UserBadge
	for badgeID, earnedAt := range m.awarded[userID] {
		out = append(out, models.UserBadge{
			UserID:   userID,
			BadgeID:  badgeID,
			Badge:    *m.badges[badgeID],
			EarnedAt: earnedAt,
		})
	}
	return out, nil
}

func (m *mockBadgeRepo) GetUserBadgeCount(userID uint) (int64, error) {
	return int64(len(m.awarded[userID])), nil
}

func (m *mockBadgeRepo) GetUsersWithBadge(badgeID uint) ([]models.User, error) {
	var out []models.User
	for userID, badges := range m.awarded {
		if _, ok := badges[badgeID]; ok {
			out = append(out, models.User{ID: userID})
		}
	}
	return out, nil
}

func (m *mockBadgeRepo) GetBadgeHoldersCount(badgeID uint) (int64, error) {
	var count int64
	for _, badges := range m.awarded {
		if _, ok := badges[badgeID]; ok {
			count++
		}
	}
	return count, nil
}

func (m *mockBadgeRepo) GetRecentlyAwardedBadges(since time.Time) ([]models.UserBadge, error) {
	var out []models.UserBadge
	for userID, badges := range m.awarded {
		for badgeID, earnedAt := range badges {
			if !earnedAt.Before(since) {
				out = append(out, models.UserBadge{UserID: userID, BadgeID: badgeID, EarnedAt: earnedAt})
			}
		}
	}
	return out, nil
}

type mockActivityRepo struct {
	counters map[uint]*models.ActivityCounters
}

func (m *mockActivityRepo) CountersFor(userID uint) (*models.ActivityCounters, error) {
	if c, ok := m.counters[userID]; ok {
		return c, nil
	}
	return &models.ActivityCounters{UserID: userID}, nil
}

type mockScoreRepo struct {
	scores map[uint]*models.EngagementScore
}

func (m *mockScoreRepo) GetScore(userID uint) (*models.EngagementScore, error) {
	if s, ok := m.scores[userID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockUserRepo struct {
	users []models.User
}

func (m *mockUserRepo) List(mentorsOnly bool) ([]models.User, error) {
	return m.users, nil
}

func mustCriteria(t *testing.T, metric, operator string, value float64) json.RawMessage {
	t.Helper()

	raw, err := json.Marshal(models.BadgeCriteria{Metric: metric, Operator: operator, Value: value})
	if err != nil {
		t.Fatalf("Failed to marshal criteria: %v", err)
	}
	return raw
}

func newTestService(t *testing.T, badgeRepo *mockBadgeRepo, activityRepo *mockActivityRepo, scoreRepo *mockScoreRepo, userRepo *mockUserRepo) *Service {
	t.Helper()

	log := logger.New("error", "console", "stdout")
	return NewServiceWithInterfaces(badgeRepo, activityRepo, scoreRepo, userRepo, log)
}

func TestSeedFromConfig(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	svc := newTestService(t, badgeRepo, &mockActivityRepo{}, &mockScoreRepo{}, &mockUserRepo{})

	configured := []config.BadgeConfig{
		{
			Name:        "Event Regular",
			Description: "Attended 5 events",
			Icon:        "calendar",
			Rarity:      "common",
			Points:      10,
			Criteria:    map[string]interface{}{"metric": "events_attended", "operator": ">=", "value": 5},
		},
	}

	if err := svc.SeedFromConfig(configured); err != nil {
		t.Fatalf("SeedFromConfig failed: %v", err)
	}

	badge, err := badgeRepo.GetByName("Event Regular")
	if err != nil {
		t.Fatalf("Seeded badge not found: %v", err)
	}
	if badge.Points != 10 || badge.Rarity != "common" {
		t.Errorf("Badge seeded incorrectly: %+v", badge)
	}

	// Re-seeding with changed fields updates in place without duplicating.
	configured[0].Points = 20
	if err := svc.SeedFromConfig(configured); err != nil {
		t.Fatalf("Re-seed failed: %v", err)
	}

	all, _ := badgeRepo.GetAll()
	if len(all) != 1 {
		t.Fatalf("Expected 1 badge after re-seed, got %d", len(all))
	}
	if all[0].Points != 20 {
		t.Errorf("Points = %d, want 20 after re-seed", all[0].Points)
	}
}

func TestCheckAndAwardBadges(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Event Regular",
		Rarity:   "common",
		Criteria: mustCriteria(t, MetricEventsAttended, ">=", 5),
	})
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Mentor Legend",
		Rarity:   "legendary",
		Criteria: mustCriteria(t, MetricMentorshipSessions, ">=", 50),
	})

	activityRepo := &mockActivityRepo{counters: map[uint]*models.ActivityCounters{
		1: {UserID: 1, EventsAttended: 7, MentorshipSessions: 3},
	}}

	svc := newTestService(t, badgeRepo, activityRepo, &mockScoreRepo{}, &mockUserRepo{})

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges failed: %v", err)
	}

	if len(awarded) != 1 || awarded[0].Name != "Event Regular" {
		t.Fatalf("Awarded = %+v, want only Event Regular", awarded)
	}

	// Second pass awards nothing new.
	awarded, err = svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatalf("Second CheckAndAwardBadges failed: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("Second pass awarded %d badges, want 0", len(awarded))
	}
}

func TestCheckAndAwardBadgesEngagementScoreMetric(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Veteran Member",
		Rarity:   "rare",
		Criteria: mustCriteria(t, MetricEngagementScore, ">=", 500),
	})

	scoreRepo := &mockScoreRepo{scores: map[uint]*models.EngagementScore{
		1: {UserID: 1, Total: 620},
		2: {UserID: 2, Total: 120},
	}}

	svc := newTestService(t, badgeRepo, &mockActivityRepo{}, scoreRepo, &mockUserRepo{})

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges failed: %v", err)
	}
	if len(awarded) != 1 {
		t.Errorf("User 1 should earn Veteran Member, got %+v", awarded)
	}

	awarded, err = svc.CheckAndAwardBadges(context.Background(), 2)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges failed: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("User 2 should earn nothing, got %+v", awarded)
	}

	// A user with no score row at all evaluates the metric as absent.
	awarded, err = svc.CheckAndAwardBadges(context.Background(), 3)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges for unscored user failed: %v", err)
	}
	if len(awarded) != 0 {
		t.Errorf("Unscored user should earn nothing, got %+v", awarded)
	}
}

func TestCheckAndAwardBadgesChainsBadgeCount(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	_ = badgeRepo.Create(&models.Badge{
		Name:     "First Steps",
		Rarity:   "common",
		Criteria: mustCriteria(t, MetricEventsAttended, ">=", 1),
	})
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Collector",
		Rarity:   "rare",
		Criteria: mustCriteria(t, MetricBadgeCount, ">=", 1),
	})

	activityRepo := &mockActivityRepo{counters: map[uint]*models.ActivityCounters{
		1: {UserID: 1, EventsAttended: 2},
	}}

	svc := newTestService(t, badgeRepo, activityRepo, &mockScoreRepo{}, &mockUserRepo{})

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges failed: %v", err)
	}
	if len(awarded) != 2 {
		t.Errorf("Expected badge_count predicate to chain within one pass, got %+v", awarded)
	}
}

func TestCheckAndAwardBadgesSkipsMalformedCriteria(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Broken",
		Criteria: json.RawMessage(`{not json`),
	})
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Working",
		Criteria: mustCriteria(t, MetricEventsAttended, ">=", 1),
	})

	activityRepo := &mockActivityRepo{counters: map[uint]*models.ActivityCounters{
		1: {UserID: 1, EventsAttended: 1},
	}}

	svc := newTestService(t, badgeRepo, activityRepo, &mockScoreRepo{}, &mockUserRepo{})

	awarded, err := svc.CheckAndAwardBadges(context.Background(), 1)
	if err != nil {
		t.Fatalf("CheckAndAwardBadges failed: %v", err)
	}
	if len(awarded) != 1 || awarded[0].Name != "Working" {
		t.Errorf("Awarded = %+v, want only Working", awarded)
	}
}

func TestEvaluateAll(t *testing.T) {
	badgeRepo := newMockBadgeRepo()
	_ = badgeRepo.Create(&models.Badge{
		Name:     "Event Regular",
		Criteria: mustCriteria(t, MetricEventsAttended, ">=", 5),
	})

	activityRepo := &mockActivityRepo{counters: map[uint]*models.ActivityCounters{
		1: {UserID: 1, EventsAttended: 10},
		2: {UserID: 2, EventsAttended: 1},
		3: {UserID: 3, EventsAttended: 6},
	}}
	userRepo := &mockUserRepo{users: []models.User{{ID: 1}, {ID: 2}, {ID: 3}}}

	svc := newTestService(t, badgeRepo, activityRepo, &mockScoreRepo{}, userRepo)

	total, err := svc.EvaluateAll(context.Background())
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if total != 2 {
		t.Errorf("EvaluateAll awarded %d badges, want 2", total)
	}
}
