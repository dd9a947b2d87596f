package repository

import (
	"sort"
	"strings"

	"github.com/alumnet/engagement/internal/models"
	"github.com/alumnet/engagement/internal/scoring"
)

// UserRepository handles user and profile database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List retrieves users, optionally filtered by mentor flag.
func (r *UserRepository) List(mentorsOnly bool) ([]models.User, error) {
	var users []models.User
	query := r.db.Order("id ASC")
	if mentorsOnly {
		query = query.Where("is_mentor = ?", true)
	}
	err := query.Find(&users).Error
	return users, err
}

// SaveProfile creates or updates a user's profile. Skills are normalized
// and deduplicated before storage so set comparisons stay cheap.
func (r *UserRepository) SaveProfile(profile *models.Profile) error {
	profile.Skills = normalizeSkillsCSV(profile.Skills)
	if profile.ID != 0 {
		return r.db.Save(profile).Error
	}

	var existing models.Profile
	err := r.db.Where("user_id = ?", profile.UserID).First(&existing).Error
	if err == nil {
		profile.ID = existing.ID
		return r.db.Save(profile).Error
	}
	return r.db.Create(profile).Error
}

// GetProfile retrieves the profile for a user.
func (r *UserRepository) GetProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := r.db.Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles retrieves all profiles, optionally restricted to a role.
func (r *UserRepository) ListProfiles(role string) ([]models.Profile, error) {
	var profiles []models.Profile
	query := r.db.Order("user_id ASC")
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Find(&profiles).Error
	return profiles, err
}

// ListMentorProfiles retrieves profiles whose users are flagged as mentors.
func (r *UserRepository) ListMentorProfiles() ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.
		Joins("JOIN users ON users.id = profiles.user_id").
		Where("users.is_mentor = ?", true).
		Order("profiles.user_id ASC").
		Find(&profiles).Error
	return profiles, err
}

// normalizeSkillsCSV lowercases, trims and deduplicates a comma-separated
// skill list, keeping a sorted stable representation.
func normalizeSkillsCSV(skills string) string {
	if skills == "" {
		return ""
	}
	set := scoring.NormalizeSet(strings.Split(skills, ","))
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
