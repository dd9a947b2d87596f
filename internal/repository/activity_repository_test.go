package repository

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/alumnet/engagement/internal/models"
)

// setupActivityTestDB creates an in-memory SQLite database for testing.
func setupActivityTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.MentorshipSession{},
		&models.JobPosting{},
		&models.JobApplication{},
		&models.EventAttendance{},
		&models.ForumPost{},
	)
	if err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	return &DB{db}
}

func TestActivityRepository_CountersFor(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityRepository(db)
	users := NewUserRepository(db)

	userID := uint(1)
	if err := users.SaveProfile(&models.Profile{UserID: userID, Completeness: 80}); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}

	// Two completed sessions (one as mentor, one as mentee), one scheduled.
	_ = repo.RecordSession(&models.MentorshipSession{MentorID: userID, MenteeID: 2, Status: "completed", HeldAt: time.Now()})
	_ = repo.RecordSession(&models.MentorshipSession{MentorID: 3, MenteeID: userID, Status: "completed", HeldAt: time.Now()})
	_ = repo.RecordSession(&models.MentorshipSession{MentorID: userID, MenteeID: 4, Status: "scheduled", HeldAt: time.Now()})

	_ = repo.RecordApplication(&models.JobApplication{UserID: userID, JobID: 1, Status: "submitted"})

	_ = repo.RecordAttendance(&models.EventAttendance{UserID: userID, EventID: 1, EventName: "Reunion"})
	_ = repo.RecordAttendance(&models.EventAttendance{UserID: userID, EventID: 2, EventName: "Career Fair"})

	// One thread, two comments.
	thread := &models.ForumPost{UserID: userID, Title: "Intro"}
	_ = repo.RecordForumPost(thread)
	_ = repo.RecordForumPost(&models.ForumPost{UserID: userID, ThreadID: &thread.ID, Body: "reply 1"})
	_ = repo.RecordForumPost(&models.ForumPost{UserID: userID, ThreadID: &thread.ID, Body: "reply 2"})

	counters, err := repo.CountersFor(userID)
	if err != nil {
		t.Fatalf("CountersFor failed: %v", err)
	}

	if counters.ProfileCompleteness != 80 {
		t.Errorf("ProfileCompleteness = %f, want 80", counters.ProfileCompleteness)
	}
	if counters.MentorshipSessions != 2 {
		t.Errorf("MentorshipSessions = %d, want 2 (completed only, either side)", counters.MentorshipSessions)
	}
	if counters.JobApplications != 1 {
		t.Errorf("JobApplications = %d, want 1", counters.JobApplications)
	}
	if counters.EventsAttended != 2 {
		t.Errorf("EventsAttended = %d, want 2", counters.EventsAttended)
	}
	if counters.ForumPosts != 1 {
		t.Errorf("ForumPosts = %d, want 1 thread", counters.ForumPosts)
	}
	if counters.ForumComments != 2 {
		t.Errorf("ForumComments = %d, want 2 replies", counters.ForumComments)
	}
}

func TestActivityRepository_CountersForMissingProfile(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityRepository(db)

	counters, err := repo.CountersFor(42)
	if err != nil {
		t.Fatalf("CountersFor without profile failed: %v", err)
	}
	if counters.ProfileCompleteness != 0 {
		t.Errorf("ProfileCompleteness = %f, want 0 for missing profile", counters.ProfileCompleteness)
	}
}

func TestActivityRepository_ActiveJobs(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityRepository(db)

	if err := db.Create(&models.JobPosting{Title: "Open role", RequiredSkills: "go", Active: true}).Error; err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}
	if err := db.Create(&models.JobPosting{Title: "Closed role", Active: false}).Error; err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	jobs, err := repo.ActiveJobs()
	if err != nil {
		t.Fatalf("ActiveJobs failed: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Open role" {
		t.Errorf("ActiveJobs = %+v, want only the open role", jobs)
	}
}

func TestActivityRepository_GetJob(t *testing.T) {
	db := setupActivityTestDB(t)
	repo := NewActivityRepository(db)

	job := &models.JobPosting{Title: "Backend Engineer", RequiredSkills: "go,postgres", Active: true}
	if err := db.Create(job).Error; err != nil {
		t.Fatalf("Failed to create job: %v", err)
	}

	got, err := repo.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Title != "Backend Engineer" {
		t.Errorf("Title = %q, want Backend Engineer", got.Title)
	}
	if skills := got.SkillList(); len(skills) != 2 {
		t.Errorf("SkillList = %v, want 2 skills", skills)
	}

	if _, err := repo.GetJob(9999); err == nil {
		t.Error("GetJob for missing ID should error")
	}
}
