package db

import (
	"context"
	"errors"
	"testing"

	"github.com/aklerup/keyline/internal/models"
)

func testProject(name string) *models.Project {
	return &models.Project{
		Name:     name,
		Duration: 12,
		Segments: []*models.Segment{
			{
				TrackIndex: 0,
				StartTime:  1,
				EndTime:    4,
				Name:       "intro",
				Kind:       models.SegmentKindAnimation,
				Color:      "#2196F3",
			},
			{
				TrackIndex:  1,
				StartTime:   4,
				EndTime:     6,
				Name:        "hold",
				Kind:        models.SegmentKindPause,
				Color:       "#FF9800",
				Description: "wait for the beat",
				Locked:      true,
				Hidden:      true,
			},
		},
	}
}

func TestProjectCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := testProject("demo")
	project.AudioFileRef = "audio/track.wav"
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	if project.ID == "" {
		t.Fatal("expected assigned project ID")
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("failed to get project: %v", err)
	}
	if got.Name != "demo" || got.Duration != 12 || got.AudioFileRef != "audio/track.wav" {
		t.Fatalf("unexpected project: %+v", got)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got.Segments))
	}
	if got.Segments[0].Name != "intro" || got.Segments[1].Name != "hold" {
		t.Fatal("segment order not preserved")
	}
	if !got.Segments[1].Locked || got.Segments[1].Description != "wait for the beat" {
		t.Fatalf("segment fields lost: %+v", got.Segments[1])
	}
	if got.Segments[0].Hidden || !got.Segments[1].Hidden {
		t.Fatal("hidden flags not round-tripped")
	}
}

func TestProjectCreateRejectsInvalid(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)

	project := testProject("bad")
	project.Segments[0].EndTime = 20 // past duration
	if err := repo.Create(context.Background(), project); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestProjectCreateDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testProject("demo")); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	err := repo.Create(ctx, testProject("demo"))
	if !errors.Is(err, ErrProjectAlreadyExists) {
		t.Fatalf("expected ErrProjectAlreadyExists, got %v", err)
	}
}

func TestProjectUpdateReplacesSegments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := testProject("demo")
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	project.Duration = 20
	project.Segments = []*models.Segment{
		{
			TrackIndex: 0,
			StartTime:  5,
			EndTime:    15,
			Name:       "outro",
			Kind:       models.SegmentKindTransition,
			Color:      "#4CAF50",
		},
	}
	if err := repo.Update(ctx, project); err != nil {
		t.Fatalf("failed to update project: %v", err)
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("failed to get project: %v", err)
	}
	if got.Duration != 20 {
		t.Fatalf("expected duration 20, got %v", got.Duration)
	}
	if len(got.Segments) != 1 || got.Segments[0].Name != "outro" {
		t.Fatalf("expected replaced segments, got %+v", got.Segments)
	}
}

func TestProjectUpdateNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)

	project := testProject("ghost")
	project.ID = "missing"
	err := repo.Update(context.Background(), project)
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectGetByName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, testProject("demo")); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	got, err := repo.GetByName(ctx, "demo")
	if err != nil {
		t.Fatalf("failed to get project by name: %v", err)
	}
	if len(got.Segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(got.Segments))
	}

	if _, err := repo.GetByName(ctx, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectListOrdersByName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	for _, name := range []string{"zebra", "alpha"} {
		if err := repo.Create(ctx, testProject(name)); err != nil {
			t.Fatalf("failed to create project %s: %v", name, err)
		}
	}

	projects, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("failed to list projects: %v", err)
	}
	if len(projects) != 2 || projects[0].Name != "alpha" || projects[1].Name != "zebra" {
		t.Fatalf("unexpected list order: %+v", projects)
	}
}

func TestProjectDeleteCascadesSegments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	repo := NewProjectRepository(db)
	ctx := context.Background()

	project := testProject("demo")
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	if err := repo.Delete(ctx, project.ID); err != nil {
		t.Fatalf("failed to delete project: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM segments`).Scan(&count); err != nil {
		t.Fatalf("failed to count segments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascade delete, got %d segments", count)
	}

	if err := repo.Delete(ctx, project.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
