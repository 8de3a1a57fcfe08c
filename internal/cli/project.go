package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aklerup/keyline/internal/db"
	"github.com/aklerup/keyline/internal/models"
)

var (
	projectCreateDuration float64
	projectCreateAudio    string
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectUseCmd)
	projectCmd.AddCommand(projectDeleteCmd)

	projectCreateCmd.Flags().Float64Var(&projectCreateDuration, "duration", 0, "timeline duration in seconds (default from config)")
	projectCreateCmd.Flags().StringVar(&projectCreateAudio, "audio", "", "audio file reference")
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage timeline projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Long:  "Create a project and select it as the current one.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		duration := projectCreateDuration
		if duration <= 0 {
			duration = GetConfig().Timeline.DefaultDuration
		}

		project := &models.Project{
			Name:         args[0],
			Duration:     duration,
			AudioFileRef: projectCreateAudio,
		}

		repo := db.NewProjectRepository(database)
		if err := repo.Create(cmd.Context(), project); err != nil {
			if errors.Is(err, db.ErrProjectAlreadyExists) {
				return fmt.Errorf("project %q already exists", project.Name)
			}
			return err
		}

		if err := useProject(project); err != nil {
			return err
		}

		fmt.Printf("Created project %s (%s)\n", project.Name, project.ID)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		projects, err := db.NewProjectRepository(database).List(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(os.Stdout, projects)
		}

		if len(projects) == 0 {
			fmt.Println("No projects. Create one with: keyline project create <name>")
			return nil
		}

		current := currentProjectID()
		writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(writer, "NAME\tDURATION\tUPDATED\tID")
		for _, p := range projects {
			marker := ""
			if p.ID == current {
				marker = "* "
			}
			fmt.Fprintf(writer, "%s%s\t%.1fs\t%s\t%s\n", marker, p.Name, p.Duration, p.UpdatedAt.Format("2006-01-02 15:04"), p.ID)
		}
		return writer.Flush()
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a project and its segments",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		project, err := resolveProject(cmd.Context(), db.NewProjectRepository(database), args)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(os.Stdout, project)
		}

		fmt.Printf("%s  (%s)\n", project.Name, project.ID)
		fmt.Printf("  duration: %.1fs\n", project.Duration)
		if project.AudioFileRef != "" {
			fmt.Printf("  audio:    %s\n", project.AudioFileRef)
		}
		fmt.Printf("  segments: %d\n", len(project.Segments))
		for _, s := range project.Segments {
			flags := ""
			if s.Locked {
				flags += " locked"
			}
			if s.Hidden {
				flags += " hidden"
			}
			fmt.Printf("    [%d] %.2f-%.2fs %-10s %s%s\n", s.TrackIndex, s.StartTime, s.EndTime, s.Kind, s.Name, flags)
		}
		return nil
	},
}

var projectUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the current project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		project, err := db.NewProjectRepository(database).GetByName(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, db.ErrProjectNotFound) {
				return fmt.Errorf("no project named %q", args[0])
			}
			return err
		}

		if err := useProject(project); err != nil {
			return err
		}
		fmt.Printf("Using project %s\n", project.Name)
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewProjectRepository(database)
		project, err := repo.GetByName(cmd.Context(), args[0])
		if err != nil {
			if errors.Is(err, db.ErrProjectNotFound) {
				return fmt.Errorf("no project named %q", args[0])
			}
			return err
		}

		if err := repo.Delete(cmd.Context(), project.ID); err != nil {
			return err
		}

		// Deleting the current project leaves no selection.
		store := contextStore()
		if selection, err := store.Load(); err == nil && selection.ProjectID == project.ID {
			selection.Clear()
			if err := store.Save(selection); err != nil {
				return err
			}
		}

		fmt.Printf("Deleted project %s\n", project.Name)
		return nil
	},
}

func useProject(project *models.Project) error {
	store := contextStore()
	selection, err := store.Load()
	if err != nil {
		return err
	}
	selection.SetProject(project.ID, project.Name)
	return store.Save(selection)
}

func currentProjectID() string {
	selection, err := contextStore().Load()
	if err != nil {
		return ""
	}
	return selection.ProjectID
}

// resolveProject finds a project by the optional name argument, falling
// back to the current selection.
func resolveProject(ctx context.Context, repo *db.ProjectRepository, args []string) (*models.Project, error) {
	if len(args) > 0 {
		project, err := repo.GetByName(ctx, args[0])
		if errors.Is(err, db.ErrProjectNotFound) {
			return nil, fmt.Errorf("no project named %q", args[0])
		}
		return project, err
	}

	selection, err := contextStore().Load()
	if err != nil {
		return nil, err
	}
	if selection.IsEmpty() {
		return nil, errors.New("no project selected; pass a name or run: keyline project use <name>")
	}

	project, err := repo.Get(ctx, selection.ProjectID)
	if errors.Is(err, db.ErrProjectNotFound) {
		return nil, fmt.Errorf("selected project %s no longer exists", selection.String())
	}
	return project, err
}
