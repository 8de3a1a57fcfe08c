package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aklerup/keyline/internal/db"
	"github.com/aklerup/keyline/internal/events"
	"github.com/aklerup/keyline/internal/timeline"
	"github.com/aklerup/keyline/internal/tui"
)

var editScratch bool

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().BoolVar(&editScratch, "scratch", false, "edit an unsaved timeline")
}

var editCmd = &cobra.Command{
	Use:   "edit [project]",
	Short: "Open the timeline editor",
	Long: `Open the terminal timeline editor on a project. Changes are
written back when the editor exits. With --scratch the timeline is
not persisted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		editorCfg := tui.Config{
			Theme:           cfg.TUI.Theme,
			RefreshInterval: cfg.TUI.RefreshInterval,
			PixelsPerSecond: cfg.Editor.PixelsPerSecond,
			SnapInterval:    cfg.Editor.SnapInterval,
			CreateKind:      cfg.Timeline.DefaultKind,
			Loop:            cfg.Playback.Loop,
			FollowAudio:     cfg.Playback.FollowAudio,
		}

		if editScratch {
			tl := timeline.New(
				timeline.WithDuration(cfg.Timeline.DefaultDuration),
				timeline.WithPublisher(events.NewInMemoryPublisher()),
			)
			editorCfg.ProjectName = "scratch"
			return tui.Run(tl, editorCfg)
		}

		database, err := openDatabase()
		if err != nil {
			return err
		}
		defer database.Close()

		repo := db.NewProjectRepository(database)
		project, err := resolveProject(cmd.Context(), repo, args)
		if err != nil {
			return err
		}

		tl := timelineFromProject(project)
		editorCfg.ProjectName = project.Name

		if err := tui.Run(tl, editorCfg); err != nil {
			return err
		}

		project.Duration = tl.TotalDuration()
		project.Segments = tl.Segments()
		if err := repo.Update(cmd.Context(), project); err != nil {
			return fmt.Errorf("saving %s: %w", project.Name, err)
		}

		fmt.Printf("Saved %s (%d segments)\n", project.Name, len(project.Segments))
		return nil
	},
}
