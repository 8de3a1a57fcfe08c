package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aklerup/keyline/internal/interp"
	"github.com/aklerup/keyline/internal/models"
	"github.com/aklerup/keyline/internal/render"
)

var (
	renderFPS      float64
	renderDuration float64
	renderOutput   string
	renderWorkers  int
	renderWrap     bool
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().Float64Var(&renderFPS, "fps", 30, "frames per second")
	renderCmd.Flags().Float64Var(&renderDuration, "duration", 0, "seconds to sample (default: longest animation)")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "write frames to file instead of stdout")
	renderCmd.Flags().IntVar(&renderWorkers, "workers", 0, "sampling goroutines (default: GOMAXPROCS)")
	renderCmd.Flags().BoolVar(&renderWrap, "wrap-rotation", true, "interpolate rotation the short way around")
}

var renderCmd = &cobra.Command{
	Use:   "render <elements.json>",
	Short: "Sample element animations into per-frame states",
	Long: `Sample the animated elements described in a JSON file at a fixed
frame rate, writing one property state per element per frame.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}

		var elements []*models.AnimatedElement
		if err := json.Unmarshal(data, &elements); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		for i, element := range elements {
			if err := element.Validate(); err != nil {
				return fmt.Errorf("element %d (%s): %w", i, element.ID, err)
			}
		}

		duration := renderDuration
		if duration <= 0 {
			duration = longestAnimation(elements)
		}
		if duration <= 0 {
			return fmt.Errorf("no animations to sample; pass --duration")
		}

		sampler := render.NewSampler(&interp.Interpolator{WrapRotation: renderWrap})
		sampler.Workers = renderWorkers

		frames, err := sampler.Sample(cmd.Context(), elements, duration, renderFPS)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(frames, "", "  ")
		if err != nil {
			return err
		}

		if renderOutput == "" {
			fmt.Println(string(out))
			return nil
		}
		if err := os.WriteFile(renderOutput, out, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d frames to %s\n", len(frames), renderOutput)
		return nil
	},
}

func longestAnimation(elements []*models.AnimatedElement) float64 {
	var end float64
	for _, element := range elements {
		if element.Animation == nil {
			continue
		}
		if t := element.Animation.StartTime + element.Animation.Duration; t > end {
			end = t
		}
	}
	return end
}
