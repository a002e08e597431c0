package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/advisory"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/analysis/intent"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/service/farm"
)

func addSoilFlags(cmd *cobra.Command, soil *advisory.SoilReading) {
	*soil = farm.DefaultSoil
	cmd.Flags().IntVarP(&soil.Nitrogen, "nitrogen", "n", soil.Nitrogen, "Nitrogen (kg/ha)")
	cmd.Flags().IntVarP(&soil.Phosphorus, "phosphorus", "p", soil.Phosphorus, "Phosphorus (kg/ha)")
	cmd.Flags().IntVarP(&soil.Potassium, "potassium", "k", soil.Potassium, "Potassium (kg/ha)")
	cmd.Flags().Float64Var(&soil.PH, "ph", soil.PH, "Soil pH")
}

func language(opts *Options) (advisory.LanguageCode, error) {
	lang := advisory.ParseLanguage(opts.Language)
	if err := advisory.DefaultTable().Require(lang); err != nil {
		return "", err
	}
	return lang, nil
}

// NewRecommendCmd creates the 'recommend' command.
func NewRecommendCmd(opts *Options) *cobra.Command {
	var soil advisory.SoilReading
	var weather advisory.WeatherSample

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a crop for soil and weather values",
		Example: `  advisorctl recommend --nitrogen 120 --ph 6.8
  advisorctl recommend --ph 5.4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			soil = soil.Clamped()
			crop := advisory.RecommendCrop(soil, weather)
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"crop": crop, "soil": soil, "weather": weather})
			}
			fmt.Fprintln(cmd.OutOrStdout(), crop)
			return nil
		},
	}

	addSoilFlags(cmd, &soil)
	cmd.Flags().Float64Var(&weather.Temperature, "temperature", 25, "Temperature (°C)")
	cmd.Flags().Float64Var(&weather.Humidity, "humidity", 70, "Relative humidity (%)")
	cmd.Flags().Float64Var(&weather.Rainfall, "rainfall", 100, "Rainfall (mm)")
	return cmd
}

// NewIrrigationCmd creates the 'irrigation' command.
func NewIrrigationCmd(opts *Options) *cobra.Command {
	var rain []float64
	var temperature, humidity float64

	cmd := &cobra.Command{
		Use:   "irrigation <crop>",
		Short: "Irrigation advice for a crop and a daily rainfall series",
		Long: `Rainfall values are daily totals, oldest first. The last day also takes the
--temperature and --humidity values for the heat stress check.`,
		Example: `  advisorctl irrigation Wheat --rain 2,8,9
  advisorctl irrigation Cotton --rain 0,0 --temperature 36 --humidity 30 --lang pa`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			crop, ok := advisory.ParseCrop(args[0])
			if !ok {
				return fmt.Errorf("unknown crop %q", args[0])
			}
			lang, err := language(opts)
			if err != nil {
				return err
			}

			forecast := make([]advisory.WeatherSample, len(rain))
			for i, mm := range rain {
				forecast[i] = advisory.WeatherSample{Rainfall: mm}
			}
			if n := len(forecast); n > 0 {
				forecast[n-1].Temperature = temperature
				forecast[n-1].Humidity = humidity
			}

			advice := advisory.IrrigationAdvice(crop, forecast, lang)
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"advice": advice, "rainNext": advisory.RainNext3(forecast)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), advice)
			return nil
		},
	}

	cmd.Flags().Float64SliceVar(&rain, "rain", nil, "Daily rainfall in mm, oldest first")
	cmd.Flags().Float64Var(&temperature, "temperature", 25, "Latest day temperature (°C)")
	cmd.Flags().Float64Var(&humidity, "humidity", 70, "Latest day humidity (%)")
	return cmd
}

// NewNutrientsCmd creates the 'nutrients' command.
func NewNutrientsCmd(opts *Options) *cobra.Command {
	var soil advisory.SoilReading

	cmd := &cobra.Command{
		Use:     "nutrients",
		Short:   "Format a soil nutrient summary",
		Example: `  advisorctl nutrients -n 80 -p 20 -k 35 --ph 7.2 --lang pa`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lang, err := language(opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), advisory.NutrientAdvice(soil.Clamped(), lang))
			return nil
		},
	}

	addSoilFlags(cmd, &soil)
	return cmd
}

// NewClassifyCmd creates the 'classify' command. It uses keyword matching only.
func NewClassifyCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "classify <query>",
		Short:   "Classify a farmer question",
		Example: `  advisorctl classify "mandi price of wheat"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := intent.Classify(strings.Join(args, " "))
			if opts.JSON {
				return printJSON(cmd.OutOrStdout(), map[string]any{"intent": in, "keywords": intent.Keywords(in)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), in)
			return nil
		},
	}
}

// NewLanguagesCmd creates the 'languages' command.
func NewLanguagesCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the reply languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := advisory.DefaultTable()
			out := cmd.OutOrStdout()
			for _, code := range table.Languages() {
				loc := table.Locale(code)
				if opts.JSON {
					if err := printJSON(out, map[string]any{"code": code, "name": loc.Name, "speechTag": loc.SpeechTag}); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", code, loc.SpeechTag, loc.Name)
			}
			return nil
		},
	}
}
