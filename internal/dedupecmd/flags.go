package dedupecmd

import (
	"github.com/lehigh-university-libraries/imgdedupe/internal/config"
	"github.com/spf13/cobra"
)

// datasetFlags are shared by the commands that read the dataset
type datasetFlags struct {
	input      string
	decorField string
	imageField string
	marker     string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "Dataset CSV to deduplicate (default "+config.DefaultInput+")")
	cmd.Flags().StringVar(&f.decorField, "decor-field", "", "Column holding the decor identifier (default decor_id)")
	cmd.Flags().StringVar(&f.imageField, "image-field", "", "Column holding the image URL (default image_url)")
	cmd.Flags().StringVar(&f.marker, "marker", "", "Path segment preceding the base image id (default pim)")
}

func (f *datasetFlags) overrides() config.Overrides {
	return config.Overrides{
		Input:      f.input,
		DecorField: f.decorField,
		ImageField: f.imageField,
		Marker:     f.marker,
	}
}

// configPath returns the --config value inherited from the root command, if any
func configPath(cmd *cobra.Command) string {
	if f := cmd.Flag("config"); f != nil {
		return f.Value.String()
	}
	return ""
}
