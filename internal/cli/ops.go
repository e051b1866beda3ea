package cli

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/heightwalk/pkg/errors"
	"github.com/matzehuels/heightwalk/pkg/heightmap"
	"github.com/matzehuels/heightwalk/pkg/pipeline"
)

// helloCommand prints the diagnostic constant.
func (c *CLI) helloCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hello",
		Short: "Print the diagnostic value (always 42)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), pipeline.Hello())
			return err
		},
	}
}

// imageCommand converts raw heights into an RGBA mask.
func (c *CLI) imageCommand() *cobra.Command {
	var output string
	var asPNG bool

	cmd := &cobra.Command{
		Use:   "image <heights.raw|->",
		Short: "Expand raw heights into a binary RGBA mask",
		Long: `Read raw 8-bit heights and write 4 bytes per sample: transparent black
for 0, opaque white otherwise. With --png the mask is written as a PNG of
the inferred square size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			heights, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			prog := newProgress(logger)

			var data []byte
			if asPNG {
				w, h := pipeline.Side(len(heights))
				var buf bytes.Buffer
				if err := png.Encode(&buf, heightmap.MaskImage(heights, w, h)); err != nil {
					return err
				}
				data = buf.Bytes()
			} else {
				data = pipeline.ToImage(heights)
			}
			prog.done(fmt.Sprintf("Masked %d samples", len(heights)))

			if output == "" {
				ext := "rgba"
				if asPNG {
					ext = "png"
				}
				output = derivedPath(args[0], "mask", ext)
			}
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: derived from input, - for stdout)")
	cmd.Flags().BoolVar(&asPNG, "png", false, "write the mask as PNG")
	return cmd
}

// blurOpts holds the command-line flags for the blur command.
type blurOpts struct {
	output    string
	radius    int
	detailMax int
	saturate  bool
	width     int
}

// blurCommand blurs raw heights.
func (c *CLI) blurCommand() *cobra.Command {
	opts := blurOpts{radius: pipeline.DefaultRadius, detailMax: -1}

	cmd := &cobra.Command{
		Use:   "blur <heights.raw|->",
		Short: "Blur raw heights with the base and optional detail pass",
		Long: `Apply a stack blur of --radius to raw 8-bit heights. With --detail-max the
input is also capped at that value, blurred at radius 4 and added to the
base pass; sums wrap unless --saturate is given.

The buffer is treated as square when its length is a perfect square, and
as a single row otherwise. Use --width for other shapes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			heights, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			width, height := pipeline.Side(len(heights))
			if opts.width > 0 {
				if len(heights)%opts.width != 0 {
					return errors.New(errors.ErrCodeInvalidInput,
						"width %d does not divide %d samples", opts.width, len(heights))
				}
				width, height = opts.width, len(heights)/opts.width
			}
			if err := pipeline.ValidateRadius(opts.radius); err != nil {
				return err
			}

			var copts []heightmap.Option
			if opts.detailMax >= 0 {
				if err := pipeline.ValidateDetailMax(opts.detailMax); err != nil {
					return err
				}
				copts = append(copts, heightmap.WithDetail(opts.detailMax))
			}
			if opts.saturate {
				copts = append(copts, heightmap.WithSaturation())
			}

			prog := newProgress(logger)
			out := heightmap.Composite(heights, width, height, opts.radius, copts...)
			prog.done(fmt.Sprintf("Blurred %d×%d samples", width, height))

			if opts.output == "" {
				opts.output = derivedPath(args[0], "blur", "raw")
			}
			return writeOutput(cmd, opts.output, out)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from input, - for stdout)")
	cmd.Flags().IntVarP(&opts.radius, "radius", "r", opts.radius, "base blur radius")
	cmd.Flags().IntVar(&opts.detailMax, "detail-max", opts.detailMax, "detail pass ceiling 0-255 (-1 disables)")
	cmd.Flags().BoolVar(&opts.saturate, "saturate", false, "clamp base+detail at 255 instead of wrapping")
	cmd.Flags().IntVar(&opts.width, "width", 0, "row width (default: inferred)")
	return cmd
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeFileNotFound, "no such file: %s", path)
		}
		return nil, err
	}
	return data, nil
}

// writeOutput writes data to path, or stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	printFile(path)
	return nil
}

// derivedPath names an output after its input: "map.raw" becomes
// "map.<suffix>.<ext>". Stdin input writes to stdout.
func derivedPath(input, suffix, ext string) string {
	if input == "-" {
		return "-"
	}
	base := strings.TrimSuffix(input, ".raw")
	return base + "." + suffix + "." + ext
}
