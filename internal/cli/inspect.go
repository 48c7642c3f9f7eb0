package cli

import (
	"github.com/spf13/cobra"

	"github.com/yyyoichi/stego_zero/imagefile"
	"github.com/yyyoichi/stego_zero/internal/quality"
)

func (a *App) capacityCmd() *cobra.Command {
	var flags codecFlags
	cmd := &cobra.Command{
		Use:   "capacity <input>",
		Short: "Print the largest message in bytes an image can carry",
		Args:  exactArgs("input"),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := a.codec(flags)
			if err != nil {
				return err
			}
			img, _, err := imagefile.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			n := codec.Capacity(img.Bounds())
			a.print(status{Success: true, Capacity: &n, Algorithm: codec.Algorithm()})
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.golay, "golay", false, "account for the Golay(24,12) code")
	cmd.Flags().StringVar(&flags.signature, "signature", "", "account for a signature in front of the header")
	return cmd
}

func (a *App) qualityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quality <cover> <stego>",
		Short: "Compare a cover image with its stego copy",
		Args:  exactArgs("cover", "stego"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cover, _, err := imagefile.Load(ctx, args[0])
			if err != nil {
				return err
			}
			stg, _, err := imagefile.Load(ctx, args[1])
			if err != nil {
				return err
			}
			r, err := quality.Compare(cover, stg)
			if err != nil {
				return err
			}
			a.logger.Debug("compared", "channels", r.Channels, "max_delta", r.MaxDelta)

			st := status{Success: true, MSE: &r.MSE, Changed: &r.Changed}
			if !r.Identical() {
				st.PSNR = &r.PSNR
			}
			a.print(st)
			return nil
		},
	}
}
