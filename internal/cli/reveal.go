package cli

import (
	"encoding/hex"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/yyyoichi/stego_zero/imagefile"
	"github.com/yyyoichi/stego_zero/seal"
)

func (a *App) revealCmd() *cobra.Command {
	var flags codecFlags
	cmd := &cobra.Command{
		Use:   "reveal <input>",
		Short: "Print the message hidden in an image",
		Args:  exactArgs("input"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			codec, err := a.codec(flags)
			if err != nil {
				return err
			}
			img, _, err := imagefile.Load(ctx, args[0])
			if err != nil {
				return err
			}
			payload, err := codec.Decode(ctx, img)
			if err != nil {
				return err
			}

			message := string(payload)
			// plain text passes through; only text shaped like a sealed message is opened
			if flags.seal && seal.IsSealed(message) {
				key, err := a.sealKey()
				if err != nil {
					return err
				}
				plain, err := seal.Open(key, message)
				if err != nil {
					return err
				}
				message = string(plain)
			}
			a.logger.Debug("revealed", "path", args[0], "bytes", len(payload))
			if !utf8.ValidString(message) {
				a.logger.Warn("payload is not valid UTF-8, reporting hex", "path", args[0])
				h := hex.EncodeToString([]byte(message))
				a.print(status{Success: true, MessageHex: &h})
				return nil
			}
			a.print(status{Success: true, Message: &message})
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
