package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/imagefile"
	"github.com/yyyoichi/stego_zero/internal/config"
	"github.com/yyyoichi/stego_zero/internal/ledger"
	"github.com/yyyoichi/stego_zero/seal"
)

type codecFlags struct {
	golay     bool
	signature string
	seal      bool
}

func (f *codecFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.golay, "golay", false, "protect the payload with the Golay(24,12) code")
	cmd.Flags().StringVar(&f.signature, "signature", "", "signature written in front of the length header")
	cmd.Flags().BoolVar(&f.seal, "seal", false, "seal the message with AES-256-GCM using the configured key")
}

// codec merges the command flags over the configured codec settings.
func (a *App) codec(f codecFlags) (*stego.LSB, error) {
	opts := []stego.Option{
		stego.WithMaxPayload(a.cfg.Codec.MaxPayload),
		stego.WithParallel(a.cfg.Codec.Workers),
	}
	if f.golay || a.cfg.Codec.Golay {
		opts = append(opts, stego.WithGolay())
	}
	sig := a.cfg.Codec.Signature
	if f.signature != "" {
		sig = f.signature
	}
	if sig != "" {
		opts = append(opts, stego.WithSignature([]byte(sig)))
	}
	return stego.New(opts...)
}

func (a *App) sealKey() ([]byte, error) {
	if a.cfg.SealKey == "" {
		return nil, fmt.Errorf("%w: no key configured, set seal_key or $%s", seal.ErrInvalidKey, config.SealKeyEnv)
	}
	return seal.ParseKey(a.cfg.SealKey)
}

func (a *App) embedCmd() *cobra.Command {
	var flags codecFlags
	cmd := &cobra.Command{
		Use:   "embed <input> <output> <message>",
		Short: "Hide a message in an image and write the result",
		Args:  exactArgs("input", "output", "message"),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output, message := args[0], args[1], args[2]
			ctx := cmd.Context()

			// fail before decoding anything when the output cannot hold LSB data
			if _, err := imagefile.CheckOutput(output); err != nil {
				return err
			}
			codec, err := a.codec(flags)
			if err != nil {
				return err
			}
			payload := []byte(message)
			algorithm := codec.Algorithm()
			if flags.seal {
				key, err := a.sealKey()
				if err != nil {
					return err
				}
				sealed, err := seal.Seal(key, payload)
				if err != nil {
					return err
				}
				payload = []byte(sealed)
				algorithm += "+sealed"
			}

			img, format, err := imagefile.Load(ctx, input)
			if err != nil {
				return err
			}
			a.logger.Debug("cover loaded", "path", input, "format", format, "bounds", img.Bounds(), "capacity", codec.Capacity(img.Bounds()))

			out, err := codec.Encode(ctx, img, payload)
			if err != nil {
				return err
			}
			if err := imagefile.Save(ctx, output, out); err != nil {
				return err
			}

			st := status{
				Success:    true,
				OutputPath: output,
				Digest:     seal.Digest([]byte(message)),
				Algorithm:  algorithm,
			}
			if err := a.record(cmd, ledger.Artifact{
				InputPath:    input,
				OutputPath:   output,
				Digest:       st.Digest,
				PayloadBytes: len(payload),
				Algorithm:    algorithm,
				Sealed:       flags.seal,
			}); err != nil {
				// the image is already written; a ledger failure must not report the embed as failed
				a.logger.Warn("ledger record failed", "err", err)
			}
			a.logger.Info("embedded", "output", output, "bytes", len(payload), "algorithm", algorithm)
			a.print(st)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *App) record(cmd *cobra.Command, art ledger.Artifact) error {
	path, err := a.cfg.LedgerPath()
	if err != nil || path == "" {
		return err
	}
	l, err := ledger.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()
	id, err := l.Record(cmd.Context(), art)
	if err != nil {
		return err
	}
	a.logger.Debug("artifact recorded", "id", id, "ledger", path)
	return nil
}
