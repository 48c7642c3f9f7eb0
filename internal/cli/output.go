package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	prettyjson "github.com/hokaccha/go-prettyjson"

	stego "github.com/yyyoichi/stego_zero"
	"github.com/yyyoichi/stego_zero/internal/ledger"
	"github.com/yyyoichi/stego_zero/internal/quality"
	"github.com/yyyoichi/stego_zero/seal"
)

// status is the single line every verb prints.
type status struct {
	Success    bool    `json:"success"`
	OutputPath string  `json:"output_path,omitempty"`
	Digest     string  `json:"digest,omitempty"`
	Algorithm  string  `json:"algorithm,omitempty"`
	Message    *string `json:"message,omitempty"`
	// MessageHex replaces Message when the payload is not valid UTF-8.
	MessageHex *string  `json:"message_hex,omitempty"`
	Capacity   *int     `json:"capacity,omitempty"`
	MSE        *float64 `json:"mse,omitempty"`
	// PSNR is omitted for identical images, where it is infinite.
	PSNR    *float64 `json:"psnr,omitempty"`
	Changed *int     `json:"changed,omitempty"`
	Error   string   `json:"error,omitempty"`
	Kind    string   `json:"kind,omitempty"`
}

func (a *App) print(v any) {
	if a.pretty || a.cfg.Pretty {
		b, err := prettyjson.Marshal(v)
		if err == nil {
			fmt.Fprintln(a.colorableOut, string(b))
			return
		}
		a.logger.Warn("pretty print failed", "err", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		a.logger.Error("marshal status", "err", err)
		return
	}
	fmt.Fprintln(a.out, string(b))
}

func (a *App) fail(err error) {
	a.logger.Debug("command failed", "err", err)
	a.print(status{Error: err.Error(), Kind: kindOf(err)})
}

// kindOf names the failure class reported in the kind field.
func kindOf(err error) string {
	if k := stego.KindOf(err); k != stego.KindUnknown {
		return k.String()
	}
	switch {
	case errors.Is(err, seal.ErrInvalidKey), errors.Is(err, seal.ErrMalformed), errors.Is(err, seal.ErrAuthentication):
		return "seal"
	case errors.Is(err, quality.ErrBoundsMismatch):
		return "bounds_mismatch"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	}
	return stego.KindUnknown.String()
}
