package command

import (
	"bufio"
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/textcodec"
	"github.com/wippyai/textcodec/codec"
	"github.com/wippyai/textcodec/script"
)

func (a *app) encodeCommand() *cobra.Command {
	var utf16le, asHex bool

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text to UTF-8",
		Long: "Encode text from the argument or stdin to UTF-8.\n\n" +
			"Output is hex when stdout is a terminal and raw bytes otherwise.\n" +
			"With --utf16le stdin is read as UTF-16LE code units, so unpaired\n" +
			"surrogates can be fed in.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := readUnits(cmd.InOrStdin(), args, utf16le)
			if err != nil {
				return err
			}

			out, err := script.NewTextEncoder(a.bridge).Encode(cmd.Context(), units)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asHex || isTerminal(w) {
				_, err = fmt.Fprintf(w, "% X\n", out)
				return err
			}
			_, err = w.Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&utf16le, "utf16le", false, "read stdin as UTF-16LE")
	cmd.Flags().BoolVar(&asHex, "hex", false, "print hex even when stdout is not a terminal")
	return cmd
}

func (a *app) decodeCommand() *cobra.Command {
	var (
		chunk   int
		asHex   bool
		local   bool
		utf16le bool
	)

	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode UTF-8 from a file or stdin",
		Long: "Decode UTF-8 in --chunk sized pieces through a streaming host decoder.\n\n" +
			"Ill-formed input becomes U+FFFD. --local decodes in process with\n" +
			"codec.DecodeReader instead of crossing the bridge.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if chunk <= 0 {
				return fmt.Errorf("--chunk must be positive, got %d", chunk)
			}

			r := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			if asHex {
				text, err := io.ReadAll(r)
				if err != nil {
					return err
				}
				raw, err := parseHex(string(text))
				if err != nil {
					return err
				}
				r = bytes.NewReader(raw)
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			emit := func(units []uint16) error {
				if utf16le {
					_, err := w.Write(codec.AppendUnits(nil, units))
					return err
				}
				_, err := w.WriteString(codec.ToString(units))
				return err
			}

			var err error
			if local {
				err = codec.DecodeReader(r, chunk, emit)
			} else {
				err = decodeStream(cmd.Context(), a.bridge, r, chunk, emit)
			}
			if err != nil {
				return err
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&chunk, "chunk", codec.DefaultChunkSize, "bytes per decoder call")
	cmd.Flags().BoolVar(&asHex, "hex", false, "input is hex text")
	cmd.Flags().BoolVar(&local, "local", false, "decode in process without the bridge")
	cmd.Flags().BoolVar(&utf16le, "utf16le", false, "write UTF-16LE code units instead of UTF-8 text")
	return cmd
}

// decodeStream feeds r to a streaming TextDecoder and flushes it at EOF.
func decodeStream(ctx context.Context, b textcodec.Bridge, r io.Reader, chunk int, emit func([]uint16) error) error {
	dec := script.NewTextDecoder(b)
	defer dec.Close(ctx)

	buf := make([]byte, chunk)
	for {
		n, readErr := r.Read(buf)
		if n > 0 {
			units, err := dec.Decode(ctx, buf[:n], script.DecodeOptions{Stream: true})
			if err != nil {
				return err
			}
			if len(units) > 0 {
				if err := emit(units); err != nil {
					return err
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			units, err := dec.Decode(ctx, nil, script.DecodeOptions{})
			if err != nil {
				return err
			}
			if len(units) > 0 {
				return emit(units)
			}
			return nil
		}
		if readErr != nil {
			return readErr
		}
	}
}

func readUnits(in io.Reader, args []string, utf16le bool) ([]uint16, error) {
	if len(args) == 1 {
		if utf16le {
			return nil, fmt.Errorf("--utf16le reads stdin and takes no text argument")
		}
		return codec.FromString(args[0]), nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	if !utf16le {
		return codec.FromString(string(data)), nil
	}
	units, ok := codec.Units(data)
	if !ok {
		return nil, fmt.Errorf("UTF-16LE input has odd length %d", len(data))
	}
	return units, nil
}

// parseHex accepts hex digits separated by any whitespace.
func parseHex(s string) ([]byte, error) {
	digits := strings.Join(strings.Fields(s), "")
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("parse hex: %w", err)
	}
	return raw, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
