package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/absfs/sealbox"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newEncryptFileCmd(a *app) *cobra.Command {
	var (
		password *passwordFlags
		output   string
	)

	cmd := &cobra.Command{
		Use:   "encrypt-file <path>",
		Short: "Encrypts a file with its name and MIME type into an envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := password.resolve()
			if err != nil {
				return err
			}
			s, err := a.sealer()
			if err != nil {
				return err
			}

			fsys := newDirFS(".")
			a.logger.Infof("Encrypting %s", args[0])
			envelope, err := s.EncryptPath(cmd.Context(), fsys, args[0], pw)
			if err != nil {
				return a.logger.ErrorfAndReturn("failed to encrypt %s: %v", args[0], err)
			}

			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), envelope)
				return nil
			}
			if err := os.WriteFile(output, []byte(envelope+"\n"), 0600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("✓")+" Wrote "+color.YellowString(output))
			return nil
		},
	}
	password = addPasswordFlags(cmd.Flags(), "", "password")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the envelope to this file instead of stdout")
	return cmd
}

func newDecryptFileCmd(a *app) *cobra.Command {
	var (
		password *passwordFlags
		output   string
	)

	cmd := &cobra.Command{
		Use:   "decrypt-file <envelope-path|->",
		Short: "Decrypts a file envelope and writes the original file",
		Long: `Decrypts a file envelope. The content is written to --output, or to
the file name stored in the envelope when --output is not given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read envelope: %w", err)
			}

			pw, err := password.resolve()
			if err != nil {
				return err
			}
			s, err := a.sealer()
			if err != nil {
				return err
			}

			envelope := strings.TrimSpace(string(raw))
			var f *sealbox.File
			if output != "" {
				f, err = s.DecryptToPath(cmd.Context(), newDirFS("."), envelope, pw, output)
				if err != nil {
					return describe(err)
				}
			} else {
				f, err = s.DecryptFile(cmd.Context(), envelope, pw, "decrypted.bin")
				if err != nil {
					return describe(err)
				}
				// Never let a stored name escape the working directory.
				output = filepath.Base(f.DisplayName())
				if err := os.WriteFile(output, f.Data, 0600); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}
			a.logger.Infof("Decrypted %s (%s, %d bytes)", f.DisplayName(), f.MimeType, f.Size())
			fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("✓")+" Wrote "+color.YellowString(output))
			return nil
		},
	}
	password = addPasswordFlags(cmd.Flags(), "", "password")
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination path")
	return cmd
}
