package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/absfs/sealbox"
	"github.com/spf13/cobra"
)

// readInput returns args[0] if given, otherwise all of stdin
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func newEncryptCmd(a *app) *cobra.Command {
	var password, second *passwordFlags

	cmd := &cobra.Command{
		Use:   "encrypt [text]",
		Short: "Encrypts text (argument or stdin) into an envelope",
		Long: `Encrypts text into a base64 envelope. With --second-password the
envelope is encrypted again under the second password; decrypt it with
the same two passwords in the same order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			pw, err := password.resolve()
			if err != nil {
				return err
			}
			s, err := a.sealer()
			if err != nil {
				return err
			}

			var envelope string
			if second.provided() {
				pw2, err := second.resolve()
				if err != nil {
					return err
				}
				a.logger.Infof("Encrypting %d bytes under two passwords", len(text))
				envelope, err = s.DoubleEncrypt(text, pw, pw2)
				if err != nil {
					return a.logger.ErrorfAndReturn("failed to encrypt: %v", err)
				}
			} else {
				a.logger.Infof("Encrypting %d bytes", len(text))
				envelope, err = s.Encrypt(text, pw)
				if err != nil {
					return a.logger.ErrorfAndReturn("failed to encrypt: %v", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), envelope)
			return nil
		},
	}
	password = addPasswordFlags(cmd.Flags(), "", "password")
	second = addPasswordFlags(cmd.Flags(), "second-", "second password for double encryption")
	return cmd
}

func newDecryptCmd(a *app) *cobra.Command {
	var password, second *passwordFlags

	cmd := &cobra.Command{
		Use:   "decrypt [envelope]",
		Short: "Decrypts an envelope (argument or stdin)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envelope, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			envelope = strings.TrimSpace(envelope)

			pw, err := password.resolve()
			if err != nil {
				return err
			}
			s, err := a.sealer()
			if err != nil {
				return err
			}

			var text string
			if second.provided() {
				pw2, err := second.resolve()
				if err != nil {
					return err
				}
				text, err = s.DoubleDecrypt(envelope, pw, pw2)
				if err != nil {
					return describe(err)
				}
			} else {
				text, err = s.Decrypt(envelope, pw)
				if err != nil {
					return describe(err)
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	password = addPasswordFlags(cmd.Flags(), "", "password")
	second = addPasswordFlags(cmd.Flags(), "second-", "second password used at encryption")
	return cmd
}

func newResealCmd(a *app) *cobra.Command {
	var password, next *passwordFlags

	cmd := &cobra.Command{
		Use:   "reseal [envelope]",
		Short: "Re-encrypts an envelope under a new password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			envelope, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			oldPw, err := password.resolve()
			if err != nil {
				return err
			}
			newPw, err := next.resolve()
			if err != nil {
				return err
			}
			s, err := a.sealer()
			if err != nil {
				return err
			}

			out, err := s.Reseal(strings.TrimSpace(envelope), oldPw, newPw)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	password = addPasswordFlags(cmd.Flags(), "", "current password")
	next = addPasswordFlags(cmd.Flags(), "new-", "new password")
	return cmd
}

// describe turns library errors into messages for the terminal
func describe(err error) error {
	switch sealbox.KindOf(err) {
	case sealbox.KindAuthenticationFailure:
		return fmt.Errorf("wrong password or damaged envelope: %w", err)
	case sealbox.KindMalformedPayload:
		return fmt.Errorf("envelope does not contain a file: %w", err)
	case sealbox.KindKeyNotFound:
		return fmt.Errorf("no such key: %w", err)
	case sealbox.KindKeyExpired:
		return fmt.Errorf("key has expired: %w", err)
	default:
		return err
	}
}
