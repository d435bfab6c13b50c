package main

import (
	"fmt"

	"github.com/absfs/sealbox"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addKeyOptionFlags registers the character class flags shared by keygen
// and vault issue.
func addKeyOptionFlags(fs *pflag.FlagSet) *sealbox.KeyOptions {
	opts := sealbox.DefaultKeyOptions()
	fs.IntVarP(&opts.Length, "length", "l", opts.Length, "key length in characters")
	fs.BoolVar(&opts.Upper, "upper", opts.Upper, "include uppercase letters")
	fs.BoolVar(&opts.Lower, "lower", opts.Lower, "include lowercase letters")
	fs.BoolVar(&opts.Digits, "digits", opts.Digits, "include digits")
	fs.BoolVar(&opts.Symbols, "symbols", opts.Symbols, "include symbols")
	fs.BoolVar(&opts.ExcludeAmbiguous, "exclude-ambiguous", false, "leave out characters that are easy to misread (0 O o 1 l I |)")
	fs.BoolVar(&opts.RequireEachClass, "require-each", false, "include at least one character of every selected class")
	return &opts
}

func newKeygenCmd(a *app) *cobra.Command {
	var (
		opts  *sealbox.KeyOptions
		count int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generates random keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("--count must be at least 1")
			}
			a.logger.Debugf("Generating %d keys of length %d from %d characters", count, opts.Length, len(opts.Alphabet()))
			for i := 0; i < count; i++ {
				key, err := sealbox.GenerateKey(*opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
	opts = addKeyOptionFlags(cmd.Flags())
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of keys to generate")
	return cmd
}
