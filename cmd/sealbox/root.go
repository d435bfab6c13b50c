package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/absfs/sealbox"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// app holds the flags shared by every command
type app struct {
	verbose bool
	debug   bool

	cipher        string
	kdf           string
	kdfIterations int
	argonMemory   uint32
	maxFileSize   int64

	vaultPath string

	logger Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "sealbox",
		Short: "Password-based encryption of text and files, key generation and a local key vault",
		Long: `sealbox encrypts text and files under a password into self-describing
envelopes, generates random keys and keeps generated keys in a local
vault with an expiration.

Passwords are read from --password, --password-env or --password-file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = Logger{
				Out:     cmd.ErrOrStderr(),
				Verbose: a.verbose,
				Debug:   a.debug,
			}
			a.logger.Debugf("Initializing %s with verbose=%t, debug=%t", cmd.Name(), a.verbose, a.debug)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug output")
	flags.StringVar(&a.cipher, "cipher", "aes-256-gcm", "cipher suite for new envelopes (aes-256-gcm, chacha20-poly1305)")
	flags.StringVar(&a.kdf, "kdf", "argon2id", "key derivation function for new envelopes (argon2id, pbkdf2)")
	flags.IntVar(&a.kdfIterations, "kdf-iterations", 0, "KDF iterations (0 selects the default)")
	flags.Uint32Var(&a.argonMemory, "argon2-memory", 0, "Argon2id memory in KiB (0 selects the default)")
	flags.Int64Var(&a.maxFileSize, "max-file-size", 0, "largest file accepted by encrypt-file in bytes (0 is unlimited)")
	flags.StringVar(&a.vaultPath, "vault", defaultVaultPath(), "vault file location")

	rootCmd.AddCommand(
		newEncryptCmd(a),
		newDecryptCmd(a),
		newResealCmd(a),
		newEncryptFileCmd(a),
		newDecryptFileCmd(a),
		newKeygenCmd(a),
		newVaultCmd(a),
	)
	return rootCmd
}

func defaultVaultPath() string {
	if p := os.Getenv("SEALBOX_VAULT"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sealbox/vault.json"
	}
	return filepath.Join(home, ".sealbox", "vault.json")
}

// sealer builds a Sealer from the global flags
func (a *app) sealer() (*sealbox.Sealer, error) {
	cfg := sealbox.DefaultConfig()

	suite, err := sealbox.ParseCipherSuite(a.cipher)
	if err != nil {
		return nil, err
	}
	kdf, err := sealbox.ParseKDF(a.kdf)
	if err != nil {
		return nil, err
	}
	cfg.Cipher = suite
	cfg.KDF = kdf
	if a.kdfIterations < 0 || int64(a.kdfIterations) > math.MaxUint32 {
		return nil, sealbox.NewValidationError("kdf-iterations", a.kdfIterations, fmt.Sprintf("must be between 0 and %d", uint32(math.MaxUint32)))
	}
	if a.kdfIterations > 0 {
		cfg.Argon2.Iterations = uint32(a.kdfIterations)
		cfg.PBKDF2.Iterations = a.kdfIterations
	}
	if a.argonMemory > 0 {
		cfg.Argon2.Memory = a.argonMemory
	}
	cfg.MaxFileSize = a.maxFileSize

	a.logger.Debugf("Using cipher=%s kdf=%s", cfg.Cipher, cfg.KDF)
	return sealbox.NewSealer(cfg)
}

// passwordFlags registers --<prefix>password, --<prefix>password-env and
// --<prefix>password-file on fs.
type passwordFlags struct {
	name  string
	value string
	env   string
	file  string
}

func addPasswordFlags(fs *pflag.FlagSet, prefix, usage string) *passwordFlags {
	p := &passwordFlags{name: prefix + "password"}
	fs.StringVar(&p.value, p.name, "", usage)
	fs.StringVar(&p.env, p.name+"-env", "", "read "+p.name+" from this environment variable")
	fs.StringVar(&p.file, p.name+"-file", "", "read "+p.name+" from this file")
	return p
}
