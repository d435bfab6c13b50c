package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/absfs/sealbox"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (a *app) openVault() (*sealbox.Vault, error) {
	path, err := filepath.Abs(a.vaultPath)
	if err != nil {
		return nil, err
	}
	a.logger.Debugf("Opening vault at %s", path)
	v, err := sealbox.NewVault(sealbox.WithStore(newDirFS(filepath.Dir(path)), path))
	if err != nil {
		return nil, a.logger.ErrorfAndReturn("failed to open vault %s: %v", path, err)
	}
	return v, nil
}

// withVault opens the vault, runs fn and closes the vault
func (a *app) withVault(fn func(v *sealbox.Vault) error) (err error) {
	v, err := a.openVault()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := v.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(v)
}

func newVaultCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage generated keys in the local vault",
	}
	cmd.AddCommand(
		newVaultStoreCmd(a),
		newVaultGetCmd(a),
		newVaultListCmd(a),
		newVaultDeleteCmd(a),
		newVaultIssueCmd(a),
		newVaultPurgeCmd(a),
	)
	return cmd
}

func newVaultStoreCmd(a *app) *cobra.Command {
	var hours float64

	cmd := &cobra.Command{
		Use:   "store <id> <key>",
		Short: "Stores a key under id, replacing any existing record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				record, err := v.StoreKeyHours(args[0], args[1], hours)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), color.GreenString("✓")+" Stored "+color.YellowString(record.ID)+
					" until "+record.ExpiresAt.Local().Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&hours, "hours", sealbox.DefaultKeyTTL.Hours(), "hours until the key expires")
	return cmd
}

func newVaultGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Prints the key stored under id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				key, err := v.RetrieveKey(args[0])
				if err != nil {
					return describe(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				return nil
			})
		},
	}
}

func newVaultListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists stored key ids with their expiration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				keys, err := v.ListStoredKeys()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tEXPIRES\tSTATUS")
				for _, k := range keys {
					status := color.GreenString("active")
					if k.Expired {
						status = color.RedString("expired")
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\n", k.ID, k.ExpiresAt.Local().Format(time.RFC3339), status)
				}
				return tw.Flush()
			})
		},
	}
}

func newVaultDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Deletes the key stored under id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				return v.DeleteKey(args[0])
			})
		},
	}
}

func newVaultIssueCmd(a *app) *cobra.Command {
	var (
		opts  *sealbox.KeyOptions
		hours float64
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Generates a key, stores it under a new id and prints the id and key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				ttl, err := sealbox.HoursToTTL(hours)
				if err != nil {
					return err
				}
				if ttl <= 0 {
					return fmt.Errorf("--hours must be positive")
				}
				record, err := v.Issue(*opts, ttl)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", record.ID, record.Key)
				return nil
			})
		},
	}
	opts = addKeyOptionFlags(cmd.Flags())
	cmd.Flags().Float64Var(&hours, "hours", sealbox.DefaultKeyTTL.Hours(), "hours until the key expires")
	return cmd
}

func newVaultPurgeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Removes expired keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withVault(func(v *sealbox.Vault) error {
				n, err := v.PurgeExpired()
				if err != nil {
					return err
				}
				a.logger.Infof("Purged %d expired keys", n)
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", n)
				return nil
			})
		},
	}
}
