package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/teleport-xyz/teleport-indexer/internal/domain"
)

var cursorOwners = []domain.CursorOwner{domain.CursorOwnerReconciler, domain.CursorOwnerEmitter}

func parseCursorOwner(owner string) (domain.CursorOwner, error) {
	for _, o := range cursorOwners {
		if string(o) == owner {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid owner %q: must be one of %v", owner, cursorOwners)
}

func newCursorCommand(rootOpts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or move a block cursor",
	}
	cmd.PersistentFlags().StringVar(&owner, "owner", string(domain.CursorOwnerReconciler), "cursor owner (reconciler|log-emitter)")

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the last processed block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseCursorOwner(owner)
			if err != nil {
				return err
			}
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}

			block, err := st.GetBlockCursor(cmd.Context(), o, rootOpts.cfg.Ethereum.ChainID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), block)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <block>",
		Short: "Set the block the owner resumes from",
		Long: `Set the block cursor. The service must be stopped, it flushes its own cursor on exit.

Examples:
  teleportctl cursor set 5200000 --owner reconciler`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseCursorOwner(owner)
			if err != nil {
				return err
			}
			block, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid block %q: %w", args[0], err)
			}
			st, err := rootOpts.openStore()
			if err != nil {
				return err
			}

			return st.SetBlockCursor(cmd.Context(), o, rootOpts.cfg.Ethereum.ChainID, block)
		},
	})

	return cmd
}
