package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teleport-xyz/teleport-indexer/internal/submitter"
)

func newMintCommand(rootOpts *rootOptions) *cobra.Command {
	var req submitter.MintRequest

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a token to a user's embedded address",
		Long: `Mint a token for a user whose social account is linked. The pending mint is
recorded as soon as the transaction is sent and promoted by the reconciler once the
contract confirms it.

Examples:
  teleportctl mint --user 3f1c --policy "no profanity"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.timeout)
			defer cancel()

			s, closeFn, err := rootOpts.newSubmitter(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			txHash, err := s.SubmitMint(ctx, req)
			if txHash != "" {
				fmt.Fprintln(cmd.OutOrStdout(), txHash)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "application user id")
	cmd.Flags().StringVar(&req.Policy, "policy", "", "safety policy redeemed content is checked against")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newRedeemCommand(rootOpts *rootOptions) *cobra.Command {
	var req submitter.RedeemRequest

	cmd := &cobra.Command{
		Use:   "redeem",
		Short: "Redeem a token with content to publish",
		Long: `Redeem a token owned by a user, signed with the user's embedded wallet key.
The reconciler checks the content, publishes it under the creator's account and
finalizes the redemption.

Examples:
  teleportctl redeem --user 3f1c --token 42 --content "gm"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), rootOpts.timeout)
			defer cancel()

			s, closeFn, err := rootOpts.newSubmitter(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			txHash, err := s.SubmitRedeem(ctx, req)
			if txHash != "" {
				fmt.Fprintln(cmd.OutOrStdout(), txHash)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&req.UserID, "user", "", "application user id of the token holder")
	cmd.Flags().Uint64Var(&req.TokenID, "token", 0, "token id")
	cmd.Flags().StringVar(&req.Content, "content", "", "content to publish")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("token")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}
