package main

import (
	"fmt"

	"github.com/rifat0153/cleannotes/internal/auth"
	"github.com/rifat0153/cleannotes/internal/config"
	"github.com/spf13/cobra"
)

func (app *cli) newTokenCommand() *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the notes API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load(app.viper)
			if err != nil {
				return err
			}
			if err := appConfig.RequireSigningSecret(); err != nil {
				return err
			}
			issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
				SigningSecret: []byte(appConfig.SigningSecret),
				TokenTTL:      appConfig.TokenTTL,
			})
			if err != nil {
				return err
			}
			if subject == "" {
				subject = appConfig.AuthSubject
			}
			token, expiresIn, err := issuer.IssueAccessToken(cmd.Context(), subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires in %ds\n", expiresIn)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Token subject (defaults to auth.subject)")
	return cmd
}
