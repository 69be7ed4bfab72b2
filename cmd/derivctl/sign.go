package main

import (
	"fmt"

	"github.com/phambaophuc/image-derivative/internal/config"
	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/token"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign KEY",
	Short: "Mint a token and signed URL for a derivative",
	Args:  cobra.ExactArgs(1),
	RunE:  runSign,
}

func init() {
	signCmd.Flags().String("size", "", "Size token, e.g. 480w (empty serves the original)")
	signCmd.Flags().Bool("blur", false, "Sign for the blur route")
	signCmd.Flags().Bool("no-cache", false, "Add no_cache to the URL")
	signCmd.Flags().String("base-url", "", "Route URL the query is appended to")
	signCmd.Flags().String("secret", "", "Signing secret (default JWT_SECRET)")
	signCmd.Flags().Duration("ttl", 0, "Token lifetime (default TOKEN_TTL)")
}

func runSign(cmd *cobra.Command, args []string) error {
	key := args[0]
	size, _ := cmd.Flags().GetString("size")
	blur, _ := cmd.Flags().GetBool("blur")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	baseURL, _ := cmd.Flags().GetString("base-url")
	secret, _ := cmd.Flags().GetString("secret")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if secret == "" {
		secret = cfg.Token.Secret
	}
	if ttl == 0 {
		ttl = cfg.Token.TTL
	}

	namespace := ""
	if blur {
		namespace = models.BlurNamespace
	}
	audience := models.DerivativeKey(namespace, size, key)

	tok, err := token.NewIssuer(secret, ttl).Issue(audience)
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", audience, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "audience: %s\n", audience)
	fmt.Fprintf(out, "token:    %s\n", tok)

	if baseURL != "" {
		signed, err := token.SignedURL(baseURL, key, size, tok, noCache)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "url:      %s\n", signed)
	}

	return nil
}
