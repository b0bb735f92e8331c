// cmd/auth.go
package cmd

import (
	"bufio"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to your listening history",
	Long: `One-time interactive bootstrap for the user token cache. Prints the
Spotify authorization URL; after you approve, paste the 'code' query
parameter from the redirect URL back here. The resulting token (with its
refresh token) is cached for unattended extract runs.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	creds, err := credentials()
	if err != nil {
		return err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	state := hex.EncodeToString(buf)

	fmt.Println("Go to the following URL to authorize:")
	fmt.Println(creds.AuthURL(state))
	fmt.Print("\nPaste the 'code' parameter from the redirected URL: ")

	reader := bufio.NewReader(os.Stdin)
	code, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("empty authorization code")
	}

	cachePath := viper.GetString("auth.token_cache")
	if err := creds.ExchangeCode(cmd.Context(), code, cachePath); err != nil {
		return err
	}

	fmt.Printf("Token cached at %s\n", cachePath)
	return nil
}
