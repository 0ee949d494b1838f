package commands

import (
	"fmt"

	cryptoService "github.com/allisson/finstore/internal/crypto/service"
)

// RunCreateKeeperKey generates a fresh local wrapping key and prints it as a
// keeper URI. The URI is the wrapping secret: store it in the environment
// (FINSTORE_KEEPER_URI) or a secret manager, never next to the database file.
func RunCreateKeeperKey(io IOTuple) error {
	uri, err := cryptoService.NewBase64KeeperURI()
	if err != nil {
		return err
	}

	fmt.Fprintln(io.Writer, "Generated keeper URI (keep it outside the data directory):")
	fmt.Fprintln(io.Writer, uri)
	return nil
}
