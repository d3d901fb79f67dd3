package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/shopkeeper/internal/netx"
)

// uploadImage is a seam for tests.
var uploadImage = netx.UploadProductImage

// Upload sends the product image at args[0] to the HTTP API and prints the
// URL it is served from.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: upload <path>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	url, err := uploadImage(ctx, a.httpClient, a.config.HTTPBaseURL, filepath.Base(args[0]), data)
	if err != nil {
		return err
	}
	a.logger.Debug(ctx, "image uploaded", "path", args[0], "url", url)
	printlnFn(fmt.Sprintf("Uploaded: %s", url))
	return nil
}
