package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tabwire/userd/pkg/jwtx"
)

// InitTokenCodec builds the HS256 codec every token passes through.
//
// With no signing key file configured the key is generated fresh on startup
// and held only in memory, so a restart invalidates every outstanding token.
// Point USERD_SIGNING_KEY_FILE at a 32-byte key file to keep tokens valid
// across restarts.
func InitTokenCodec(cfg Config, logger *slog.Logger) (*jwtx.Codec, error) {
	if cfg.SigningKeyFile == "" {
		codec, err := jwtx.NewEphemeralCodec(cfg.TokenTTL)
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}

		logger.Info("generated ephemeral signing key", "ttl", cfg.TokenTTL)
		logger.Warn("all previously issued tokens are now invalid")
		return codec, nil
	}

	key, err := os.ReadFile(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read signing key file: %w", err)
	}

	codec, err := jwtx.NewCodec(key, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("load signing key from %s: %w", cfg.SigningKeyFile, err)
	}

	logger.Info("loaded signing key", "path", cfg.SigningKeyFile, "ttl", cfg.TokenTTL)
	return codec, nil
}
