package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/awnumar/memguard"

	authDomain "github.com/allisson/gatekeeper/internal/auth/domain"
	authService "github.com/allisson/gatekeeper/internal/auth/service"
)

// RunCreateSigningKey generates a random HMAC signing key and prints the SIGNING_KEYS
// entry for it. If keyID is empty it defaults to "key-YYYY-MM-DD".
//
// When kmsKeyURI is set the key is wrapped by the KMS keeper before encoding, and the
// same KMS_KEY_URI must be configured for the server to unwrap it at startup. Without
// a KMS the raw key is printed.
//
// Output format:
//   - SIGNING_KEYS="<keyID>:<base64>"
//   - KMS_PROVIDER="<provider>" and KMS_KEY_URI="<uri>" in KMS mode
func RunCreateSigningKey(
	ctx context.Context,
	kmsService authService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID string,
	kmsProvider string,
	kmsKeyURI string,
) error {
	if kmsKeyURI != "" && kmsService == nil {
		return fmt.Errorf("kms service is required when --kms-key-uri is set")
	}

	if keyID == "" {
		keyID = fmt.Sprintf("key-%s", time.Now().UTC().Format("2006-01-02"))
	}

	signingKey := make([]byte, authDomain.MinSigningKeySize)
	if _, err := rand.Read(signingKey); err != nil {
		return fmt.Errorf("failed to generate signing key: %w", err)
	}
	defer memguard.WipeBytes(signingKey)

	material := signingKey
	if kmsKeyURI != "" {
		keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
		if err != nil {
			return fmt.Errorf("failed to open KMS keeper: %w", err)
		}
		defer func() {
			if closeErr := keeper.Close(); closeErr != nil {
				logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
			}
		}()

		ciphertext, err := keeper.Encrypt(ctx, signingKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt signing key with KMS: %w", err)
		}
		material = ciphertext
	}

	encodedKey := base64.StdEncoding.EncodeToString(material)

	if kmsKeyURI != "" {
		_, _ = fmt.Fprintln(writer, "# Signing Key Configuration (KMS Mode)")
		_, _ = fmt.Fprintln(writer, "# Copy these environment variables to your .env file or secrets manager")
		_, _ = fmt.Fprintln(writer)
		_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
		_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	} else {
		_, _ = fmt.Fprintln(writer, "# Signing Key Configuration")
		_, _ = fmt.Fprintln(writer, "# The key is not wrapped by a KMS. Store it in a secrets manager.")
		_, _ = fmt.Fprintln(writer)
	}
	_, _ = fmt.Fprintf(writer, "SIGNING_KEYS=\"%s:%s\"\n", keyID, encodedKey)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# To rotate, put the new key first and keep the old ones for verification:")
	_, _ = fmt.Fprintf(writer, "# SIGNING_KEYS=\"new-key:...,%s:%s\"\n", keyID, encodedKey)

	logger.Info("signing key created", slog.String("key_id", keyID), slog.Bool("kms", kmsKeyURI != ""))

	return nil
}
